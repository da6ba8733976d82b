package pdfsvc

import (
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-reports/core/report"
)

const (
	fontFamily = "Helvetica"
	ellipsis   = "..."
	// ascent is the Helvetica ascender per point of font size.
	ascent = 0.718
)

// metrics measures and wraps text with the standard Helvetica metrics. Text is handled in its
// cp1252 (WinAnsi) encoding, one byte per glyph, as written into the document.
type metrics struct {
	pdf    *fpdf.Fpdf
	encode func(string) string

	weight report.FontWeight
	size   float64
}

func newMetrics() *metrics {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &metrics{
		pdf:    pdf,
		encode: pdf.UnicodeTranslatorFromDescriptor(""), // cp1252
		weight: -1,
	}
}

func (m *metrics) use(weight report.FontWeight, size float64) {
	if m.weight == weight && m.size == size {
		return
	}
	style := ""
	if weight == report.Bold {
		style = "B"
	}
	m.pdf.SetFont(fontFamily, style, size)
	m.weight, m.size = weight, size
}

// width of an encoded string.
func (m *metrics) width(s string, weight report.FontWeight, size float64) float64 {
	m.use(weight, size)
	return m.pdf.GetStringWidth(s)
}

func (m *metrics) err() error {
	if err := m.pdf.Error(); err != nil {
		return errors.Wrap(err, "font metrics")
	}
	return nil
}

// wrap breaks an encoded text into lines no wider than maxWidth. Lines break on spaces and
// explicit newlines; a word wider than a whole line is broken between characters.
func (m *metrics) wrap(s string, maxWidth float64, weight report.FontWeight, size float64) []string {
	lines := make([]string, 0, 1)
	if s == "" {
		return lines
	}

	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if m.width(candidate, weight, size) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			for m.width(word, weight, size) > maxWidth && len(word) > 1 {
				n := m.fit(word, maxWidth, weight, size)
				lines = append(lines, word[:n])
				word = word[n:]
			}
			line = word
		}
		lines = append(lines, line)
	}

	// trailing blank lines take no room
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// fit is the number of leading bytes of s that fit in maxWidth, at least 1.
func (m *metrics) fit(s string, maxWidth float64, weight report.FontWeight, size float64) int {
	n := 1
	for n < len(s) && m.width(s[:n+1], weight, size) <= maxWidth {
		n++
	}
	return n
}

// truncate shortens an encoded text to a single line ending with an ellipsis when it does not fit.
func (m *metrics) truncate(s string, maxWidth float64, weight report.FontWeight, size float64) string {
	s = strings.Join(strings.Fields(s), " ")
	if m.width(s, weight, size) <= maxWidth {
		return s
	}
	for len(s) > 0 && m.width(s+ellipsis, weight, size) > maxWidth {
		s = s[:len(s)-1]
	}
	if s == "" {
		return ""
	}
	return s + ellipsis
}
