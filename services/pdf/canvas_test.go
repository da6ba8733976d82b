package pdfsvc

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-reports/core/report"
)

func testInfo() report.DocumentInfo {
	return report.DocumentInfo{
		Title:    "Students Report",
		Author:   "Masomo",
		Subject:  "students",
		Created:  time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		Page:     report.DefaultPage,
		CellFont: report.TextStyle{Size: 10},
	}
}

func drawPages(c report.Canvas, pages int) {
	for i := 0; i < pages; i++ {
		c.AddPage()
		c.FillRect(48, 56, 100, 24, report.Hex(0xf4f6f8))
		c.Line(48, 80, 148, 80, 0.5, report.Hex(0xdfe3e8))
		c.Text(48, 56, 100, "Hello (world) \\ Café", report.TextStyle{Size: 10, Align: report.AlignRight})
	}
}

func TestCanvas_Document(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, testInfo())
	drawPages(c, 3)
	require.NoError(t, c.Close())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-1.4\n"))
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
	assert.Contains(t, out, "/Type /Pages")
	assert.Contains(t, out, "/Count 3")
	assert.Equal(t, 3, strings.Count(out, "/Type /Page "))
	assert.Contains(t, out, "/Title (Students Report)")
	assert.Contains(t, out, "/CreationDate (D:20210304050607Z)")
	assert.Contains(t, out, "/BaseFont /Helvetica-Bold")

	assert.ErrorIs(t, c.Close(), errClosed)
}

func TestCanvas_Deterministic(t *testing.T) {
	render := func() []byte {
		var buf bytes.Buffer
		c := NewCanvas(&buf, testInfo())
		drawPages(c, 2)
		require.NoError(t, c.Close())
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}

func TestCanvas_Landscape(t *testing.T) {
	info := testInfo()
	info.Page = report.DefaultPage.Oriented(report.Landscape)

	var buf bytes.Buffer
	c := NewCanvas(&buf, info)
	drawPages(c, 1)
	require.NoError(t, c.Close())
	assert.Contains(t, buf.String(), "/MediaBox [0 0 841.89 595.28]")
}

type failingWriter struct {
	limit int
	n     int
}

var errBrokenPipe = errors.New("broken pipe")

func (fw *failingWriter) Write(p []byte) (int, error) {
	if fw.n+len(p) > fw.limit {
		return 0, errBrokenPipe
	}
	fw.n += len(p)
	return len(p), nil
}

func TestCanvas_WriteError(t *testing.T) {
	c := NewCanvas(&failingWriter{limit: 10}, testInfo())
	drawPages(c, 200)

	err := c.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBrokenPipe))
	assert.Equal(t, err, c.Close())
}

func TestCanvas_MeasureWrappedHeight(t *testing.T) {
	c := NewCanvas(&bytes.Buffer{}, testInfo())
	line := report.LineHeight(10)

	tests := []struct {
		name  string
		text  string
		width float64
		lines int
	}{
		{"empty", "", 100, 0},
		{"single line", "Jane", 100, 1},
		{"wrapped words", "one two three four five six seven eight", 60, 4},
		{"newlines", "a\nb\nc", 100, 3},
		{"long word", strings.Repeat("W", 30), 50, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := c.MeasureWrappedHeight(tc.text, tc.width)
			require.NoError(t, err)
			assert.InDelta(t, float64(tc.lines)*line, h, 1e-9)
		})
	}
}

func TestMetrics_Wrap(t *testing.T) {
	m := newMetrics()

	lines := m.wrap("the quick brown fox jumps over the lazy dog", 80, report.Regular, 10)
	require.NotEmpty(t, lines)
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(lines, " "))
	for _, l := range lines {
		assert.LessOrEqual(t, m.width(l, report.Regular, 10), 80.0)
	}

	// non-latin runes are replaced but never break measuring
	assert.NotPanics(t, func() { m.wrap(m.encode("日本語 テキスト"), 30, report.Regular, 10) })
	assert.NoError(t, m.err())
}

func TestMetrics_Truncate(t *testing.T) {
	m := newMetrics()

	assert.Equal(t, "Name", m.truncate("Name", 100, report.Bold, 10))

	s := m.truncate("Emergency Contact Phone Number", 60, report.Bold, 10)
	assert.True(t, strings.HasSuffix(s, ellipsis))
	assert.LessOrEqual(t, m.width(s, report.Bold, 10), 60.0)
}
