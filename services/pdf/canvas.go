package pdfsvc

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-reports/core/report"
)

const creationDateLayout = "20060102150405"

// canvas draws onto a streamed PDF document.
type canvas struct {
	ow      *objectWriter
	metrics *metrics
	info    report.DocumentInfo
	height  float64

	page   *pageStream
	closed bool
	err    error
}

var (
	_ report.Canvas        = (*canvas)(nil)
	_ report.CanvasFactory = NewCanvas
)

// NewCanvas starts a PDF document on w. Nothing is drawn until the first page is added.
func NewCanvas(w io.Writer, info report.DocumentInfo) report.Canvas {
	c := &canvas{
		ow:      newObjectWriter(w),
		metrics: newMetrics(),
		info:    info,
		height:  info.Page.Size.Height,
	}
	c.ow.writeHeader(map[string]string{
		"Title":        c.metrics.encode(info.Title),
		"Author":       c.metrics.encode(info.Author),
		"Subject":      c.metrics.encode(info.Subject),
		"Producer":     pdfProducer,
		"CreationDate": creationDate(info.Created),
	})
	return c
}

func creationDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return "D:" + t.UTC().Format(creationDateLayout) + "Z"
}

func (c *canvas) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.ow.err; err != nil {
		return err
	}
	return c.metrics.err()
}

func (c *canvas) ok() bool {
	return c.Err() == nil && !c.closed
}

func (c *canvas) AddPage() {
	if !c.ok() {
		return
	}
	if c.page != nil {
		c.endPage()
	}
	c.page = c.ow.beginPage()
}

func (c *canvas) endPage() {
	c.ow.endPage(c.page, c.info.Page.Size.Width, c.height)
	c.page = nil
}

// op writes a content stream operator line to the current page.
func (c *canvas) op(format string, args ...interface{}) {
	if c.page == nil {
		c.err = errors.New("drawing before the first page")
		return
	}
	if _, err := fmt.Fprintf(c.page.z, format+"\n", args...); err != nil && c.err == nil {
		c.err = errors.Wrap(err, "writing page content")
	}
}

func (c *canvas) FillRect(x, y, w, h float64, fill report.Color) {
	if !c.ok() {
		return
	}
	c.op("q %s rg %.2f %.2f %.2f %.2f re f Q", rgb(fill), x, c.height-y-h, w, h)
}

func (c *canvas) Line(x1, y1, x2, y2, width float64, stroke report.Color) {
	if !c.ok() {
		return
	}
	c.op("q %.2f w %s RG %.2f %.2f m %.2f %.2f l S Q", width, rgb(stroke), x1, c.height-y1, x2, c.height-y2)
}

// Text draws text in a box of the given width whose top-left corner is (x, y). Text wraps on
// word boundaries unless the style asks for an ellipsis.
func (c *canvas) Text(x, y, width float64, text string, style report.TextStyle) {
	if !c.ok() {
		return
	}
	encoded := c.metrics.encode(text)

	var lines []string
	if style.Ellipsis {
		if s := c.metrics.truncate(encoded, width, style.Weight, style.Size); s != "" {
			lines = []string{s}
		}
	} else {
		lines = c.metrics.wrap(encoded, width, style.Weight, style.Size)
	}
	if len(lines) == 0 {
		return
	}

	font := "F1"
	if style.Weight == report.Bold {
		font = "F2"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "BT /%s %.2f Tf %s rg", font, style.Size, rgb(style.Color))
	for i, line := range lines {
		lx := x
		switch style.Align {
		case report.AlignCenter:
			lx += (width - c.metrics.width(line, style.Weight, style.Size)) / 2
		case report.AlignRight:
			lx += width - c.metrics.width(line, style.Weight, style.Size)
		}
		baseline := y + ascent*style.Size + float64(i)*report.LineHeight(style.Size)
		fmt.Fprintf(&sb, " 1 0 0 1 %.2f %.2f Tm (%s) Tj", lx, c.height-baseline, escape(line))
	}
	sb.WriteString(" ET")
	c.op("%s", sb.String())
}

// MeasureWrappedHeight is the height text takes in the cell font once wrapped to width.
func (c *canvas) MeasureWrappedHeight(text string, width float64) (float64, error) {
	font := c.info.CellFont
	lines := c.metrics.wrap(c.metrics.encode(text), width, font.Weight, font.Size)
	if err := c.metrics.err(); err != nil {
		return 0, err
	}
	return float64(len(lines)) * report.LineHeight(font.Size), nil
}

// Close ends the last page and writes the page tree and trailer.
func (c *canvas) Close() error {
	if c.closed {
		return errClosed
	}
	c.closed = true
	if err := c.Err(); err != nil {
		return err
	}
	if c.page != nil {
		c.endPage()
	}
	if err := c.ow.close(); err != nil {
		return err
	}
	return c.Err()
}

func rgb(c report.Color) string {
	return fmt.Sprintf("%.3f %.3f %.3f", float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}
