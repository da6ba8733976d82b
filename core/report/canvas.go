package report

import (
	"io"
	"time"
)

// Color is an RGB colour with 8-bit channels.
type Color struct {
	R, G, B uint8
}

// Hex builds a Color from 0xRRGGBB.
func Hex(rgb uint32) Color {
	return Color{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb)}
}

type FontWeight int

const (
	Regular FontWeight = iota
	Bold
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a text box is drawn.
type TextStyle struct {
	Weight FontWeight
	Size   float64
	Color  Color
	Align  Align
	// Ellipsis keeps the text on a single line, truncating it to the box width.
	Ellipsis bool
}

// lineHeightFactor is the Helvetica line height (ascender - descender + gap) per point of font size.
const lineHeightFactor = 1.156

// LineHeight is the height of a single text line at size points.
func LineHeight(size float64) float64 {
	return size * lineHeightFactor
}

// Measurer computes the height a text takes once wrapped to width, in the document's cell font.
type Measurer interface {
	MeasureWrappedHeight(text string, width float64) (float64, error)
}

// Canvas is a paged drawing surface. Coordinates are in points from the top-left corner of the
// current page. Drawing errors are sticky: once a call fails, later calls are no-ops and Err
// returns the first failure.
type Canvas interface {
	Measurer

	AddPage()
	FillRect(x, y, w, h float64, fill Color)
	Line(x1, y1, x2, y2, width float64, stroke Color)
	Text(x, y, width float64, text string, style TextStyle)
	Err() error
	// Close finishes the document and flushes everything still buffered.
	Close() error
}

// DocumentInfo is the document-level metadata handed to a canvas backend.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Created  time.Time
	Page     Page
	CellFont TextStyle
}

// CanvasFactory opens a new document on w. Each call returns an independent canvas.
type CanvasFactory func(w io.Writer, info DocumentInfo) Canvas
