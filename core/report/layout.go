package report

import (
	"math"
	"unicode/utf8"
)

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

const (
	// landscapeThreshold is the column count above which pages are turned to landscape.
	landscapeThreshold = 6

	minLabelWeight   = 6
	maxContentWeight = 60
	minColumnWidth   = 60.0
	columnWidthFloor = 120.0
)

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// A4 is the report page size, portrait.
var A4 = Size{Width: 595.28, Height: 841.89}

type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins are the fixed report margins.
var DefaultMargins = Margins{Top: 56, Right: 48, Bottom: 56, Left: 48}

// Page is the geometry of every page of a document.
type Page struct {
	Size    Size
	Margins Margins
}

// DefaultPage is an A4 portrait page with the default margins.
var DefaultPage = Page{Size: A4, Margins: DefaultMargins}

// Oriented returns the page turned to o.
func (p Page) Oriented(o Orientation) Page {
	w, h := math.Min(p.Size.Width, p.Size.Height), math.Max(p.Size.Width, p.Size.Height)
	if o == Landscape {
		w, h = h, w
	}
	p.Size = Size{Width: w, Height: h}
	return p
}

// ContentWidth is the page width between the left and right margins.
func (p Page) ContentWidth() float64 {
	return p.Size.Width - p.Margins.Left - p.Margins.Right
}

// LayoutPlan holds the page orientation and per-column widths of a report. Widths always sum to
// the usable page width.
type LayoutPlan struct {
	Orientation  Orientation
	ColumnWidths []float64
}

// Width is the total table width.
func (lp LayoutPlan) Width() float64 {
	var sum float64
	for _, w := range lp.ColumnWidths {
		sum += w
	}
	return sum
}

func ChooseOrientation(columns int) Orientation {
	if columns > landscapeThreshold {
		return Landscape
	}
	return Portrait
}

// MaxColumnWidth is the widest any column may be planned on a page of the given usable width.
func MaxColumnWidth(pageWidth float64) float64 {
	return math.Max(columnWidthFloor, pageWidth/2)
}

// Plan computes column widths proportional to content over pageWidth.
//
// Each column weighs max(label length, min(60, longest value)); widths are clamped to
// [60, max(120, pageWidth/2)] and the last column then absorbs whatever the clamping added or
// removed, so the widths always add up to pageWidth.
func Plan(columns []Column, pageWidth float64) LayoutPlan {
	plan := LayoutPlan{
		Orientation:  ChooseOrientation(len(columns)),
		ColumnWidths: make([]float64, len(columns)),
	}
	if len(columns) == 0 {
		return plan
	}

	weights := make([]float64, len(columns))
	var total float64
	for i, col := range columns {
		w := columnWeight(col)
		weights[i] = w
		total += w
	}
	if total == 0 {
		total = 1
	}

	maxCol := MaxColumnWidth(pageWidth)
	var sum float64
	for i, w := range weights {
		width := math.Max(minColumnWidth, math.Min(maxCol, w/total*pageWidth))
		plan.ColumnWidths[i] = width
		sum += width
	}

	plan.ColumnWidths[len(columns)-1] += pageWidth - sum
	return plan
}

// PlanPage picks the orientation for columns, turns page accordingly and plans over its usable width.
func PlanPage(columns []Column, page Page) (LayoutPlan, Page) {
	page = page.Oriented(ChooseOrientation(len(columns)))
	return Plan(columns, page.ContentWidth()), page
}

func columnWeight(col Column) float64 {
	label := utf8.RuneCountInString(col.Label)
	if label < minLabelWeight {
		label = minLabelWeight
	}
	content := col.ContentWidthHint
	if content > maxContentWeight {
		content = maxContentWeight
	}
	if content > label {
		return float64(content)
	}
	return float64(label)
}
