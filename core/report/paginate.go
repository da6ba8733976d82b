package report

import (
	"strconv"
)

// Theme holds the report colours.
type Theme struct {
	Title     Color
	Muted     Color
	Text      Color
	HeaderBg  Color
	Zebra     Color
	Border    Color
	Separator Color
}

var DefaultTheme = Theme{
	Title:     Hex(0x111827),
	Muted:     Hex(0x6b7280),
	Text:      Hex(0x111827),
	HeaderBg:  Hex(0xf4f6f8),
	Zebra:     Hex(0xfafafa),
	Border:    Hex(0xdfe3e8),
	Separator: Hex(0xeceff1),
}

// TableStyle holds the table metrics, in points.
type TableStyle struct {
	HeaderHeight   float64
	RowMinHeight   float64
	PaddingX       float64
	PaddingY       float64
	FontSize       float64
	TitleFontSize  float64
	FooterFontSize float64
	RuleWidth      float64
	// FooterReserve is kept free above the bottom margin for the page footer.
	FooterReserve float64
	// FooterOffset is the distance from the bottom margin down to the footer text.
	FooterOffset float64
}

var DefaultTableStyle = TableStyle{
	HeaderHeight:   24,
	RowMinHeight:   16,
	PaddingX:       6,
	PaddingY:       6,
	FontSize:       10,
	TitleFontSize:  22,
	FooterFontSize: 9,
	RuleWidth:      0.5,
	FooterReserve:  30,
	FooterOffset:   16,
}

// PageCursor is the vertical drawing position on the current page.
type PageCursor struct {
	Y    float64
	Page int
}

// RowHeight is the uniform height of a table row: its tallest wrapped cell plus vertical
// padding, never below the style's minimum.
func RowHeight(m Measurer, cells []string, widths []float64, style TableStyle) (float64, error) {
	h := style.RowMinHeight
	for i, text := range cells {
		th, err := m.MeasureWrappedHeight(text, widths[i]-2*style.PaddingX)
		if err != nil {
			return 0, &MeasurementError{Text: text, Err: err}
		}
		if th+2*style.PaddingY > h {
			h = th + 2*style.PaddingY
		}
	}
	return h, nil
}

// paginator streams a document onto a Canvas: text blocks, then a table whose rows are measured,
// page-broken and drawn one at a time.
type paginator struct {
	canvas  Canvas
	page    Page
	theme   Theme
	style   TableStyle
	columns []Column
	widths  []float64

	cursor   PageCursor
	rows     int // rows drawn so far, over all pages
	inTable  bool
	finished bool
}

func newPaginator(canvas Canvas, page Page, theme Theme, style TableStyle) *paginator {
	p := &paginator{
		canvas: canvas,
		page:   page,
		theme:  theme,
		style:  style,
	}
	p.canvas.AddPage()
	p.cursor = PageCursor{Y: page.Margins.Top, Page: 1}
	return p
}

func (p *paginator) left() float64 { return p.page.Margins.Left }

func (p *paginator) maxY() float64 {
	return p.page.Size.Height - p.page.Margins.Bottom - p.style.FooterReserve
}

func (p *paginator) cellStyle() TextStyle {
	return TextStyle{Weight: Regular, Size: p.style.FontSize, Color: p.theme.Text}
}

// Cursor returns a copy of the current cursor.
func (p *paginator) Cursor() PageCursor { return p.cursor }

// Rows is the number of table rows drawn so far.
func (p *paginator) Rows() int { return p.rows }

// textLine draws a single line across the content width and moves the cursor below it.
func (p *paginator) textLine(text string, style TextStyle) {
	h := LineHeight(style.Size)
	p.ensureSpace(h)
	p.canvas.Text(p.left(), p.cursor.Y, p.page.ContentWidth(), text, style)
	p.cursor.Y += h
}

// moveDown advances the cursor by lines of text at size points.
func (p *paginator) moveDown(lines, size float64) {
	p.cursor.Y += lines * LineHeight(size)
}

// title draws the report title block. It is not repeated on following pages.
func (p *paginator) title(title, subtitle string) {
	p.textLine(title, TextStyle{Weight: Bold, Size: p.style.TitleFontSize, Color: p.theme.Title, Align: AlignCenter})
	if subtitle != "" {
		p.textLine(subtitle, TextStyle{Size: p.style.FontSize, Color: p.theme.Muted, Align: AlignCenter})
	}
	p.moveDown(1, p.style.FontSize)
}

// ensureSpace breaks the page when h does not fit above the footer reserve.
func (p *paginator) ensureSpace(h float64) {
	if p.cursor.Y+h > p.maxY() {
		p.pageBreak()
	}
}

func (p *paginator) pageBreak() {
	p.footer()
	p.canvas.AddPage()
	p.cursor = PageCursor{Y: p.page.Margins.Top, Page: p.cursor.Page + 1}
	if p.inTable {
		p.header()
	}
}

// beginTable draws the first header band of a table over columns.
func (p *paginator) beginTable(columns []Column, plan LayoutPlan) {
	p.columns = columns
	p.widths = plan.ColumnWidths
	p.inTable = true
	p.cursor.Y += p.style.PaddingY
	p.header()
}

func (p *paginator) endTable() {
	p.inTable = false
}

func (p *paginator) header() {
	y, left, width := p.cursor.Y, p.left(), p.tableWidth()

	p.canvas.FillRect(left, y, width, p.style.HeaderHeight, p.theme.HeaderBg)
	p.canvas.Line(left, y+p.style.HeaderHeight, left+width, y+p.style.HeaderHeight, p.style.RuleWidth, p.theme.Border)

	style := TextStyle{Weight: Bold, Size: p.style.FontSize, Color: p.theme.Title, Ellipsis: true}
	textY := y + (p.style.HeaderHeight-p.style.FontSize)/2 - 1
	x := left
	for i, col := range p.columns {
		p.canvas.Text(x+p.style.PaddingX, textY, p.widths[i]-2*p.style.PaddingX, col.Label, style)
		x += p.widths[i]
	}
	p.cursor.Y += p.style.HeaderHeight
}

func (p *paginator) tableWidth() float64 {
	var sum float64
	for _, w := range p.widths {
		sum += w
	}
	return sum
}

// row measures, places and draws one table row. Striping follows the global row index so it
// does not restart on a new page.
func (p *paginator) row(cells []string) error {
	h, err := RowHeight(p.canvas, cells, p.widths, p.style)
	if err != nil {
		return err
	}
	p.ensureSpace(h)

	y, left, width := p.cursor.Y, p.left(), p.tableWidth()
	if p.rows%2 == 0 {
		p.canvas.FillRect(left, y, width, h, p.theme.Zebra)
	}
	p.canvas.Line(left, y+h, left+width, y+h, p.style.RuleWidth, p.theme.Border)

	style := p.cellStyle()
	x := left
	for i, text := range cells {
		w := p.widths[i]
		p.canvas.Text(x+p.style.PaddingX, y+p.style.PaddingY, w-2*p.style.PaddingX, text, style)
		p.canvas.Line(x+w, y, x+w, y+h, p.style.RuleWidth, p.theme.Separator)
		x += w
	}

	p.cursor.Y += h
	p.rows++
	return p.canvas.Err()
}

func (p *paginator) footer() {
	size := p.page.Size
	y := size.Height - p.page.Margins.Bottom + p.style.FooterOffset
	p.canvas.Text(p.left(), y, p.page.ContentWidth(), "Page "+strconv.Itoa(p.cursor.Page),
		TextStyle{Size: p.style.FooterFontSize, Color: p.theme.Muted, Align: AlignRight})
}

// finish writes the footer of the last page and closes the canvas.
func (p *paginator) finish() error {
	if p.finished {
		return nil
	}
	p.finished = true
	p.inTable = false
	p.footer()
	if err := p.canvas.Err(); err != nil {
		return err
	}
	return p.canvas.Close()
}
