package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaginator(buf *bytes.Buffer, columns []Column) (*paginator, *fakeCanvas) {
	plan, page := PlanPage(columns, DefaultPage)
	c := &fakeCanvas{w: buf, info: DocumentInfo{Page: page, CellFont: TextStyle{Size: DefaultTableStyle.FontSize}}}
	p := newPaginator(c, page, DefaultTheme, DefaultTableStyle)
	p.title("Students Report", "Generated: now")
	p.beginTable(columns, plan)
	return p, c
}

func TestRowHeight(t *testing.T) {
	c := &fakeCanvas{info: DocumentInfo{CellFont: TextStyle{Size: 10}}}
	widths := []float64{100, 100}
	style := DefaultTableStyle

	tests := []struct {
		name  string
		cells []string
		want  float64
	}{
		{name: "empty cells use the minimum", cells: []string{"", ""}, want: style.RowMinHeight},
		{name: "single line", cells: []string{"a", "b"}, want: LineHeight(10) + 2*style.PaddingY},
		{name: "tallest cell wins", cells: []string{"a", "b\nc\nd"}, want: 3*LineHeight(10) + 2*style.PaddingY},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := RowHeight(c, tt.cells, widths, style)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, h, epsilon)
		})
	}
}

type brokenMeasurer struct{}

func (brokenMeasurer) MeasureWrappedHeight(string, float64) (float64, error) {
	return 0, errors.New("no font")
}

func TestRowHeight_MeasurementError(t *testing.T) {
	_, err := RowHeight(brokenMeasurer{}, []string{"x"}, []float64{100}, DefaultTableStyle)
	var merr *MeasurementError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "x", merr.Text)
}

func TestPaginator_Rows(t *testing.T) {
	const n = 100
	records := students(n, 3)
	columns := InferColumns(records)

	var buf bytes.Buffer
	p, c := newTestPaginator(&buf, columns)
	maxY := p.maxY()
	for _, r := range records {
		cells := make([]string, len(columns))
		for i, col := range columns {
			v, _ := r.Get(col.Key)
			cells[i] = FormatValue(v)
		}
		require.NoError(t, p.row(cells))
	}
	p.endTable()
	require.NoError(t, p.finish())

	pages := p.Cursor().Page
	assert.Greater(t, pages, 2)
	assert.Equal(t, n, p.Rows())
	assert.Equal(t, pages, c.count("page"))
	assert.True(t, c.closed)

	texts := c.texts()
	var footers, headers, rows int
	for _, s := range texts {
		switch {
		case strings.HasPrefix(s, "Page "):
			footers++
		case s == "Name":
			headers++
		case strings.HasPrefix(s, "row-"):
			rows++
		}
	}
	assert.Equal(t, pages, footers, "one footer per page")
	assert.Equal(t, pages, headers, "header repeated on every page")
	assert.Equal(t, n, rows)
	assert.Equal(t, fmt.Sprintf("Page %d", pages), texts[len(texts)-1])

	// nothing but the footer is drawn below the reserve
	for _, op := range c.ops {
		switch op.kind {
		case "fill":
			assert.LessOrEqual(t, op.y+op.h, maxY+epsilon)
		case "line":
			assert.LessOrEqual(t, op.y2, maxY+epsilon)
		}
	}
}

func TestPaginator_Striping(t *testing.T) {
	records := students(120, 2)
	columns := InferColumns(records)

	var buf bytes.Buffer
	p, c := newTestPaginator(&buf, columns)
	for _, r := range records {
		name, _ := r.Get("name")
		require.NoError(t, p.row([]string{name.(string), "x"}))
	}
	require.NoError(t, p.finish())
	require.Greater(t, p.Cursor().Page, 1)

	// each row is preceded by a zebra fill iff its global index is even, across page breaks
	zebra := false
	for _, op := range c.ops {
		switch {
		case op.kind == "fill" && op.color == DefaultTheme.Zebra:
			zebra = true
		case op.kind == "text" && strings.HasPrefix(op.text, "row-"):
			var i int
			_, err := fmt.Sscanf(op.text, "row-%d", &i)
			require.NoError(t, err)
			assert.Equal(t, i%2 == 0, zebra, op.text)
			zebra = false
		}
	}
}

func TestPaginator_TallRowMovesToNextPage(t *testing.T) {
	columns := []Column{{Key: "notes", Label: "Notes"}}

	var buf bytes.Buffer
	p, c := newTestPaginator(&buf, columns)
	tall := strings.TrimSuffix(strings.Repeat("line\n", 55), "\n")

	require.NoError(t, p.row([]string{"short"}))
	require.NoError(t, p.row([]string{tall}))
	require.NoError(t, p.finish())

	assert.Equal(t, 2, p.Cursor().Page)
	var page int
	for _, op := range c.ops {
		if op.kind == "page" {
			page++
		}
		if op.kind == "text" && op.text == tall {
			assert.Equal(t, 2, page)
			assert.InDelta(t, DefaultPage.Margins.Top+DefaultTableStyle.HeaderHeight+DefaultTableStyle.PaddingY, op.y, epsilon)
		}
	}
}

func TestPaginator_StopsOnCanvasError(t *testing.T) {
	columns := []Column{{Key: "name", Label: "Name"}}
	p, c := newTestPaginator(&bytes.Buffer{}, columns)

	c.err = errors.New("connection reset")
	assert.EqualError(t, p.row([]string{"x"}), "connection reset")
	assert.EqualError(t, p.finish(), "connection reset")
	assert.False(t, c.closed)
}
