package report

import (
	"io"
	"net/http"
	"time"

	"github.com/trezcool/masomo-reports/core"
)

// DefaultSampleSize bounds the number of records used to infer columns and plan the layout.
const DefaultSampleSize = 200

const timestampLayout = "2006-01-02 15:04:05"

var nowFunc = time.Now // mockable

// Options tune a Renderer. Zero values fall back to the defaults.
type Options struct {
	SampleSize int
	Author     string
	Page       Page
	Theme      Theme
	Style      TableStyle
}

// Renderer turns a materialised record collection into a CSV or PDF download.
// It holds no per-report state and is safe for concurrent use.
type Renderer struct {
	newCanvas CanvasFactory
	logger    core.Logger
	opts      Options
}

func NewRenderer(newCanvas CanvasFactory, logger core.Logger, opts Options) *Renderer {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Page == (Page{}) {
		opts.Page = DefaultPage
	}
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme
	}
	if opts.Style == (TableStyle{}) {
		opts.Style = DefaultTableStyle
	}
	return &Renderer{newCanvas: newCanvas, logger: logger, opts: opts}
}

// Render writes the report called name in the given format to w.
//
// ErrNoData is returned before anything, headers included, is written. Failures after the
// first byte come back as *StreamError and have already been logged.
func (r *Renderer) Render(w http.ResponseWriter, name string, records []Record, format Format) error {
	if format == CSV {
		return r.renderCSV(w, name, records)
	}
	return r.renderPDF(w, name, records)
}

func (r *Renderer) renderCSV(w http.ResponseWriter, name string, records []Record) error {
	if len(records) == 0 {
		return ErrNoData
	}

	setHeaders(w, name, CSV)
	cw := &countingWriter{w: w}
	if err := WriteCSV(cw, records); err != nil {
		return r.fail(w, cw, name, CSV, err)
	}
	return nil
}

func (r *Renderer) renderPDF(w http.ResponseWriter, name string, records []Record) error {
	if len(records) == 0 {
		return ErrNoData
	}
	columns := InferColumns(r.sample(records))
	if len(columns) == 0 {
		return ErrNoData
	}
	plan, page := PlanPage(columns, r.opts.Page)

	setHeaders(w, name, PDF)
	cw := &countingWriter{w: w}
	now := nowFunc()
	title := Title(name)
	p := newPaginator(r.newCanvas(cw, r.documentInfo(title, now, page)), page, r.opts.Theme, r.opts.Style)

	p.title(title, "Generated: "+now.Format(timestampLayout))
	p.beginTable(columns, plan)
	cells := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			v, _ := rec.Get(col.Key)
			cells[i] = FormatValue(v)
		}
		if err := p.row(cells); err != nil {
			return r.fail(w, cw, name, PDF, err)
		}
	}
	p.endTable()

	if err := p.finish(); err != nil {
		return r.fail(w, cw, name, PDF, err)
	}
	r.logger.Debug("report rendered", map[string]interface{}{
		"report": name, "format": "pdf", "rows": p.Rows(), "pages": p.Cursor().Page, "bytes": cw.n,
	})
	return nil
}

func (r *Renderer) sample(records []Record) []Record {
	if len(records) > r.opts.SampleSize {
		return records[:r.opts.SampleSize]
	}
	return records
}

func (r *Renderer) documentInfo(title string, now time.Time, page Page) DocumentInfo {
	return DocumentInfo{
		Title:    title,
		Author:   r.opts.Author,
		Subject:  title,
		Created:  now,
		Page:     page,
		CellFont: TextStyle{Size: r.opts.Style.FontSize, Color: r.opts.Theme.Text},
	}
}

// fail classifies err by whether output already began. Before the first byte the download
// headers are withdrawn so the caller can still answer with an error body.
func (r *Renderer) fail(w http.ResponseWriter, cw *countingWriter, name string, format Format, err error) error {
	if cw.n == 0 {
		w.Header().Del("Content-Disposition")
		w.Header().Del("Content-Type")
		return err
	}
	serr := &StreamError{Report: name, Format: format, Written: cw.n, Err: err}
	r.logger.Error("report stream failed", serr, map[string]interface{}{
		"report": name, "format": format.Ext(), "written": cw.n,
	})
	return serr
}

func setHeaders(w http.ResponseWriter, name string, format Format) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+name+"."+format.Ext())
}

// countingWriter counts the bytes that reached the client.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) Flush() {
	flush(cw.w)
}
