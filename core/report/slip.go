package report

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// slipColumns are the fixed columns of a result slip table.
var slipColumns = []string{"subject", "exam", "score", "grade"}

const notAvailable = "N/A"

// SlipSummary aggregates a student's results.
type SlipSummary struct {
	Subjects int
	Total    float64
	Average  float64
}

// Summarize totals the numeric scores of results; non-numeric scores count as 0.
func Summarize(results []Record) SlipSummary {
	s := SlipSummary{Subjects: len(results)}
	for _, res := range results {
		v, _ := res.Get("score")
		if f, err := strconv.ParseFloat(RawValue(v), 64); err == nil {
			s.Total += f
		}
	}
	if s.Subjects > 0 {
		s.Average = s.Total / float64(s.Subjects)
	}
	return s
}

// SlipFilename is the download name of a student's result slip.
func SlipFilename(student Record) string {
	if name := field(student, "name"); name != "" {
		return "result-slip-" + name
	}
	return "result-slip-" + field(student, "_id")
}

// RenderResultSlip writes a single student's result slip as a PDF: student details, a table of
// results and a score summary.
func (r *Renderer) RenderResultSlip(w http.ResponseWriter, student Record, results []Record) error {
	if len(results) == 0 {
		return ErrNoData
	}

	columns := make([]Column, 0, len(slipColumns))
	for _, key := range slipColumns {
		columns = append(columns, Column{Key: key, Label: Label(key)})
	}
	sample := r.sample(results)
	for i := range columns {
		for _, res := range sample {
			if n := len([]rune(slipValue(res, columns[i].Key))); n > columns[i].ContentWidthHint {
				columns[i].ContentWidthHint = n
			}
		}
	}
	page := r.opts.Page.Oriented(Portrait)
	plan := Plan(columns, page.ContentWidth())

	name := SlipFilename(student)
	setHeaders(w, name, PDF)
	cw := &countingWriter{w: w}
	now := nowFunc()
	p := newPaginator(r.newCanvas(cw, r.documentInfo("Result Slip", now, page)), page, r.opts.Theme, r.opts.Style)

	theme, size := r.opts.Theme, r.opts.Style.FontSize
	heading := TextStyle{Weight: Bold, Size: 14, Color: theme.Title}
	body := TextStyle{Size: 11, Color: theme.Text}

	p.textLine("RESULT SLIP", TextStyle{Weight: Bold, Size: 20, Color: theme.Title, Align: AlignCenter})
	p.moveDown(0.5, 20)
	p.textLine("Academic Performance Report", TextStyle{Size: 12, Color: theme.Muted, Align: AlignCenter})
	p.moveDown(1.5, 12)

	p.textLine("Student Information", heading)
	p.moveDown(0.3, 14)
	p.textLine("Name: "+orNA(field(student, "name")), body)
	p.textLine("Student ID: "+field(student, "_id"), body)
	p.textLine("Grade: "+orNA(field(student, "grade")), body)
	p.textLine("Section: "+orNA(field(student, "section")), body)
	p.textLine("Email: "+orNA(field(student, "email")), body)
	if parent, ok := student.Get("parent"); ok && parent != nil {
		p.textLine(fmt.Sprintf("Parent: %s (%s)", orNA(nestedField(parent, "name")), orNA(nestedField(parent, "email"))), body)
	}
	p.moveDown(1, 11)

	p.textLine("Academic Results", heading)
	p.moveDown(0.5, 14)
	p.beginTable(columns, plan)
	cells := make([]string, len(columns))
	for _, res := range results {
		for i, col := range columns {
			cells[i] = slipValue(res, col.Key)
		}
		if err := p.row(cells); err != nil {
			return r.fail(w, cw, name, PDF, err)
		}
	}
	p.endTable()

	sum := Summarize(results)
	p.moveDown(2, size)
	p.textLine("Summary", TextStyle{Weight: Bold, Size: 12, Color: theme.Title})
	p.moveDown(0.3, 12)
	p.textLine("Total Subjects: "+strconv.Itoa(sum.Subjects), body)
	p.textLine("Total Score: "+strconv.FormatFloat(sum.Total, 'f', -1, 64), body)
	p.textLine("Average Score: "+strconv.FormatFloat(sum.Average, 'f', 2, 64)+"%", body)

	p.moveDown(2, 11)
	small := TextStyle{Size: 9, Color: theme.Muted, Align: AlignCenter}
	p.textLine("Generated on: "+now.Format(timestampLayout), small)
	p.textLine("This is a system-generated document.", small)

	if err := p.finish(); err != nil {
		return r.fail(w, cw, name, PDF, errors.Wrap(err, "finishing result slip"))
	}
	return nil
}

func slipValue(res Record, key string) string {
	v, _ := res.Get(key)
	return orNA(FormatValue(v))
}

func field(rec Record, key string) string {
	v, _ := rec.Get(key)
	return RawValue(v)
}

func nestedField(v interface{}, key string) string {
	switch val := v.(type) {
	case Record:
		return field(val, key)
	case map[string]interface{}:
		return RawValue(val[key])
	}
	return ""
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
