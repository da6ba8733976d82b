package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// fakeOp is a drawing call recorded by fakeCanvas.
type fakeOp struct {
	kind  string // page, fill, line, text
	x, y  float64
	w, h  float64
	y2    float64
	color Color
	text  string
	style TextStyle
}

// fakeCanvas records drawing calls and echoes them to w, one line each, so bytes reach the
// response as drawing proceeds. Text height is linear: one line per newline-separated segment.
type fakeCanvas struct {
	w    io.Writer
	info DocumentInfo
	ops  []fakeOp
	err  error

	closed bool
}

func (c *fakeCanvas) emit(op fakeOp) {
	c.ops = append(c.ops, op)
	if c.err != nil {
		return
	}
	if _, err := fmt.Fprintf(c.w, "%s %.2f %.2f %s\n", op.kind, op.x, op.y, op.text); err != nil {
		c.err = err
	}
}

func (c *fakeCanvas) MeasureWrappedHeight(text string, width float64) (float64, error) {
	if text == "" {
		return 0, nil
	}
	lines := strings.Count(text, "\n") + 1
	return float64(lines) * LineHeight(c.info.CellFont.Size), nil
}

func (c *fakeCanvas) AddPage() { c.emit(fakeOp{kind: "page"}) }

func (c *fakeCanvas) FillRect(x, y, w, h float64, fill Color) {
	c.emit(fakeOp{kind: "fill", x: x, y: y, w: w, h: h, color: fill})
}

func (c *fakeCanvas) Line(x1, y1, x2, y2, width float64, stroke Color) {
	c.emit(fakeOp{kind: "line", x: x1, y: y1, w: x2 - x1, y2: y2, color: stroke})
}

func (c *fakeCanvas) Text(x, y, width float64, text string, style TextStyle) {
	c.emit(fakeOp{kind: "text", x: x, y: y, w: width, text: text, style: style})
}

func (c *fakeCanvas) Err() error { return c.err }

func (c *fakeCanvas) Close() error {
	c.closed = true
	c.emit(fakeOp{kind: "eof"})
	return c.err
}

func (c *fakeCanvas) count(kind string) int {
	n := 0
	for _, op := range c.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func (c *fakeCanvas) texts() []string {
	var out []string
	for _, op := range c.ops {
		if op.kind == "text" {
			out = append(out, op.text)
		}
	}
	return out
}

// fakeFactory hands out fakeCanvas values and keeps the last one for inspection.
type fakeFactory struct {
	mu   sync.Mutex
	last *fakeCanvas
}

func (f *fakeFactory) New(w io.Writer, info DocumentInfo) Canvas {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = &fakeCanvas{w: w, info: info}
	return f.last
}

// logEntry is a call recorded by fakeLogger.
type logEntry struct {
	level string
	msg   string
	args  []interface{}
}

type fakeLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *fakeLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *fakeLogger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *fakeLogger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *fakeLogger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *fakeLogger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *fakeLogger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *fakeLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// rec builds a Record from alternating keys and values.
func rec(kv ...interface{}) Record {
	r := make(Record, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

// students builds n student records with the given number of fields.
func students(n, fields int) []Record {
	out := make([]Record, n)
	for i := range out {
		r := make(Record, 0, fields)
		r = append(r, Field{Key: "name", Value: fmt.Sprintf("row-%d", i)})
		for j := 1; j < fields; j++ {
			r = append(r, Field{Key: fmt.Sprintf("field%d", j), Value: fmt.Sprintf("value %d", j)})
		}
		out[i] = r
	}
	return out
}
