// Package pdfsvc streams paged PDF documents.
//
// Unlike a document builder that assembles the whole file in memory, objects are written out
// as soon as they are complete: page content streams are compressed on the fly, their length is
// emitted afterwards as an indirect object and the page tree, which must list every page, is
// written last together with the cross-reference table.
package pdfsvc

import (
	"bufio"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	pdfVersion  = "1.4"
	pdfProducer = "Masomo Reports"

	bufferSize = 32 * 1024
)

// Object numbers written ahead of the pages.
const (
	catalogObj = iota + 1
	pagesObj
	regularFontObj
	boldFontObj
	infoObj
	firstFreeObj
)

var errClosed = errors.New("pdf document already closed")

// objectWriter writes numbered objects and remembers their offsets for the xref table.
// Write errors are sticky.
type objectWriter struct {
	dst     io.Writer
	out     *bufio.Writer
	offset  int64
	offsets map[int]int64
	next    int
	kids    []int
	err     error
}

func newObjectWriter(w io.Writer) *objectWriter {
	return &objectWriter{
		dst:     w,
		out:     bufio.NewWriterSize(w, bufferSize),
		offsets: make(map[int]int64),
		next:    firstFreeObj,
	}
}

func (ow *objectWriter) Write(p []byte) (int, error) {
	if ow.err != nil {
		return 0, ow.err
	}
	n, err := ow.out.Write(p)
	ow.offset += int64(n)
	if err != nil {
		ow.err = errors.Wrap(err, "writing pdf")
	}
	return n, ow.err
}

func (ow *objectWriter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(ow, format, args...)
}

func (ow *objectWriter) alloc() int {
	n := ow.next
	ow.next++
	return n
}

func (ow *objectWriter) beginObject(num int) {
	ow.offsets[num] = ow.offset
	ow.printf("%d 0 obj\n", num)
}

func (ow *objectWriter) object(num int, body string) {
	ow.beginObject(num)
	ow.printf("%s\nendobj\n", body)
}

// flush hands everything buffered to the destination, and on to the client when the
// destination is an http.Flusher.
func (ow *objectWriter) flush() {
	if ow.err != nil {
		return
	}
	if err := ow.out.Flush(); err != nil {
		ow.err = errors.Wrap(err, "flushing pdf")
		return
	}
	if f, ok := ow.dst.(interface{ Flush() }); ok {
		f.Flush()
	}
}

func (ow *objectWriter) writeHeader(info map[string]string) {
	ow.printf("%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", pdfVersion)
	ow.object(catalogObj, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj))
	ow.object(regularFontObj, fontDict("Helvetica"))
	ow.object(boldFontObj, fontDict("Helvetica-Bold"))

	var sb strings.Builder
	sb.WriteString("<<")
	for _, key := range []string{"Title", "Author", "Subject", "Producer", "CreationDate"} {
		if v := info[key]; v != "" {
			sb.WriteString(fmt.Sprintf(" /%s (%s)", key, escape(v)))
		}
	}
	sb.WriteString(" >>")
	ow.object(infoObj, sb.String())
}

func fontDict(base string) string {
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", base)
}

// pageStream is the content stream of the page being drawn.
type pageStream struct {
	contentObj int
	lengthObj  int
	pageObj    int
	start      int64
	z          *zlib.Writer
}

func (ow *objectWriter) beginPage() *pageStream {
	ps := &pageStream{contentObj: ow.alloc(), lengthObj: ow.alloc(), pageObj: ow.alloc()}
	ow.beginObject(ps.contentObj)
	ow.printf("<< /Length %d 0 R /Filter /FlateDecode >>\nstream\n", ps.lengthObj)
	ps.start = ow.offset
	ps.z = zlib.NewWriter(ow)
	return ps
}

func (ow *objectWriter) endPage(ps *pageStream, width, height float64) {
	if err := ps.z.Close(); err != nil && ow.err == nil {
		ow.err = errors.Wrap(err, "compressing page")
	}
	length := ow.offset - ps.start
	ow.printf("\nendstream\nendobj\n")
	ow.object(ps.lengthObj, fmt.Sprintf("%d", length))
	ow.object(ps.pageObj, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %.2f %.2f] /Contents %d 0 R "+
			"/Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> >>",
		pagesObj, width, height, ps.contentObj, regularFontObj, boldFontObj,
	))
	ow.kids = append(ow.kids, ps.pageObj)
	ow.flush()
}

// close writes the page tree, the xref table and the trailer.
func (ow *objectWriter) close() error {
	kids := make([]string, 0, len(ow.kids))
	for _, k := range ow.kids {
		kids = append(kids, fmt.Sprintf("%d 0 R", k))
	}
	ow.object(pagesObj, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(ow.kids)))

	xref := ow.offset
	ow.printf("xref\n0 %d\n0000000000 65535 f \n", ow.next)
	for num := 1; num < ow.next; num++ {
		ow.printf("%010d 00000 n \n", ow.offsets[num])
	}
	ow.printf("trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		ow.next, catalogObj, infoObj, xref)
	ow.flush()
	return ow.err
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)

// escape escapes a PDF literal string.
func escape(s string) string {
	return escaper.Replace(s)
}
