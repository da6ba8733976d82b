package main

import (
	"io"
	"net/http"
	"os"
)

// download adapts a file or stream to the http.ResponseWriter the report renderer writes to.
// A file download is only created once the first byte is written, so a report that fails
// before any output leaves no file behind.
type download struct {
	header  http.Header
	w       io.Writer
	path    string
	file    *os.File
	written int64
}

func newDownload(w io.Writer) *download {
	return &download{header: make(http.Header), w: w}
}

func newFileDownload(path string) *download {
	return &download{header: make(http.Header), path: path}
}

func (d *download) Header() http.Header { return d.header }

func (d *download) WriteHeader(int) {}

func (d *download) Write(p []byte) (int, error) {
	if d.w == nil {
		f, err := os.Create(d.path)
		if err != nil {
			return 0, err
		}
		d.file, d.w = f, f
	}
	n, err := d.w.Write(p)
	d.written += int64(n)
	return n, err
}

func (d *download) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
