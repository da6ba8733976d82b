package report

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// csvFlushEvery is the number of records buffered between two flushes of the CSV stream.
const csvFlushEvery = 256

// WriteCSV writes records as CSV: a header of the first record's raw keys, then one line per
// record. Unlike the PDF path, nothing is filtered or relabelled.
func WriteCSV(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	keys := records[0].Keys()
	if err := cw.Write(keys); err != nil {
		return errors.Wrap(err, "writing csv header")
	}

	line := make([]string, len(keys))
	for i, rec := range records {
		for j, key := range keys {
			v, _ := rec.Get(key)
			line[j] = RawValue(v)
		}
		if err := cw.Write(line); err != nil {
			return errors.Wrapf(err, "writing csv record %d", i)
		}
		if (i+1)%csvFlushEvery == 0 {
			if err := flushCSV(cw, w); err != nil {
				return err
			}
		}
	}
	return flushCSV(cw, w)
}

func flushCSV(cw *csv.Writer, w io.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flushing csv")
	}
	flush(w)
	return nil
}

type flusher interface {
	Flush()
}

// flush pushes buffered bytes to the client when w supports it (http.Flusher).
func flush(w io.Writer) {
	if f, ok := w.(flusher); ok {
		f.Flush()
	}
}
