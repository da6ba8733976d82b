package report

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoData is returned before any output when there is nothing to render.
	ErrNoData = errors.New("no data found for this report")
	// ErrUnsupportedKind is returned for an unknown report name.
	ErrUnsupportedKind = errors.New("invalid report type")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// StreamError is a failure that happened after output began. The response can no longer carry
// an error body: the client gets a truncated document.
type StreamError struct {
	Report string
	Format Format
	// Written is the number of bytes already sent.
	Written int64
	Err     error
}

func (e *StreamError) Error() string {
	return "streaming " + e.Report + "." + e.Format.Ext() + ": " + e.Err.Error()
}

func (e *StreamError) Unwrap() error { return e.Err }

// MeasurementError is returned when the wrapped height of a cell cannot be computed.
type MeasurementError struct {
	Text string
	Err  error
}

func (e *MeasurementError) Error() string {
	return "measuring text: " + e.Err.Error()
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// IsStreamError reports whether err happened after the first output byte.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}
