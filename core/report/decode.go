package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

var errNotAnArray = errors.New("expected a JSON array of objects")

// DecodeRecords reads a JSON array of objects, keeping each object's key order.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "reading array start")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errNotAnArray
	}

	records := make([]Record, 0)
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding record %d", len(records))
		}
		rec, ok := v.(Record)
		if !ok {
			return nil, errNotAnArray
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "reading array end")
	}
	return records, nil
}

// DecodeRecord decodes a single JSON object.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(Record)
	if !ok {
		return nil, errors.New("expected a JSON object")
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch d {
	case '{':
		rec := make(Record, 0)
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, errors.Errorf("unexpected object key %v", kt)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, errors.Wrapf(err, "decoding %q", key)
			}
			rec = append(rec, Field{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil { // '}'
			return nil, err
		}
		return rec, nil
	case '[':
		arr := make([]interface{}, 0)
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, errors.Errorf("unexpected delimiter %v", d)
	}
}
