package report

import (
	"bytes"
	"encoding/json"
)

// Field is a single key/value pair of a Record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is an ordered, schema-less set of fields. Key order is significant: it decides the visual
// column order of a report.
type Record []Field

func (r Record) Get(key string) (interface{}, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range r {
		keys = append(keys, f.Key)
	}
	return keys
}

// Set replaces the value of key, or appends it when absent.
func (r Record) Set(key string, value interface{}) Record {
	for i, f := range r {
		if f.Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Key: key, Value: value})
}

// MarshalJSON encodes the record as a compact JSON object, keeping its key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
