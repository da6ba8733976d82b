package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keys never shown in a PDF report. Sensitivity is not inferred: new secret fields must be added here.
const reservedPrefix = "_"

var excludedKeys = map[string]bool{
	"__v":      true, // document version marker
	"password": true,
}

// Column is a displayable report column derived from the data.
type Column struct {
	Key   string
	Label string
	// ContentWidthHint is the longest formatted value of the column in the sample, in runes.
	ContentWidthHint int
}

// IsExcluded reports whether key is an internal or sensitive field.
func IsExcluded(key string) bool {
	return strings.HasPrefix(key, reservedPrefix) || excludedKeys[key]
}

// InferColumns derives the report columns from the key order of the first sampled record.
// An empty sample yields no columns.
func InferColumns(sample []Record) []Column {
	if len(sample) == 0 {
		return []Column{}
	}

	cols := make([]Column, 0, len(sample[0]))
	for _, key := range sample[0].Keys() {
		if IsExcluded(key) {
			continue
		}
		cols = append(cols, Column{Key: key, Label: Label(key)})
	}

	for _, rec := range sample {
		for i := range cols {
			v, _ := rec.Get(cols[i].Key)
			if n := utf8.RuneCountInString(FormatValue(v)); n > cols[i].ContentWidthHint {
				cols[i].ContentWidthHint = n
			}
		}
	}
	return cols
}

// Label turns a camelCase or snake_case key into a Title Case label:
// "studentId" -> "Student Id", "fee_type" -> "Fee Type".
func Label(key string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
			upperNext = true
			continue
		case r >= 'A' && r <= 'Z':
			if !upperNext {
				b.WriteRune(' ')
			}
		case upperNext:
			r = unicode.ToUpper(r)
		}
		upperNext = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
