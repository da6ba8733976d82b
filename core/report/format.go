package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// displayField is the field a nested reference resolves to.
const displayField = "name"

// FormatValue converts any field value into its display string.
// A nested reference resolves to its name when it has one; it is never walked any deeper.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case Record:
		if name, ok := val.Get(displayField); ok {
			if s := scalarString(name); s != "" {
				return s
			}
		}
	case map[string]interface{}:
		if name, ok := val[displayField]; ok {
			if s := scalarString(name); s != "" {
				return s
			}
		}
	}
	return RawValue(v)
}

// RawValue converts a value into its canonical string without resolving nested references.
func RawValue(v interface{}) string {
	if s, ok := scalar(v); ok {
		return s
	}
	return compact(v)
}

// scalarString is RawValue restricted to scalars; composites yield "".
func scalarString(v interface{}) string {
	s, _ := scalar(v)
	return s
}

func scalar(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case time.Time:
		return val.Format(time.RFC3339), true
	case *time.Time:
		if val == nil {
			return "", true
		}
		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		return val.String(), true
	}
	return "", false
}

func compact(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
