package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one decoded resource record. Keys and nesting follow the API's JSON.
type Row map[string]any

// Collection is one page of rows as returned by a list call.
type Collection struct {
	Rows       []Row
	TotalPages int
}

// Lookup resolves a dotted path ("user.name", "orderItems.0.quantity").
func (r Row) Lookup(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case Row:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// String renders the value at path as text; missing values yield "".
func (r Row) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// First returns the first non-empty string among paths.
func (r Row) First(paths ...string) string {
	for _, p := range paths {
		if s := r.String(p); s != "" {
			return s
		}
	}
	return ""
}

// Float reads a numeric value, accepting numeric strings.
func (r Row) Float(path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Int reads an integral value, truncating floats.
func (r Row) Int(path string) (int, bool) {
	f, ok := r.Float(path)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Time parses an RFC 3339 (or date-only) timestamp.
func (r Row) Time(path string) (time.Time, bool) {
	s := r.String(path)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Items returns the slice at path.
func (r Row) Items(path string) []any {
	v, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	return items
}

// ID returns the row identifier stored under field.
func (r Row) ID(field string) string {
	if field == "" {
		field = defaultIDField
	}
	return r.String(field)
}

// Stringify formats a decoded JSON value for display.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// ToFloat converts decoded JSON numbers and numeric strings.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
