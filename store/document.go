package store

import "time"

// Document is a snapshot of one stored document: its ID plus a flat
// field map. Values are the plain Go types the backends decode into:
// string, int64, bool, time.Time, []any.
type Document struct {
	ID     string
	Fields map[string]any
}

// Str returns a string field, or "" when absent or mistyped.
func (d Document) Str(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Int returns a numeric field as int, tolerating int and int64 encodings.
func (d Document) Int(field string) int {
	switch v := d.Fields[field].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Time returns a timestamp field, or the zero time when absent.
func (d Document) Time(field string) time.Time {
	t, _ := d.Fields[field].(time.Time)
	return t
}

// Strs returns an array field's string elements, skipping anything else.
func (d Document) Strs(field string) []string {
	raw, ok := d.Fields[field].([]any)
	if !ok {
		// Backends that preserve typed slices hand these back directly.
		if ss, ok := d.Fields[field].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
