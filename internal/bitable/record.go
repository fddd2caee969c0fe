package bitable

import "time"

// Record is one row of a remote table: a store-assigned identifier plus a
// mapping from field name to typed value.
type Record struct {
	ID     string
	Fields map[string]any
}

// String returns a string field, or "" when absent.
func (r Record) String(key string) string {
	if v, ok := r.Fields[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an integer field. The store serializes numbers as JSON
// floats, so both representations are accepted.
func (r Record) Int(key string) int64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns a boolean field, falling back to def when absent.
func (r Record) Bool(key string, def bool) bool {
	if v, ok := r.Fields[key].(bool); ok {
		return v
	}
	return def
}

// Time interprets an integer field as a millisecond timestamp.
func (r Record) Time(key string) time.Time {
	ms := r.Int(key)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
