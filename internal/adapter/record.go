package adapter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"signal-io/internal/jsonl"
)

const unknown = "unknown"

// record reads typed fields out of a decoded JSON object.
// JSON null is treated the same as an absent key.
type record map[string]any

func (r record) value(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str returns the field rendered as a string, or def when absent.
func (r record) str(key, def string) string {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	return stringify(v)
}

func (r record) trimmed(key, def string) string {
	return strings.TrimSpace(r.str(key, def))
}

func (r record) lower(key, def string) string {
	return strings.ToLower(r.trimmed(key, def))
}

// optStr returns nil when the field is absent.
func (r record) optStr(key string) *string {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	s := stringify(v)
	return &s
}

func (r record) float(key string) (float64, error) {
	v, ok := r.value(key)
	if !ok {
		return 0, nil
	}
	return toFloat(key, v)
}

func (r record) optFloat(key string) (*float64, error) {
	v, ok := r.value(key)
	if !ok {
		return nil, nil
	}
	f, err := toFloat(key, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return jsonl.Compact(t)
	}
}

func toFloat(key string, v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(t.String(), 64)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case float64:
		f = t
	default:
		err = fmt.Errorf("not a number")
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number for %s: %s", key, stringify(v))
	}
	return f, nil
}

// numbers reads numeric fields and keeps the first failure.
// In lenient mode failures read as 0 and are not kept.
type numbers struct {
	rec     record
	lenient bool
	err     error
}

func (n *numbers) float(key string) float64 {
	f, err := n.rec.float(key)
	n.keep(err)
	return f
}

func (n *numbers) optFloat(key string) *float64 {
	f, err := n.rec.optFloat(key)
	if err != nil {
		n.keep(err)
		if n.lenient {
			zero := 0.0
			return &zero
		}
	}
	return f
}

func (n *numbers) keep(err error) {
	if err != nil && !n.lenient && n.err == nil {
		n.err = err
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// keyFloat renders amounts in dedup keys.
func keyFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 8, 64)
}

func keyOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return keyFloat(*f)
}

func joinKey(parts ...string) string {
	return strings.Join(parts, "|")
}
