package dto

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Payload is a loosely typed request body. Handlers that accept both
// camelCase and snake_case keys, or multipart fields, read through it.
type Payload map[string]any

// PayloadFromForm keeps the first value of every multipart field.
func PayloadFromForm(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// Lookup returns the first non-null value among keys.
func (p Payload) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any of keys carries a non-null value.
func (p Payload) Has(keys ...string) bool {
	_, ok := p.Lookup(keys...)
	return ok
}

// String returns the trimmed string form of the first present key.
func (p Payload) String(keys ...string) string {
	v, ok := p.Lookup(keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// Float parses the first present key as a number.
func (p Payload) Float(keys ...string) (float64, bool) {
	v, ok := p.Lookup(keys...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f, err == nil
}

// Int parses the first present key as an integer, truncating decimals.
func (p Payload) Int(keys ...string) (int, bool) {
	f, ok := p.Float(keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool accepts true, "true" and "1".
func (p Payload) Bool(keys ...string) bool {
	v, ok := p.Lookup(keys...)
	if !ok {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	s := strings.ToLower(strings.TrimSpace(stringify(v)))
	return s == "true" || s == "1"
}

// Object returns a nested JSON object, or an empty payload.
func (p Payload) Object(key string) Payload {
	if m, ok := p[key].(map[string]any); ok {
		return Payload(m)
	}
	return Payload{}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
