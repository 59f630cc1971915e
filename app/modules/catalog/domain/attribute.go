package catalogdomain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AttributeValue is an item attribute resolved against the game schema.
// It is one of Scalar, Numeric or List.
type AttributeValue interface {
	// Raw returns the value as it was stored (or defaulted).
	Raw() any
	// Tokens returns the lower-cased, trimmed token set used for categorical comparison.
	Tokens() []string
	isAttributeValue()
}

// Scalar is a plain string value. Comma separated scalars tokenise into several entries.
type Scalar struct {
	raw   any
	Value string
}

// Numeric is a value of an attribute the game marks as numeric.
type Numeric struct {
	raw   any
	Value float64
	Valid bool
}

// List is a list-like value stored as a JSON array.
type List struct {
	raw    any
	Values []string
}

func (s Scalar) Raw() any  { return s.raw }
func (n Numeric) Raw() any { return n.raw }
func (l List) Raw() any    { return l.raw }

func (Scalar) isAttributeValue()  {}
func (Numeric) isAttributeValue() {}
func (List) isAttributeValue()    {}

func (s Scalar) Tokens() []string { return splitTokens(s.Value) }

func (n Numeric) Tokens() []string { return splitTokens(stringify(n.raw)) }

func (l List) Tokens() []string {
	out := make([]string, 0, len(l.Values))
	for _, v := range l.Values {
		if t := strings.ToLower(strings.TrimSpace(v)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveValue turns a raw stored value into an AttributeValue, substituting
// def when raw is missing, an empty string or an empty list.
func ResolveValue(raw, def any, numeric bool) AttributeValue {
	if isEmpty(raw) {
		raw = def
	}
	if numeric {
		v, ok := parseRawNumber(raw)
		return Numeric{raw: raw, Value: v, Valid: ok}
	}
	if items, ok := raw.([]any); ok {
		vals := make([]string, 0, len(items))
		for _, it := range items {
			vals = append(vals, stringify(it))
		}
		return List{raw: raw, Values: vals}
	}
	if items, ok := raw.([]string); ok {
		return List{raw: raw, Values: items}
	}
	return Scalar{raw: raw, Value: stringify(raw)}
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case []any:
		parts := make([]string, 0, len(v))
		for _, it := range v {
			parts = append(parts, stringify(it))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}
