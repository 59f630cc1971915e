package catalogdomain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var numberToken = regexp.MustCompile(`[-+]?\d[\d.,]*`)

// ParseNumber extracts the first signed number from s. Both European and
// American separator conventions are accepted:
//
//	"1.234.567" -> 1234567   (repeated dots only: thousands)
//	"1,234,567" -> 1234567   (repeated commas only: thousands)
//	"1.234,5"   -> 1234.5    (both: the last one is the decimal mark)
//	"1,5"       -> 1.5       (single comma: decimal)
func ParseNumber(s string) (float64, bool) {
	tok := numberToken.FindString(s)
	if tok == "" {
		return 0, false
	}

	dots := strings.Count(tok, ".")
	commas := strings.Count(tok, ",")
	switch {
	case dots > 1 && commas == 0:
		tok = strings.ReplaceAll(tok, ".", "")
	case commas > 1 && dots == 0:
		tok = strings.ReplaceAll(tok, ",", "")
	case dots > 0 && commas > 0:
		if strings.LastIndex(tok, ",") > strings.LastIndex(tok, ".") {
			tok = strings.ReplaceAll(tok, ".", "")
			tok = strings.ReplaceAll(tok, ",", ".")
		} else {
			tok = strings.ReplaceAll(tok, ",", "")
		}
	case commas == 1:
		tok = strings.ReplaceAll(tok, ",", ".")
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseRawNumber handles the shapes a decoded JSON attribute can take.
func parseRawNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return ParseNumber(v.String())
	case string:
		return ParseNumber(v)
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		return parseRawNumber(v[0])
	default:
		return ParseNumber(stringify(raw))
	}
}
