package liquet

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// displayTimeFormat is the fixed presentation format for date/time
// values emitted by the field accessor tags. Times are converted to
// the display timezone before formatting.
const displayTimeFormat = "Monday, January 02 15:04:05"

var displayLocation = time.UTC

// formatValue applies the fixed type dispatch of the field accessor
// tags. Strings pass through raw unless escape is set; booleans render
// as Yes/No; times use the display format; maps pretty-print as JSON
// (escaped variant only) and are re-dispatched as strings.
func formatValue(v any, escape bool) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "Yes", nil
		}
		return "No", nil
	case string:
		if escape {
			return EscapeHTML(val), nil
		}
		return val, nil
	case time.Time:
		return val.In(displayLocation).Format(displayTimeFormat), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case map[string]any:
		if !escape {
			return "", NewError(ErrInvalidOperation, "cannot format a map value; use the html tag")
		}
		pretty, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return "", NewError(ErrInvalidOperation, fmt.Sprintf("cannot encode map value: %v", err))
		}
		return formatValue(string(pretty), escape)
	default:
		return fmt.Sprint(val), nil
	}
}

// stringify renders a value for plain {{ }} interpolation. Unlike the
// accessor tags it has no display conventions: nil renders empty and
// everything else uses its natural string form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// EscapeHTML escapes a string for HTML text and attribute contexts.
func EscapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const (
	highlightOpen  = "<mark>"
	highlightClose = "</mark>"
)

// highlightLiteral wraps every case-insensitive occurrence of needle
// in s with the highlight marker. The needle is treated as a literal,
// not a pattern.
func highlightLiteral(s, needle string) string {
	if needle == "" {
		return s
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
	if err != nil {
		return s
	}
	return highlightPattern(s, re)
}

// highlightPattern wraps every match of re in s with the highlight
// marker. A nil pattern leaves s untouched.
func highlightPattern(s string, re *regexp.Regexp) string {
	if re == nil {
		return s
	}
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return highlightOpen + m + highlightClose
	})
}
