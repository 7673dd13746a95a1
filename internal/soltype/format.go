package soltype

import (
	"strconv"
	"strings"
)

// Format renders v for display: quoted strings, spaced lists and tuples.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case StringValue:
		return strconv.Quote(v.V)
	case ArrayValue:
		return "[" + formatList(v.Items) + "]"
	case TupleValue:
		return "(" + formatList(v.Items) + ")"
	default:
		return v.String()
	}
}

func formatList(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Format(item)
	}
	return strings.Join(parts, ", ")
}

// FormatResults renders the decoded outputs of a call.
func FormatResults(values []Value) string {
	switch len(values) {
	case 0:
		return "(no return value)"
	case 1:
		return Format(values[0])
	default:
		return "(" + formatList(values) + ")"
	}
}

// FormatCall renders an invocation as name(param: value, ...). Unnamed
// parameters render their value only.
func FormatCall(name string, params []Field, values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Format(v)
		if i < len(params) && params[i].Name != "" {
			parts[i] = params[i].Name + ": " + parts[i]
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
