package viewer

import (
	"bytes"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/reflow/wrap"
)

// DefaultStyle is the chroma style used for the detail pane.
const DefaultStyle = "solarized-dark"

// HighlightJSON returns s with ANSI syntax highlighting, wrapped to width
// visible cells when width is positive. The input is returned unchanged
// when highlighting fails.
func HighlightJSON(s string, width int) string {
	return Highlight(s, "json", DefaultStyle, width)
}

// Highlight colours code with the named chroma lexer and style. Wrapping
// happens after highlighting so escape codes are not split.
func Highlight(code, language, styleName string, width int) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return wrapTo(code, width)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return wrapTo(code, width)
	}
	return wrapTo(buf.String(), width)
}

func wrapTo(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(s, width)
}
