package nvsql

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

// Highlight formats.
const (
	FormatTerminal   = "terminal256"
	FormatTrueColor  = "terminal16m"
	FormatHTML       = "html"
	DefaultStyle     = "monokai"
	DefaultHTMLStyle = "github"
)

// Highlight writes sql to w with syntax highlighting in format, one of the
// Format constants. HTML is a <pre> fragment with inline styles. An unknown
// style falls back to the chroma default.
func Highlight(w io.Writer, sql, format, style string) error {
	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	var formatter chroma.Formatter
	switch format {
	case FormatHTML:
		formatter = html.New(html.TabWidth(4))
	case FormatTerminal, FormatTrueColor:
		formatter = formatters.Get(format)
	default:
		return fmt.Errorf("unknown highlight format %q", format)
	}

	it, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return err
	}
	return formatter.Format(w, styles.Get(style), it)
}
