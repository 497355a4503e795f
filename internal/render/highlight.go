package render

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/quick"
)

// Highlight writes the source with terminal syntax colouring when the
// content type maps to a known lexer, and plain otherwise.
func Highlight(w io.Writer, source, contentType string) error {
	lexer := lexerFor(contentType)
	if lexer == "" {
		_, err := io.WriteString(w, source)
		return err
	}
	if err := quick.Highlight(w, source, lexer, "terminal256", "monokai"); err != nil {
		_, werr := io.WriteString(w, source)
		return werr
	}
	return nil
}

func lexerFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	case strings.Contains(ct, "css"):
		return "css"
	case strings.Contains(ct, "yaml"):
		return "yaml"
	default:
		return ""
	}
}
