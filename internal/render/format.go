package render

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"
)

// Pretty re-indents a JSON or XML body. The second result reports
// whether formatting applied; callers fall back to the raw body when
// it did not.
func Pretty(body []byte, contentType string) (string, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			return buf.String(), true
		}
	case strings.Contains(ct, "xml"):
		if formatted, ok := indentXML(body); ok {
			return formatted, true
		}
	}
	return "", false
}

func indentXML(body []byte) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", false
		}
		if err := encoder.EncodeToken(tok); err != nil {
			return "", false
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", false
	}
	return buf.String(), true
}

// Printable reports whether a body is reasonable to dump to a text
// surface: valid UTF-8 without NUL bytes.
func Printable(body []byte) bool {
	if !utf8.Valid(body) {
		return false
	}
	return !bytes.ContainsRune(body, 0)
}
