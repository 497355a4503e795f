package restfile

import "net/http"

// LineRange covers the request region in its source document,
// 1-based and inclusive.
type LineRange struct {
	Start int
	End   int
}

type RequestMetadata struct {
	Name        string
	Description string
	Tags        []string

	// Presentation directives parsed from the request region.
	OpenWith     string
	NoView       bool
	SaveSilently bool
}

type BodySource struct {
	Text     string
	FilePath string
	MimeType string
}

// Request is the originating request region a response correlates
// back to. Only identity and presentation directives matter here;
// execution concerns live with the caller.
type Request struct {
	Metadata  RequestMetadata
	Method    string
	URL       string
	Headers   http.Header
	Body      BodySource
	LineRange LineRange
}

func (r *Request) Title() string {
	if r == nil {
		return ""
	}
	if r.Metadata.Name != "" {
		return r.Metadata.Name
	}
	if r.Method != "" && r.URL != "" {
		return r.Method + " " + r.URL
	}
	return r.URL
}
