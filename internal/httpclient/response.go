package httpclient

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fredrikhr/restview/internal/restfile"
)

// Response is a completed exchange as handed to the response store.
// Execution lives with the caller; this type only carries the result.
type Response struct {
	Status       string
	StatusCode   int
	Proto        string
	Headers      http.Header
	Body         []byte
	PrettyBody   string
	Duration     time.Duration
	EffectiveURL string
	Request      *restfile.Request
}

func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}

// MediaType returns the bare media type without parameters,
// lowercased, or "" when the header is absent or malformed.
func (r *Response) MediaType() string {
	contentType := r.ContentType()
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func (r *Response) ContentDisposition() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Content-Disposition")
}

// HasContent reports whether there is anything worth presenting:
// a body, headers, or at least a status line.
func (r *Response) HasContent() bool {
	if r == nil {
		return false
	}
	return len(r.Body) > 0 || len(r.Headers) > 0 || r.Status != ""
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	return h.Clone()
}

// FromHTTP drains and closes resp.Body and captures the parts of the
// exchange the store cares about. The passed request region may be nil.
func FromHTTP(resp *http.Response, req *restfile.Request, dur time.Duration) (*Response, error) {
	if resp == nil {
		return &Response{Request: req, Duration: dur}, nil
	}

	var body []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		body = data
	}

	effectiveURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		effectiveURL = resp.Request.URL.String()
	}

	return &Response{
		Status:       resp.Status,
		StatusCode:   resp.StatusCode,
		Proto:        resp.Proto,
		Headers:      cloneHeader(resp.Header),
		Body:         body,
		Duration:     dur,
		EffectiveURL: effectiveURL,
		Request:      req,
	}, nil
}

// Clone returns a deep copy so renderers can work on a snapshot while
// the store shrinks the original.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Headers = cloneHeader(r.Headers)
	clone.Body = append([]byte(nil), r.Body...)
	return &clone
}
