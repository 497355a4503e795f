package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestFromHTTPCapturesExchange(t *testing.T) {
	target, _ := url.Parse("https://api.example.com/users/7")
	resp := &http.Response{
		Status:     "200 OK",
		StatusCode: 200,
		Proto:      "HTTP/1.1",
		Header: http.Header{
			"Content-Type": []string{"application/json; charset=utf-8"},
		},
		Body:    io.NopCloser(bytes.NewBufferString(`{"id":7}`)),
		Request: &http.Request{URL: target},
	}

	got, err := FromHTTP(resp, nil, 120*time.Millisecond)
	if err != nil {
		t.Fatalf("FromHTTP: %v", err)
	}
	if got.StatusCode != 200 || got.Status != "200 OK" {
		t.Fatalf("unexpected status: %q (%d)", got.Status, got.StatusCode)
	}
	if string(got.Body) != `{"id":7}` {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	if got.EffectiveURL != "https://api.example.com/users/7" {
		t.Fatalf("unexpected effective url: %q", got.EffectiveURL)
	}
	if got.MediaType() != "application/json" {
		t.Fatalf("unexpected media type: %q", got.MediaType())
	}
}

func TestHasContent(t *testing.T) {
	var nilResp *Response
	if nilResp.HasContent() {
		t.Fatal("nil response should have no content")
	}
	if (&Response{}).HasContent() {
		t.Fatal("empty response should have no content")
	}
	if !(&Response{Status: "204 No Content"}).HasContent() {
		t.Fatal("status-only response still has content to present")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := &Response{
		Headers: http.Header{"X-Trace": []string{"a"}},
		Body:    []byte("payload"),
	}
	clone := orig.Clone()
	clone.Body[0] = 'X'
	clone.Headers.Set("X-Trace", "b")

	if string(orig.Body) != "payload" {
		t.Fatalf("clone mutated original body: %q", orig.Body)
	}
	if orig.Headers.Get("X-Trace") != "a" {
		t.Fatalf("clone mutated original headers")
	}
}
