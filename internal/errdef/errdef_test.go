package errdef

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapNilIsNil(t *testing.T) {
	if err := Wrap(CodeStorage, nil, "write blob"); err != nil {
		t.Fatalf("expected nil for wrapped nil, got %v", err)
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	inner := New(CodeFilesystem, "open %s", "history.db")
	outer := fmt.Errorf("load: %w", inner)
	if got := CodeOf(outer); got != CodeFilesystem {
		t.Fatalf("expected filesystem code, got %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code for foreign error, got %q", got)
	}
}

func TestMessageOmitsCause(t *testing.T) {
	err := Wrap(CodeStorage, errors.New("disk full"), "persist response")
	if got := Message(err); got != "persist response" {
		t.Fatalf("expected annotated message only, got %q", got)
	}
	if got := err.Error(); got != "persist response: disk full" {
		t.Fatalf("expected full error string, got %q", got)
	}
}
