package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileProviderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	provider := NewFileProvider(filepath.Join(dir, "blobs"))
	ctx := context.Background()

	uri, err := provider.Write(ctx, "resp-1.json", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if uri == "" {
		t.Fatal("expected a uri")
	}

	data, err := provider.Read(ctx, uri)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("round trip mismatch: %q", data)
	}

	provider.Delete(ctx, uri)
	if _, err := os.Stat(uri); !os.IsNotExist(err) {
		t.Fatalf("expected blob removed, stat err = %v", err)
	}
}

func TestFileProviderUniqueNames(t *testing.T) {
	provider := NewFileProvider(t.TempDir())
	ctx := context.Background()

	first, err := provider.Write(ctx, "resp.json", []byte("one"))
	if err != nil {
		t.Fatalf("write first: %v", err)
	}
	second, err := provider.Write(ctx, "resp.json", []byte("two"))
	if err != nil {
		t.Fatalf("write second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct paths, both %q", first)
	}
	data, err := provider.Read(ctx, first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if string(data) != "one" {
		t.Fatalf("first blob overwritten: %q", data)
	}
}

func TestFileProviderSanitizesName(t *testing.T) {
	dir := t.TempDir()
	provider := NewFileProvider(dir)

	uri, err := provider.Write(context.Background(), "../../escape.bin", []byte("x"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rel, err := filepath.Rel(dir, uri)
	if err != nil || rel != "escape.bin" {
		t.Fatalf("expected blob inside storage dir, got %q (rel %q, err %v)", uri, rel, err)
	}
}

func TestMemProviderRoundTrip(t *testing.T) {
	provider := NewMemProvider()
	ctx := context.Background()

	uri, err := provider.Write(ctx, "resp.bin", []byte{0x00, 0xff})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := provider.Read(ctx, uri)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 2 || data[0] != 0x00 || data[1] != 0xff {
		t.Fatalf("round trip mismatch: %v", data)
	}

	provider.Delete(ctx, uri)
	if _, err := provider.Read(ctx, uri); err == nil {
		t.Fatal("expected read failure after delete")
	}
	if provider.Len() != 0 {
		t.Fatalf("expected empty provider, have %d blobs", provider.Len())
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	provider, err := NewSQLiteProvider(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer provider.Close()
	ctx := context.Background()

	uri, err := provider.Write(ctx, "resp.json", []byte(`[1,2,3]`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := provider.Read(ctx, uri)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `[1,2,3]` {
		t.Fatalf("round trip mismatch: %q", data)
	}

	provider.Delete(ctx, uri)
	if _, err := provider.Read(ctx, uri); err == nil {
		t.Fatal("expected read failure after delete")
	}
}
