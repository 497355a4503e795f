package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/fredrikhr/restview/internal/errdef"
)

// MemProvider is a map-backed provider for tests and throwaway
// sessions where payloads should not touch the disk at all.
type MemProvider struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	seq   int
}

func NewMemProvider() *MemProvider {
	return &MemProvider{blobs: make(map[string][]byte)}
}

func (p *MemProvider) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errdef.Wrap(errdef.CodeStorage, err, "write blob")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	uri := fmt.Sprintf("mem://%d/%s", p.seq, name)
	p.blobs[uri] = append([]byte(nil), data...)
	return uri, nil
}

func (p *MemProvider) Read(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "read blob")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.blobs[uri]
	if !ok {
		return nil, errdef.New(errdef.CodeStorage, "blob %q not found", uri)
	}
	return append([]byte(nil), data...), nil
}

func (p *MemProvider) Delete(ctx context.Context, uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobs, uri)
}

// Len reports the number of stored blobs, for tests asserting that
// durable copies were cleaned up.
func (p *MemProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.blobs)
}
