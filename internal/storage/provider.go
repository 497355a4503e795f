package storage

import "context"

// Provider is a durable byte-blob store keyed by opaque uris the
// provider itself hands out. The response store owns the namespace:
// nothing else writes or deletes under the uris returned here.
//
// Write returns ("", nil) when the blob was not persisted without it
// being an error, e.g. the user declined a save prompt. Delete is
// best-effort; implementations swallow failures.
type Provider interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
	Read(ctx context.Context, uri string) ([]byte, error)
	Delete(ctx context.Context, uri string)
}
