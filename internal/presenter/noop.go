package presenter

import "context"

// NoopSurface discards everything. It stands in when a store runs
// headless, e.g. during batch execution or tests that only exercise
// the history policy.
type NoopSurface struct{}

func (NoopSurface) ShowDocument(ctx context.Context, doc Document) (string, error) {
	return "", nil
}

func (NoopSurface) OpenExternal(ctx context.Context, uri, viewer string) error {
	return nil
}

func (NoopSurface) ActiveDocument() (string, bool) {
	return "", false
}

func (NoopSurface) Format(ctx context.Context, documentID string) (bool, error) {
	return false, nil
}
