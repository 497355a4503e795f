package presenter

import "context"

// Document is the content a surface is asked to display inline.
type Document struct {
	Title       string
	URI         string
	Content     []byte
	ContentType string
	// Reuse asks the surface to replace the most recent document it
	// opened instead of opening a new one.
	Reuse bool
}

// Surface is the narrow slice of an editor or terminal frontend the
// response store talks to. Implementations report surface identifiers
// as opaque strings; the store only uses them for reverse lookup and
// for the deferred-format queue.
type Surface interface {
	// ShowDocument renders a document and returns its surface id.
	ShowDocument(ctx context.Context, doc Document) (string, error)

	// OpenExternal hands a persisted payload to an external viewer.
	// An empty viewer selects the platform default opener.
	OpenExternal(ctx context.Context, uri, viewer string) error

	// ActiveDocument reports the surface id currently in front of the
	// user, when one exists.
	ActiveDocument() (string, bool)

	// Format runs the surface's formatting command against a document
	// and reports whether the command succeeded. A false result is not
	// an error; the document may simply not be rendered yet.
	Format(ctx context.Context, documentID string) (bool, error)
}
