package responses

import (
	"context"

	"github.com/google/uuid"

	"github.com/fredrikhr/restview/internal/binaryview"
	"github.com/fredrikhr/restview/internal/errdef"
	"github.com/fredrikhr/restview/internal/httpclient"
	"github.com/fredrikhr/restview/internal/restfile"
	"github.com/fredrikhr/restview/internal/storage"
)

// BodyState tracks where an item's payload currently lives. The large
// fields are resident exactly until the store shrinks the item, after
// which only the durable copy remains until somebody asks for the
// body again.
type BodyState int

const (
	BodyResident BodyState = iota
	BodyPersisted
	BodyLoading
)

// Item wraps one completed response plus the metadata the store
// derives for presentation and persistence. The store owns items
// exclusively until they are evicted.
type Item struct {
	ID   string
	Name string
	Line int

	Response  *httpclient.Response
	Extension string

	// Presentation directives carried over from the request region.
	OpenWith     string
	Hide         bool
	SaveSilently bool

	// DocumentURI identifies the live surface showing this item, when
	// one exists. ResponseURI identifies the durable copy once shrunk;
	// it is retained across rehydration because removal must still be
	// able to delete the blob.
	DocumentURI string
	ResponseURI string

	state BodyState
}

// NewItem derives display metadata from the response and its
// originating region. The id is generated once and never changes.
func NewItem(resp *httpclient.Response, region *restfile.Request) *Item {
	item := &Item{
		ID:       uuid.NewString(),
		Response: resp,
		state:    BodyResident,
	}
	if region != nil {
		item.Name = region.Metadata.Name
		item.Line = region.LineRange.Start
		item.OpenWith = region.Metadata.OpenWith
		item.Hide = region.Metadata.NoView
		item.SaveSilently = region.Metadata.SaveSilently
	}
	if item.Name == "" {
		item.Name = region.Title()
	}
	item.Extension = binaryview.ExtensionHint(resp.ContentType())
	return item
}

// IsCached reports whether the body has been evicted from memory and
// not yet reloaded.
func (it *Item) IsCached() bool {
	return it.state == BodyPersisted || it.state == BodyLoading
}

func (it *Item) State() BodyState {
	return it.state
}

// StorageName is the suggested blob name, derived from the stable id
// and the content-type extension.
func (it *Item) StorageName() string {
	return it.ID + it.Extension
}

// SuggestedFilename is the user-facing save name, preferring the
// response's own hints over the opaque id.
func (it *Item) SuggestedFilename() string {
	if it.Response == nil {
		return "response" + it.Extension
	}
	return binaryview.FilenameHint(
		it.Response.ContentDisposition(),
		it.Response.EffectiveURL,
		it.Response.ContentType(),
	)
}

// LoadBody rehydrates the raw body from the durable copy. Valid only
// while the item is cached; calling it on a resident item is a no-op.
// On read failure the item stays cached so the load can be retried.
func (it *Item) LoadBody(ctx context.Context, provider storage.Provider) error {
	switch it.state {
	case BodyResident:
		return nil
	case BodyLoading:
		return errdef.New(errdef.CodeHistory, "response %s is already loading", it.ID)
	}
	if it.ResponseURI == "" {
		return errdef.New(errdef.CodeHistory, "response %s has no durable copy", it.ID)
	}

	it.state = BodyLoading
	data, err := provider.Read(ctx, it.ResponseURI)
	if err != nil {
		it.state = BodyPersisted
		return errdef.Wrap(errdef.CodeStorage, err, "load response body %s", it.ID)
	}
	if it.Response == nil {
		it.Response = &httpclient.Response{}
	}
	it.Response.Body = data
	it.state = BodyResident
	return nil
}
