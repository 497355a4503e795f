package responses

import (
	"context"

	"github.com/fredrikhr/restview/internal/presenter"
	"github.com/fredrikhr/restview/internal/render"
	"github.com/fredrikhr/restview/internal/storage"
)

// Handler is one presentation strategy. Show either performs its side
// effect and reports true, or reports false without side effects so
// the next handler in the chain gets a turn. Returning an error is a
// contract violation for "not applicable" cases and aborts the chain.
type Handler interface {
	Name() string
	Show(ctx context.Context, item *Item) (bool, error)
}

// newHandlerChain builds the strategies in their fixed priority
// order. Order is load-bearing: the first acceptance wins.
func newHandlerChain(provider storage.Provider, surface presenter.Surface, reusePreview func() bool) []Handler {
	return []Handler{
		&saveSilentlyHandler{provider: provider},
		noViewHandler{},
		&openWithHandler{provider: provider, surface: surface},
		&previewHandler{surface: surface, reuse: reusePreview},
	}
}

// saveSilentlyHandler persists the payload without opening any
// surface. A declined write still counts as handled: the item asked
// to bypass every visible view, so falling through to a preview would
// be worse than not saving.
type saveSilentlyHandler struct {
	provider storage.Provider
}

func (h *saveSilentlyHandler) Name() string { return "save-silently" }

func (h *saveSilentlyHandler) Show(ctx context.Context, item *Item) (bool, error) {
	if !item.SaveSilently {
		return false, nil
	}
	if item.Response == nil || len(item.Response.Body) == 0 {
		return true, nil
	}
	uri, err := h.provider.Write(ctx, item.SuggestedFilename(), item.Response.Body)
	if err != nil {
		return false, err
	}
	if uri != "" {
		item.ResponseURI = uri
	}
	return true, nil
}

// noViewHandler suppresses presentation entirely. The item still
// reaches shrink afterwards.
type noViewHandler struct{}

func (noViewHandler) Name() string { return "no-view" }

func (noViewHandler) Show(ctx context.Context, item *Item) (bool, error) {
	return item.Hide, nil
}

// openWithHandler persists the payload to a named location and hands
// it to the configured external viewer.
type openWithHandler struct {
	provider storage.Provider
	surface  presenter.Surface
}

func (h *openWithHandler) Name() string { return "open-with" }

func (h *openWithHandler) Show(ctx context.Context, item *Item) (bool, error) {
	if item.OpenWith == "" {
		return false, nil
	}
	if item.IsCached() {
		if err := item.LoadBody(ctx, h.provider); err != nil {
			return false, err
		}
	}
	if item.Response == nil || len(item.Response.Body) == 0 {
		return false, nil
	}

	uri, err := h.provider.Write(ctx, item.SuggestedFilename(), item.Response.Body)
	if err != nil {
		return false, err
	}
	if uri == "" {
		// user declined the write; without a durable location there is
		// nothing to hand to the viewer
		return false, nil
	}
	item.ResponseURI = uri
	item.DocumentURI = uri

	if err := h.surface.OpenExternal(ctx, uri, item.OpenWith); err != nil {
		return false, err
	}
	return true, nil
}

// previewHandler is the catch-all: render inline on the default
// surface, reusing the previous preview when configured.
type previewHandler struct {
	surface presenter.Surface
	reuse   func() bool
}

func (h *previewHandler) Name() string { return "preview" }

func (h *previewHandler) Show(ctx context.Context, item *Item) (bool, error) {
	if !item.Response.HasContent() {
		return false, nil
	}

	content := item.Response.Body
	contentType := item.Response.ContentType()
	if pretty, ok := render.Pretty(content, contentType); ok {
		item.Response.PrettyBody = pretty
		content = []byte(pretty)
	}

	docID, err := h.surface.ShowDocument(ctx, presenter.Document{
		Title:       item.Name,
		URI:         item.ResponseURI,
		Content:     content,
		ContentType: contentType,
		Reuse:       h.reuse(),
	})
	if err != nil {
		return false, err
	}
	item.DocumentURI = docID
	return true, nil
}
