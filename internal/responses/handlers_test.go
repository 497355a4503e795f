package responses

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/fredrikhr/restview/internal/errdef"
	"github.com/fredrikhr/restview/internal/httpclient"
	"github.com/fredrikhr/restview/internal/presenter"
	"github.com/fredrikhr/restview/internal/restfile"
)

func TestNoViewWinsOverOpenWith(t *testing.T) {
	provider := newFakeProvider()
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface})
	ctx := context.Background()

	resp, region := jsonResponse("both-flags", `{"v":1}`)
	region.Metadata.NoView = true
	region.Metadata.OpenWith = "imageviewer"

	if _, err := store.Add(ctx, resp, region); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.openExternals) != 0 {
		t.Fatalf("no-view must win over open-with, viewer invoked: %v", surface.openExternals)
	}
	if len(surface.shown) != 0 {
		t.Fatal("no-view must suppress the inline preview as well")
	}
}

func TestSaveSilentlyWinsOverEverything(t *testing.T) {
	provider := newFakeProvider()
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface})
	ctx := context.Background()

	resp, region := jsonResponse("saved", `{"v":1}`)
	region.Metadata.SaveSilently = true
	region.Metadata.NoView = true
	region.Metadata.OpenWith = "editor"

	item, err := store.Add(ctx, resp, region)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.shown) != 0 || len(surface.openExternals) != 0 {
		t.Fatal("save-silently must not touch any surface")
	}
	if item.ResponseURI == "" {
		t.Fatal("save-silently must persist the payload")
	}
}

func TestOpenWithPersistsAndOpens(t *testing.T) {
	provider := newFakeProvider()
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface})
	ctx := context.Background()

	resp, region := jsonResponse("external", `{"v":1}`)
	region.Metadata.OpenWith = "firefox"

	item, err := store.Add(ctx, resp, region)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.openExternals) != 1 {
		t.Fatalf("expected one external open, got %d", len(surface.openExternals))
	}
	if !strings.HasPrefix(surface.openExternals[0], "firefox:") {
		t.Fatalf("expected the configured viewer, got %q", surface.openExternals[0])
	}
	if len(surface.shown) != 0 {
		t.Fatal("external open must suppress the inline preview")
	}
	if item.DocumentURI == "" || item.ResponseURI == "" {
		t.Fatal("expected surface and durable locations recorded")
	}

	// shrink must reuse the handler's durable copy instead of writing a
	// second one
	if item.State() != BodyPersisted {
		t.Fatal("expected item shrunk after add")
	}
	if provider.writes != 1 {
		t.Fatalf("shrink must not re-persist an already persisted payload, %d writes", provider.writes)
	}
}

func TestOpenWithDeclinedFallsThroughToPreview(t *testing.T) {
	provider := newFakeProvider()
	provider.decline = true
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface})
	ctx := context.Background()

	resp, region := jsonResponse("declined", `{"v":1}`)
	region.Metadata.OpenWith = "editor"

	if _, err := store.Add(ctx, resp, region); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.openExternals) != 0 {
		t.Fatal("declined write must not launch a viewer")
	}
	if len(surface.shown) != 1 {
		t.Fatalf("expected fallback to inline preview, got %d shows", len(surface.shown))
	}
}

func TestPreviewPrettyPrintsJSON(t *testing.T) {
	provider := newFakeProvider()
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface, ReusePreview: true})
	ctx := context.Background()

	resp, region := jsonResponse("pretty", `{"a":1}`)
	if _, err := store.Add(ctx, resp, region); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.shown) != 1 {
		t.Fatalf("expected one preview, got %d", len(surface.shown))
	}
	doc := surface.shown[0]
	if !doc.Reuse {
		t.Fatal("expected reuse mode to pass through")
	}
	if !strings.Contains(string(doc.Content), "\n  \"a\": 1\n") {
		t.Fatalf("expected indented body, got %q", doc.Content)
	}
}

func TestDegenerateItemFallsThroughUnhandled(t *testing.T) {
	provider := newFakeProvider()
	surface := &fakeSurface{}
	store := NewStore(Options{Storage: provider, Surface: surface})
	ctx := context.Background()

	item, err := store.Add(ctx, &httpclient.Response{}, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(surface.shown) != 0 || len(surface.openExternals) != 0 {
		t.Fatal("degenerate item must not be presented")
	}
	if store.Len() != 1 {
		t.Fatal("unpresented items still enter the history")
	}
	if item.DocumentURI != "" {
		t.Fatal("no surface id for an unpresented item")
	}
}

type failingSurface struct {
	fakeSurface
}

func (s *failingSurface) ShowDocument(ctx context.Context, doc presenter.Document) (string, error) {
	return "", errdef.New(errdef.CodePresenter, "surface unavailable")
}

func TestHandlerFailureAbortsAdd(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(Options{Storage: provider, Surface: &failingSurface{}})
	ctx := context.Background()

	resp, region := jsonResponse("broken", `{"v":1}`)
	item, err := store.Add(ctx, resp, region)
	if err == nil {
		t.Fatal("expected surface failure to propagate")
	}
	if item != nil {
		t.Fatal("failed show must not return an item")
	}
	if store.Len() != 0 {
		t.Fatalf("failed show must not grow history: %d", store.Len())
	}
}

func TestHandlerChainOrder(t *testing.T) {
	chain := newHandlerChain(newFakeProvider(), &fakeSurface{}, func() bool { return false })
	want := []string{"save-silently", "no-view", "open-with", "preview"}
	if len(chain) != len(want) {
		t.Fatalf("expected %d handlers, got %d", len(want), len(chain))
	}
	for i, handler := range chain {
		if handler.Name() != want[i] {
			t.Fatalf("handler %d: expected %s, got %s", i, want[i], handler.Name())
		}
	}
}

func TestItemDerivesMetadata(t *testing.T) {
	resp := &httpclient.Response{
		Headers: http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:    []byte(`{}`),
	}
	region := &restfile.Request{
		Metadata:  restfile.RequestMetadata{Name: "create user"},
		LineRange: restfile.LineRange{Start: 12, End: 20},
	}

	item := NewItem(resp, region)
	if item.ID == "" {
		t.Fatal("expected generated id")
	}
	if item.Name != "create user" || item.Line != 12 {
		t.Fatalf("unexpected correlation: %q line %d", item.Name, item.Line)
	}
	if item.Extension != ".json" {
		t.Fatalf("unexpected extension %q", item.Extension)
	}
	if item.IsCached() {
		t.Fatal("fresh item must be resident")
	}

	other := NewItem(resp, region)
	if other.ID == item.ID {
		t.Fatal("ids must be unique per item")
	}
}

func TestItemExtensionFallsBackToBin(t *testing.T) {
	item := NewItem(&httpclient.Response{Body: []byte{0x1}}, nil)
	if item.Extension != ".bin" {
		t.Fatalf("expected .bin fallback, got %q", item.Extension)
	}
	if !strings.HasSuffix(item.StorageName(), ".bin") {
		t.Fatalf("unexpected storage name %q", item.StorageName())
	}
}
