package responses

import (
	"context"
	"sync"

	"github.com/fredrikhr/restview/internal/httpclient"
	"github.com/fredrikhr/restview/internal/presenter"
	"github.com/fredrikhr/restview/internal/restfile"
	"github.com/fredrikhr/restview/internal/storage"
	"github.com/fredrikhr/restview/internal/telemetry"
)

const defaultMaxHistory = 50

// ContextFlag mirrors "history has at least one entry" into the host
// environment, e.g. an editor context key that enables menu entries.
type ContextFlag interface {
	Set(hasHistory bool)
}

// Options configures a Store. Zero values fall back to an in-memory
// provider, a noop surface and the default history bound.
type Options struct {
	MaxHistory   int
	FormatOnShow bool
	ReusePreview bool

	Storage      storage.Provider
	Surface      presenter.Surface
	Flag         ContextFlag
	Instrumenter telemetry.Instrumenter
}

// Store owns the bounded response history: it runs the presentation
// chain for new responses, shrinks payloads to durable storage, and
// keeps the most-recent-N items in memory. All mutation goes through
// the store; external readers only see snapshots.
type Store struct {
	mu sync.Mutex

	maxHistory   int
	formatOnShow bool
	reusePreview bool

	provider storage.Provider
	surface  presenter.Surface
	flag     ContextFlag
	instr    telemetry.Instrumenter

	handlers []Handler
	items    []*Item

	subscribers map[int]func()
	nextSub     int

	// one-shot deferred format queue, keyed by surface id
	pendingFormats map[string]struct{}
}

func NewStore(opts Options) *Store {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = defaultMaxHistory
	}
	if opts.Storage == nil {
		opts.Storage = storage.NewMemProvider()
	}
	if opts.Surface == nil {
		opts.Surface = presenter.NoopSurface{}
	}
	if opts.Instrumenter == nil {
		opts.Instrumenter = telemetry.Noop()
	}

	s := &Store{
		maxHistory:     opts.MaxHistory,
		formatOnShow:   opts.FormatOnShow,
		reusePreview:   opts.ReusePreview,
		provider:       opts.Storage,
		surface:        opts.Surface,
		flag:           opts.Flag,
		instr:          opts.Instrumenter,
		subscribers:    make(map[int]func()),
		pendingFormats: make(map[string]struct{}),
	}
	s.handlers = newHandlerChain(s.provider, s.surface, func() bool { return s.reusePreview })
	return s
}

// Add wraps a completed response, presents it, shrinks its payload
// and inserts it at the head of the history. The returned item is nil
// when a handler failed; a persistence failure instead drops the item
// silently (fail closed, never unbounded memory) and still returns it
// so the caller can inspect what happened.
func (s *Store) Add(ctx context.Context, resp *httpclient.Response, region *restfile.Request) (*Item, error) {
	item := NewItem(resp, region)

	ctx, span := s.instr.Start(ctx, telemetry.Operation{
		Name:        "store.add",
		ItemID:      item.ID,
		RequestName: item.Name,
		StatusCode:  statusCode(resp),
		BodyBytes:   bodyLen(resp),
	})

	if err := s.Show(ctx, item); err != nil {
		span.End(telemetry.OpResult{Err: err, HistoryLen: s.Len()})
		return nil, err
	}

	persisted, shrinkErr := s.shrink(ctx, item)
	if !persisted {
		// cannot shrink: keeping the payload resident forever is the
		// one outcome the store exists to prevent
		span.End(telemetry.OpResult{Err: shrinkErr, HistoryLen: s.Len()})
		return item, nil
	}

	s.mu.Lock()
	s.items = append([]*Item{item}, s.items...)
	var evicted []*Item
	if len(s.items) > s.maxHistory {
		evicted = s.items[s.maxHistory:]
		s.items = s.items[:s.maxHistory]
	}
	length := len(s.items)
	s.mu.Unlock()

	for _, old := range evicted {
		if old.ResponseURI != "" {
			s.provider.Delete(ctx, old.ResponseURI)
		}
	}

	s.setFlag(length > 0)
	s.notify()
	span.End(telemetry.OpResult{Persisted: item.ResponseURI != "", Evicted: len(evicted), HistoryLen: length})
	return item, nil
}

// Show runs the handler chain in priority order and stops at the
// first acceptance. An unaccepted item is simply not shown. When a
// handler accepts and auto-formatting is enabled, a best-effort
// format pass runs against the active surface.
func (s *Store) Show(ctx context.Context, item *Item) error {
	for _, handler := range s.handlers {
		handled, err := handler.Show(ctx, item)
		if err != nil {
			return err
		}
		if !handled {
			continue
		}
		if s.formatOnShow {
			s.tryFormatActive(ctx)
		}
		return nil
	}
	return nil
}

// tryFormatActive formats the active surface once. A failed or
// unsuccessful attempt is queued so the next activation of that same
// surface retries exactly once; formatting often races the surface's
// initial render.
func (s *Store) tryFormatActive(ctx context.Context) {
	id, ok := s.surface.ActiveDocument()
	if !ok || id == "" {
		return
	}
	done, err := s.surface.Format(ctx, id)
	if err != nil || !done {
		s.mu.Lock()
		s.pendingFormats[id] = struct{}{}
		s.mu.Unlock()
	}
}

// DocumentActivated tells the store a surface came to the front. Any
// deferred format pass for that surface runs now and is discarded
// regardless of outcome.
func (s *Store) DocumentActivated(ctx context.Context, documentID string) {
	s.mu.Lock()
	_, pending := s.pendingFormats[documentID]
	delete(s.pendingFormats, documentID)
	s.mu.Unlock()
	if pending {
		_, _ = s.surface.Format(ctx, documentID)
	}
}

// Shrink persists the item's raw body and drops the large in-memory
// fields. When persistence fails the item is removed from history
// entirely. Shrinking an already-shrunk or bodyless item is a no-op.
func (s *Store) Shrink(ctx context.Context, item *Item) error {
	persisted, err := s.shrink(ctx, item)
	if !persisted {
		s.Remove(ctx, item.ID)
	}
	return err
}

func (s *Store) shrink(ctx context.Context, item *Item) (bool, error) {
	if item.Response == nil || len(item.Response.Body) == 0 {
		return true, nil
	}
	if item.State() != BodyResident {
		return true, nil
	}

	if item.ResponseURI == "" {
		uri, err := s.provider.Write(ctx, item.StorageName(), item.Response.Body)
		if err != nil {
			return false, err
		}
		if uri == "" {
			return false, nil
		}
		item.ResponseURI = uri
	}

	item.Response.Body = nil
	item.Response.PrettyBody = ""
	if item.Response.Request != nil {
		item.Response.Request.Body = restfile.BodySource{}
	}
	item.state = BodyPersisted
	return true, nil
}

// LoadBody rehydrates an item's body through the store's provider.
func (s *Store) LoadBody(ctx context.Context, item *Item) error {
	return item.LoadBody(ctx, s.provider)
}

// Remove deletes the item with the given id, including its durable
// copy. It reports whether an item was removed; an unknown id is not
// an error.
func (s *Store) Remove(ctx context.Context, id string) bool {
	_, span := s.instr.Start(ctx, telemetry.Operation{Name: "store.remove", ItemID: id})

	s.mu.Lock()
	idx := -1
	for i, item := range s.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		span.End(telemetry.OpResult{HistoryLen: len(s.items)})
		return false
	}
	item := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	length := len(s.items)
	s.mu.Unlock()

	if item.ResponseURI != "" {
		s.provider.Delete(ctx, item.ResponseURI)
	}
	s.setFlag(length > 0)
	s.notify()
	span.End(telemetry.OpResult{HistoryLen: length})
	return true
}

// Clear empties the history and deletes every durable copy. A single
// notification fires for the whole batch.
func (s *Store) Clear(ctx context.Context) {
	_, span := s.instr.Start(ctx, telemetry.Operation{Name: "store.clear"})

	s.mu.Lock()
	cleared := s.items
	s.items = nil
	s.mu.Unlock()

	for _, item := range cleared {
		if item.ResponseURI != "" {
			s.provider.Delete(ctx, item.ResponseURI)
		}
	}
	s.setFlag(false)
	s.notify()
	span.End(telemetry.OpResult{HistoryLen: 0, Evicted: len(cleared)})
}

// FindByDocument looks an item up by the live surface it is shown on.
func (s *Store) FindByDocument(documentID string) (*Item, bool) {
	if documentID == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.DocumentURI == documentID {
			return item, true
		}
	}
	return nil, false
}

// FindByRegion looks an item up by its originating request region so
// re-runs of the same request can reuse the existing entry.
func (s *Store) FindByRegion(name string, line int) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Name == name && item.Line == line {
			return item, true
		}
	}
	return nil, false
}

// Snapshot returns a copy of the history, most recent first. Callers
// must not mutate the items.
func (s *Store) Snapshot() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers a history-changed observer. The signal carries
// no payload; subscribers re-read the history via Snapshot. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// notify fires the history-changed signal, strictly after the
// mutation it announces is visible to Snapshot.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) setFlag(hasHistory bool) {
	if s.flag != nil {
		s.flag.Set(hasHistory)
	}
}

func statusCode(resp *httpclient.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func bodyLen(resp *httpclient.Response) int {
	if resp == nil {
		return 0
	}
	return len(resp.Body)
}
