// Package livesync mirrors the document store's collections into immutable,
// decoded and sorted snapshots and republishes them to subscribers.
package livesync

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/domain"
)

// watched lists every collection the adapter follows.
var watched = []string{
	domain.CategoriesCollection,
	domain.WorkspacesCollection,
	domain.ZonesCollection,
	domain.OverseasCollection,
	domain.SettingsCollection,
}

// Adapter follows the store and holds the latest Snapshot.
type Adapter struct {
	store domain.DocumentStore

	mu   sync.RWMutex
	snap *Snapshot

	// applyMu serializes snapshot swaps with their fan-out so subscribers see
	// snapshots in the order they were built.
	applyMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(*Snapshot)
	subsSeq []int
	nextSub int

	watchMu sync.Mutex
	cancels []func()
	loaded  map[string]bool
	ready   chan struct{}
}

// NewAdapter creates a new sync adapter over store
func NewAdapter(store domain.DocumentStore) *Adapter {
	return &Adapter{
		store:  store,
		snap:   emptySnapshot(),
		subs:   make(map[int]func(*Snapshot)),
		loaded: make(map[string]bool),
		ready:  make(chan struct{}),
	}
}

// Start watches every collection. Watches stop when ctx is done or Close is
// called.
func (a *Adapter) Start(ctx context.Context) error {
	for _, collection := range watched {
		collection := collection
		cancel, err := a.store.Watch(ctx, collection, func(docs []domain.Document) {
			a.apply(collection, docs)
		})
		if err != nil {
			a.Close()
			return fmt.Errorf("failed to watch %s: %w", collection, err)
		}
		a.watchMu.Lock()
		a.cancels = append(a.cancels, cancel)
		a.watchMu.Unlock()
	}
	return nil
}

// Close stops every store watch. Subscribers are kept but receive nothing
// further.
func (a *Adapter) Close() {
	a.watchMu.Lock()
	cancels := a.cancels
	a.cancels = nil
	a.watchMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Ready is closed once every collection has delivered its first snapshot.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// WaitReady blocks until Ready is closed or ctx is done.
func (a *Adapter) WaitReady(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current snapshot.
func (a *Adapter) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Subscribe registers fn for every new snapshot. The returned function
// unsubscribes and must be called on teardown. fn must not write to the
// store synchronously.
func (a *Adapter) Subscribe(fn func(*Snapshot)) (unsubscribe func()) {
	a.subsMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.subsSeq = append(a.subsSeq, id)
	a.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subsMu.Lock()
			defer a.subsMu.Unlock()
			delete(a.subs, id)
			for i, v := range a.subsSeq {
				if v == id {
					a.subsSeq = append(a.subsSeq[:i:i], a.subsSeq[i+1:]...)
					break
				}
			}
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (a *Adapter) Subscribers() int {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	return len(a.subs)
}

func (a *Adapter) apply(collection string, docs []domain.Document) {
	a.applyMu.Lock()
	defer a.applyMu.Unlock()

	next := a.Snapshot().with()
	var bad []Quarantined

	switch collection {
	case domain.CategoriesCollection:
		next.Categories, bad = decodeAll(collection, docs, domain.DecodeCategory)
		sort.SliceStable(next.Categories, func(i, j int) bool {
			return byName(next.Categories[i].Name, next.Categories[i].ID, next.Categories[j].Name, next.Categories[j].ID)
		})
		next.Versions.Categories++

	case domain.WorkspacesCollection:
		next.Workspaces, bad = decodeAll(collection, docs, domain.DecodeWorkspace)
		sort.SliceStable(next.Workspaces, func(i, j int) bool {
			return byName(next.Workspaces[i].Name, next.Workspaces[i].ID, next.Workspaces[j].Name, next.Workspaces[j].ID)
		})
		next.Versions.Workspaces++

	case domain.ZonesCollection:
		next.Zones, bad = decodeAll(collection, docs, domain.DecodeZone)
		sort.SliceStable(next.Zones, func(i, j int) bool {
			return newest(next.Zones[i].UpdatedAt, next.Zones[i].ID, next.Zones[j].UpdatedAt, next.Zones[j].ID)
		})
		next.Versions.Zones++

	case domain.OverseasCollection:
		next.Overseas, bad = decodeAll(collection, docs, domain.DecodeOverseas)
		sort.SliceStable(next.Overseas, func(i, j int) bool {
			return newest(next.Overseas[i].UpdatedAt, next.Overseas[i].ID, next.Overseas[j].UpdatedAt, next.Overseas[j].ID)
		})
		next.Versions.Overseas++

	case domain.SettingsCollection:
		next.Sidebar = domain.SidebarSetting{}
		for _, doc := range docs {
			if doc.ID != domain.SidebarSettingID {
				continue
			}
			s, err := domain.DecodeSidebar(doc)
			if err != nil {
				bad = append(bad, quarantine(collection, doc.ID, err))
				continue
			}
			next.Sidebar = s
		}
		next.Versions.Settings++

	default:
		return
	}

	if len(bad) > 0 {
		next.quarantine[collection] = bad
	} else {
		delete(next.quarantine, collection)
	}
	next.index()

	a.mu.Lock()
	a.snap = next
	a.mu.Unlock()

	log.Debug().
		Str("collection", collection).
		Int("documents", len(docs)).
		Int("quarantined", len(bad)).
		Msg("Snapshot updated")

	a.markLoaded(collection)

	for _, fn := range a.subscribers() {
		fn(next)
	}
}

func (a *Adapter) subscribers() []func(*Snapshot) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	out := make([]func(*Snapshot), 0, len(a.subsSeq))
	for _, id := range a.subsSeq {
		out = append(out, a.subs[id])
	}
	return out
}

func (a *Adapter) markLoaded(collection string) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.loaded[collection] {
		return
	}
	a.loaded[collection] = true
	if len(a.loaded) == len(watched) {
		close(a.ready)
	}
}

func decodeAll[T any](collection string, docs []domain.Document, decode func(domain.Document) (T, error)) ([]T, []Quarantined) {
	out := make([]T, 0, len(docs))
	var bad []Quarantined
	for _, doc := range docs {
		v, err := decode(doc)
		if err != nil {
			bad = append(bad, quarantine(collection, doc.ID, err))
			continue
		}
		out = append(out, v)
	}
	return out, bad
}

func quarantine(collection, id string, err error) Quarantined {
	log.Warn().
		Err(err).
		Str("collection", collection).
		Str("id", id).
		Msg("Document quarantined")
	return Quarantined{Collection: collection, ID: id, Reason: err.Error()}
}

func byName(a, aID, b, bID string) bool {
	if a != b {
		return a < b
	}
	return aID < bID
}

func newest(a int64, aID string, b int64, bID string) bool {
	if a != b {
		return a > b
	}
	return aID < bID
}
