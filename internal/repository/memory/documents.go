// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Rrens/floorboard/internal/domain"
)

// DocumentStore keeps collections in memory and notifies watchers
// synchronously after every write. Watchers always receive the latest
// contents, so concurrent writers cannot reorder notifications. A watcher
// must not write to the store from its callback.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	watchers    map[string]map[int]func([]domain.Document)
	nextWatcher int

	deliverMu sync.Mutex
}

// NewDocumentStore creates an empty document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		collections: make(map[string]map[string]json.RawMessage),
		watchers:    make(map[string]map[int]func([]domain.Document)),
	}
}

// Watch delivers the collection's contents now and after every change.
func (s *DocumentStore) Watch(ctx context.Context, collection string, fn func([]domain.Document)) (func(), error) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[int]func([]domain.Document))
	}
	s.watchers[collection][id] = fn
	s.mu.Unlock()

	s.deliverMu.Lock()
	s.mu.RLock()
	docs := s.snapshot(collection)
	s.mu.RUnlock()
	fn(docs)
	s.deliverMu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			s.mu.Lock()
			delete(s.watchers[collection], id)
			s.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return cancel, nil
}

// List returns the documents whose top-level string fields equal where.
func (s *DocumentStore) List(ctx context.Context, collection string, where map[string]string) ([]domain.Document, error) {
	s.mu.RLock()
	docs := s.snapshot(collection)
	s.mu.RUnlock()

	if len(where) == 0 {
		return docs, nil
	}
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		ok, err := matches(doc.Data, where)
		if err != nil {
			return nil, fmt.Errorf("failed to match %s/%s: %w", collection, doc.ID, err)
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Get returns one document or domain.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: id, Data: append(json.RawMessage(nil), data...)}, nil
}

// Put inserts or replaces a document.
func (s *DocumentStore) Put(ctx context.Context, collection string, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if !json.Valid(doc.Data) {
		return fmt.Errorf("document %s is not valid JSON", doc.ID)
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][doc.ID] = append(json.RawMessage(nil), doc.Data...)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	_, ok := s.collections[collection][id]
	delete(s.collections[collection], id)
	s.mu.Unlock()

	if ok {
		s.notify(collection)
	}
	return nil
}

// DeleteWhere removes every document matching where and returns the count.
func (s *DocumentStore) DeleteWhere(ctx context.Context, collection string, where map[string]string) (int, error) {
	s.mu.Lock()
	n := 0
	for id, data := range s.collections[collection] {
		ok, err := matches(data, where)
		if err != nil {
			s.mu.Unlock()
			return n, fmt.Errorf("failed to match %s/%s: %w", collection, id, err)
		}
		if ok {
			delete(s.collections[collection], id)
			n++
		}
	}
	s.mu.Unlock()

	if n > 0 {
		s.notify(collection)
	}
	return n, nil
}

// Ping always succeeds.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return nil
}

func (s *DocumentStore) notify(collection string) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.RLock()
	docs := s.snapshot(collection)
	ids := make([]int, 0, len(s.watchers[collection]))
	for id := range s.watchers[collection] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func([]domain.Document), len(ids))
	for i, id := range ids {
		fns[i] = s.watchers[collection][id]
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(docs)
	}
}

// snapshot copies a collection ordered by id. Callers hold mu.
func (s *DocumentStore) snapshot(collection string) []domain.Document {
	c := s.collections[collection]
	out := make([]domain.Document, 0, len(c))
	for id, data := range c {
		out = append(out, domain.Document{ID: id, Data: append(json.RawMessage(nil), data...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matches(data json.RawMessage, where map[string]string) (bool, error) {
	if len(where) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, err
	}
	for k, want := range where {
		got, ok := fields[k].(string)
		if !ok || got != want {
			return false, nil
		}
	}
	return true, nil
}
