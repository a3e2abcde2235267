package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Rrens/floorboard/internal/domain"
)

type object struct {
	info domain.ObjectInfo
	data []byte
}

// ObjectStore keeps binary objects in memory
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewObjectStore creates an empty object store
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string]object)}
}

// Put stores the contents of r under key, replacing any previous object.
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (domain.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ObjectInfo{}, fmt.Errorf("failed to read object: %w", err)
	}

	info := domain.ObjectInfo{
		Key:         key,
		URL:         domain.ObjectURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
		UpdatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = object{info: info, data: data}
	s.mu.Unlock()

	return info, nil
}

// Get opens an object or returns domain.ErrObjectNotFound.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ObjectInfo{}, domain.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

// Delete removes an object.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Keys returns the stored keys in order.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
