package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/viewstate"
)

const viewPrefix = "view:"

// ViewStore keeps dashboard view sessions as JSON with a sliding TTL
type ViewStore struct {
	client *Client
	ttl    time.Duration
}

// NewViewStore creates a view store. A non-positive ttl keeps views forever.
func NewViewStore(client *Client, ttl time.Duration) *ViewStore {
	if ttl < 0 {
		ttl = 0
	}
	return &ViewStore{client: client, ttl: ttl}
}

// Save stores state under id and renews its expiry
func (s *ViewStore) Save(ctx context.Context, id string, state viewstate.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}
	if err := s.client.rdb.Set(ctx, viewPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}

// Get returns the state stored under id
func (s *ViewStore) Get(ctx context.Context, id string) (viewstate.State, error) {
	data, err := s.client.rdb.Get(ctx, viewPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return viewstate.State{}, domain.ErrViewNotFound
		}
		return viewstate.State{}, fmt.Errorf("failed to get view: %w", err)
	}

	var state viewstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		return viewstate.State{}, fmt.Errorf("failed to unmarshal view: %w", err)
	}
	return state, nil
}

// Delete removes a view
func (s *ViewStore) Delete(ctx context.Context, id string) error {
	return s.client.rdb.Del(ctx, viewPrefix+id).Err()
}

// Purge removes every stored view and returns how many were deleted
func (s *ViewStore) Purge(ctx context.Context) (int64, error) {
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, viewPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := s.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
