// Package sqlite implements the object store on a single SQLite file.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	key          TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	data         BLOB NOT NULL,
	updated_at   INTEGER NOT NULL
)`

// ObjectStore keeps objects as blobs in one table
type ObjectStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database file and its schema
func Open(ctx context.Context, cfg config.SQLiteConfig) (*ObjectStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ObjectStore{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *ObjectStore) Close() error {
	return s.db.Close()
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put stores r under key, replacing any previous object.
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (domain.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ObjectInfo{}, fmt.Errorf("failed to read object: %w", err)
	}
	now := s.now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO objects (key, content_type, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		key, contentType, data, now.UnixMilli(),
	)
	if err != nil {
		return domain.ObjectInfo{}, fmt.Errorf("failed to put object: %w", err)
	}

	return domain.ObjectInfo{
		Key:         key,
		URL:         domain.ObjectURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
		UpdatedAt:   time.UnixMilli(now.UnixMilli()).UTC(),
	}, nil
}

// Get returns the object stored under key.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error) {
	var (
		data      []byte
		info      = domain.ObjectInfo{Key: key, URL: domain.ObjectURL(key)}
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data, updated_at FROM objects WHERE key = ?`, key,
	).Scan(&info.ContentType, &data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ObjectInfo{}, domain.ErrObjectNotFound
		}
		return nil, domain.ObjectInfo{}, fmt.Errorf("failed to get object: %w", err)
	}

	info.Size = int64(len(data))
	info.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

// Delete removes key.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
