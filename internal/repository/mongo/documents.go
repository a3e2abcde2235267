// Package mongo implements the document store on MongoDB collections with
// change streams and the object store on GridFS.
package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/floorboard/internal/domain"
)

// Error code returned when $changeStream runs against a standalone server.
const changeStreamUnsupported = 40573

const (
	minRetry = 500 * time.Millisecond
	maxRetry = 30 * time.Second
)

// DocumentStore stores documents with their id as _id
type DocumentStore struct {
	db           *mongo.Database
	pollInterval time.Duration
}

// NewDocumentStore creates a document store on the client's database
func NewDocumentStore(c *Client) *DocumentStore {
	poll := c.cfg.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &DocumentStore{db: c.db, pollInterval: poll}
}

// Watch delivers the collection's contents now and after every change. It
// follows a change stream and re-reads the collection per event batch; on
// standalone servers without change streams it polls instead.
func (s *DocumentStore) Watch(ctx context.Context, collection string, fn func([]domain.Document)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	coll := s.db.Collection(collection)

	go func() {
		backoff := minRetry
		for {
			err := s.follow(ctx, coll, fn)
			if ctx.Err() != nil {
				return
			}

			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Code == changeStreamUnsupported {
				log.Info().
					Str("collection", collection).
					Dur("interval", s.pollInterval).
					Msg("Change streams unavailable, polling")
				s.poll(ctx, coll, fn)
				return
			}

			log.Warn().
				Err(err).
				Str("collection", collection).
				Dur("retry_in", backoff).
				Msg("Change stream interrupted")

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRetry)
		}
	}()

	return cancel, nil
}

// follow opens a change stream, delivers the current contents and then a
// fresh read after each batch of events. The stream is opened before the
// first read so no commit between the two is missed.
func (s *DocumentStore) follow(ctx context.Context, coll *mongo.Collection, fn func([]domain.Document)) error {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	docs, err := s.list(ctx, coll, nil)
	if err != nil {
		return err
	}
	fn(docs)

	for stream.Next(ctx) {
		// Coalesce events already buffered into one read.
		for stream.RemainingBatchLength() > 0 {
			if !stream.TryNext(ctx) {
				break
			}
		}

		docs, err := s.list(ctx, coll, nil)
		if err != nil {
			return err
		}
		fn(docs)
	}
	return stream.Err()
}

func (s *DocumentStore) poll(ctx context.Context, coll *mongo.Collection, fn func([]domain.Document)) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last []domain.Document
	first := true
	for {
		docs, err := s.list(ctx, coll, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("collection", coll.Name()).Msg("Poll failed")
		} else if first || !sameDocuments(last, docs) {
			fn(docs)
			last, first = docs, false
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// List returns the documents whose fields equal where, ordered by id.
func (s *DocumentStore) List(ctx context.Context, collection string, where map[string]string) ([]domain.Document, error) {
	return s.list(ctx, s.db.Collection(collection), where)
}

func (s *DocumentStore) list(ctx context.Context, coll *mongo.Collection, where map[string]string) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, filter(where), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	for cursor.Next(ctx) {
		doc, err := toDocument(cursor.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Get returns one document or domain.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc, err := toDocument(raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Put inserts or replaces a document.
func (s *DocumentStore) Put(ctx context.Context, collection string, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}

	var fields bson.M
	if err := bson.UnmarshalExtJSON(doc.Data, false, &fields); err != nil {
		return fmt.Errorf("failed to convert document %s: %w", doc.ID, err)
	}
	delete(fields, "id")
	fields["_id"] = doc.ID

	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		fields,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// DeleteWhere removes every document matching where and returns the count.
func (s *DocumentStore) DeleteWhere(ctx context.Context, collection string, where map[string]string) (int, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, filter(where))
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	return int(res.DeletedCount), nil
}

// Ping checks the server connection.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func filter(where map[string]string) bson.M {
	f := bson.M{}
	for k, v := range where {
		f[k] = v
	}
	return f
}

// toDocument renders a BSON document as relaxed extended JSON, which keeps
// plain numbers and strings as ordinary JSON values.
func toDocument(raw bson.Raw) (domain.Document, error) {
	var id string
	rv := raw.Lookup("_id")
	if v, ok := rv.StringValueOK(); ok {
		id = v
	} else if oid, ok := rv.ObjectIDOK(); ok {
		id = oid.Hex()
	} else {
		return domain.Document{}, fmt.Errorf("document has unsupported _id type %s", rv.Type)
	}
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to convert document %s: %w", id, err)
	}
	return domain.Document{ID: id, Data: data}, nil
}

func sameDocuments(a, b []domain.Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}
