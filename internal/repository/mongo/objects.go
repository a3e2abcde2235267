package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/floorboard/internal/domain"
)

// ObjectStore stores binary objects in a GridFS bucket, one file per key
type ObjectStore struct {
	bucket *gridfs.Bucket
}

// NewObjectStore opens the configured GridFS bucket
func NewObjectStore(c *Client) (*ObjectStore, error) {
	name := c.cfg.Bucket
	if name == "" {
		name = "objects"
	}
	bucket, err := gridfs.NewBucket(c.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return &ObjectStore{bucket: bucket}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Put uploads r under key and removes earlier revisions of the key.
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, r io.Reader) (domain.ObjectInfo, error) {
	old, err := s.fileIDs(ctx, key)
	if err != nil {
		return domain.ObjectInfo{}, err
	}

	cr := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(key, cr, opts); err != nil {
		return domain.ObjectInfo{}, fmt.Errorf("failed to upload object: %w", err)
	}

	for _, id := range old {
		if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ObjectInfo{}, fmt.Errorf("failed to remove old revision: %w", err)
		}
	}

	stream, info, err := s.stat(key)
	if err != nil {
		return domain.ObjectInfo{}, err
	}
	_ = stream.Close()
	info.Size = cr.n
	return info, nil
}

// Get opens the latest revision of key.
func (s *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error) {
	stream, info, err := s.stat(key)
	if err != nil {
		return nil, domain.ObjectInfo{}, err
	}
	return stream, info, nil
}

// Delete removes every revision of key.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	ids, err := s.fileIDs(ctx, key)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to delete object: %w", err)
		}
	}
	return nil
}

func (s *ObjectStore) stat(key string) (*gridfs.DownloadStream, domain.ObjectInfo, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ObjectInfo{}, domain.ErrObjectNotFound
		}
		return nil, domain.ObjectInfo{}, fmt.Errorf("failed to open object: %w", err)
	}

	file := stream.GetFile()
	info := domain.ObjectInfo{
		Key:       key,
		URL:       domain.ObjectURL(key),
		Size:      file.Length,
		UpdatedAt: file.UploadDate,
	}
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			info.ContentType = ct
		}
	}
	return stream, info, nil
}

func (s *ObjectStore) fileIDs(ctx context.Context, key string) ([]any, error) {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": key})
	if err != nil {
		return nil, fmt.Errorf("failed to find object: %w", err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID any `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to read object list: %w", err)
	}
	ids := make([]any, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids, nil
}
