package domain

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Rrens/floorboard/internal/viewstate"
)

// Collections held by the document store
const (
	CategoriesCollection = "categories"
	WorkspacesCollection = "workspaces"
	ZonesCollection      = "zones"
	OverseasCollection   = "overseas_works"
)

// Document is a raw record of the document store. Data is a JSON object.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// NewDocument marshals v into a document with the given id.
func NewDocument(id string, v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

// DocumentStore is the external store owning all durable catalog state.
// Watch delivers the full contents of a collection, first immediately and
// then after every committed change, in commit order. The returned cancel
// function must be called to stop the watch.
type DocumentStore interface {
	Watch(ctx context.Context, collection string, fn func([]Document)) (cancel func(), err error)
	List(ctx context.Context, collection string, where map[string]string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Put(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	DeleteWhere(ctx context.Context, collection string, where map[string]string) (int, error)
	Ping(ctx context.Context) error
}

// ObjectInfo describes a stored binary object
type ObjectInfo struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ObjectStore holds floor-plan images and attachments. Deleting a missing
// object is not an error.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// ObjectURLPrefix is where the API serves stored objects.
const ObjectURLPrefix = "/api/v1/objects/"

// ObjectURL returns the public URL of key.
func ObjectURL(key string) string {
	return ObjectURLPrefix + key
}

// ObjectKeyFromURL extracts the object key from a URL produced by ObjectURL.
func ObjectKeyFromURL(url string) (string, bool) {
	i := strings.Index(url, ObjectURLPrefix)
	if i < 0 {
		return "", false
	}
	key := url[i+len(ObjectURLPrefix):]
	return key, key != ""
}

// PlanKey is the object key of a workspace's floor plan.
func PlanKey(workspaceID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	return "plans/" + workspaceID + ext
}

// AttachmentKey is the object key of an overseas work attachment.
func AttachmentKey(workID, attachmentID, filename string) string {
	return "attachments/" + workID + "/" + attachmentID + strings.ToLower(path.Ext(filename))
}

// ViewRepository persists dashboard view sessions.
// Get returns ErrViewNotFound for unknown or expired ids.
type ViewRepository interface {
	Save(ctx context.Context, id string, state viewstate.State) error
	Get(ctx context.Context, id string) (viewstate.State, error)
	Delete(ctx context.Context, id string) error
}
