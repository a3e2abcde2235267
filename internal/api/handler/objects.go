package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/domain"
)

// ObjectHandler serves stored plans and attachments
type ObjectHandler struct {
	objects domain.ObjectStore
}

// NewObjectHandler creates a new object handler
func NewObjectHandler(objects domain.ObjectStore) *ObjectHandler {
	return &ObjectHandler{objects: objects}
}

// Get streams the object named by the rest of the path
func (h *ObjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		response.NotFound(w, domain.ErrObjectNotFound.Error())
		return
	}

	body, info, err := h.objects.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		writeError(w, r, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", info.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "private, max-age=60")

	if _, err := io.Copy(w, body); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Object download interrupted")
	}
}
