package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/service"
)

// ViewHandler exposes the per-client dashboard selection state
type ViewHandler struct {
	views *service.ViewService
}

// NewViewHandler creates a new view handler
func NewViewHandler(views *service.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// Create opens a new view on today
func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, view)
}

// Get returns a view reconciled against the live catalog
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Get(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, view)
}

// ApplyEvent feeds one interaction into a view
func (h *ViewHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	var ev service.ViewEvent
	if !decodeJSON(w, r, &ev) {
		return
	}

	view, err := h.views.ApplyEvent(r.Context(), chi.URLParam(r, "viewID"), ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, view)
}

// Delete discards a view
func (h *ViewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.views.Delete(r.Context(), chi.URLParam(r, "viewID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}
