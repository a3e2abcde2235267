package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/service"
)

// OverseasHandler handles overseas work administration
type OverseasHandler struct {
	overseas  *service.OverseasService
	maxUpload int64
}

// NewOverseasHandler creates a new overseas handler
func NewOverseasHandler(overseas *service.OverseasService, maxUpload int64) *OverseasHandler {
	return &OverseasHandler{overseas: overseas, maxUpload: maxUpload}
}

// Create handles overseas work creation
func (h *OverseasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.OverseasInput
	if !decodeJSON(w, r, &input) {
		return
	}

	work, err := h.overseas.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, work)
}

// Update replaces an overseas work item
func (h *OverseasHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.OverseasInput
	if !decodeJSON(w, r, &input) {
		return
	}

	work, err := h.overseas.Update(r.Context(), chi.URLParam(r, "workID"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, work)
}

// Delete removes an overseas work item and its attachments
func (h *OverseasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.overseas.Delete(r.Context(), chi.URLParam(r, "workID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AddAttachment uploads the "file" form file and links it to the work item
func (h *OverseasHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	if !parseUpload(w, r, h.maxUpload) {
		return
	}
	up, err := formFile(r, "file")
	if err != nil {
		response.BadRequest(w, "invalid file upload")
		return
	}
	if up == nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer up.file.Close()

	work, err := h.overseas.AddAttachment(r.Context(), chi.URLParam(r, "workID"), up.filename, up.contentType, up.file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, work)
}
