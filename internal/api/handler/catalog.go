package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/service"
)

// CatalogHandler handles categories, workspaces, zones and sidebar settings
type CatalogHandler struct {
	catalog   *service.CatalogService
	dashboard *service.DashboardService
	maxUpload int64
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService, dashboard *service.DashboardService, maxUpload int64) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, dashboard: dashboard, maxUpload: maxUpload}
}

// Brands lists the brand palette
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	response.OK(w, domain.Brands())
}

// Colors lists the preset zone colors
func (h *CatalogHandler) Colors(w http.ResponseWriter, r *http.Request) {
	response.OK(w, domain.PresetColors())
}

// Sidebar lists the visible categories with their workspaces
func (h *CatalogHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.dashboard.Sidebar())
}

// CreateCategory handles category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, category)
}

// RenameCategory handles category rename
func (h *CatalogHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}

	category, err := h.catalog.RenameCategory(r.Context(), chi.URLParam(r, "categoryID"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, category)
}

// DeleteCategory removes a category with its workspaces, zones and plans
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// CreateWorkspace handles multipart workspace creation. The form carries
// name, categoryId or newCategory, optional planWidth/planHeight and the
// plan image as "plan".
func (h *CatalogHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	if !parseUpload(w, r, h.maxUpload) {
		return
	}

	input := domain.WorkspaceCreate{
		Name:        r.FormValue("name"),
		CategoryID:  r.FormValue("categoryId"),
		NewCategory: r.FormValue("newCategory"),
	}
	var err error
	if input.PlanWidth, err = formFloat(r, "planWidth"); err != nil {
		response.BadRequest(w, map[string]string{"planWidth": "must be a number"})
		return
	}
	if input.PlanHeight, err = formFloat(r, "planHeight"); err != nil {
		response.BadRequest(w, map[string]string{"planHeight": "must be a number"})
		return
	}
	if !validateInput(w, input) {
		return
	}

	up, err := formFile(r, "plan")
	if err != nil {
		response.BadRequest(w, "invalid plan upload")
		return
	}

	var ws *domain.Workspace
	if up == nil {
		ws, err = h.catalog.CreateWorkspace(r.Context(), input, nil, nil)
	} else {
		defer up.file.Close()
		ws, err = h.catalog.CreateWorkspace(r.Context(), input, up.plan(), up.file)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, ws)
}

// UpdateWorkspace renames or moves a workspace
func (h *CatalogHandler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var input domain.WorkspaceUpdate
	if !decodeJSON(w, r, &input) {
		return
	}

	ws, err := h.catalog.UpdateWorkspace(r.Context(), chi.URLParam(r, "workspaceID"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, ws)
}

// UploadPlan replaces a workspace's floor plan from the "plan" form file
func (h *CatalogHandler) UploadPlan(w http.ResponseWriter, r *http.Request) {
	if !parseUpload(w, r, h.maxUpload) {
		return
	}
	up, err := formFile(r, "plan")
	if err != nil {
		response.BadRequest(w, "invalid plan upload")
		return
	}
	if up == nil {
		writeError(w, r, domain.ErrPlanRequired)
		return
	}
	defer up.file.Close()

	ws, err := h.catalog.UploadPlan(r.Context(), chi.URLParam(r, "workspaceID"), *up.plan(), up.file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, ws)
}

// DeleteWorkspace removes a workspace with its zones and plan
func (h *CatalogHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteWorkspace(r.Context(), chi.URLParam(r, "workspaceID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// CreateZone handles zone creation
func (h *CatalogHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var input domain.ZoneInput
	if !decodeJSON(w, r, &input) {
		return
	}

	zone, err := h.catalog.CreateZone(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, zone)
}

// UpdateZone replaces a zone's fields
func (h *CatalogHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	var input domain.ZoneInput
	if !decodeJSON(w, r, &input) {
		return
	}

	zone, err := h.catalog.UpdateZone(r.Context(), chi.URLParam(r, "zoneID"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, zone)
}

// DeleteZone handles zone deletion
func (h *CatalogHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteZone(r.Context(), chi.URLParam(r, "zoneID")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SaveSidebar stores which categories the sidebar shows and their order
func (h *CatalogHandler) SaveSidebar(w http.ResponseWriter, r *http.Request) {
	var input domain.SidebarInput
	if !decodeJSON(w, r, &input) {
		return
	}

	setting, err := h.catalog.SaveSidebar(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, setting)
}

// MoveSidebar drags one category onto another's sidebar position
func (h *CatalogHandler) MoveSidebar(w http.ResponseWriter, r *http.Request) {
	var input domain.SidebarMove
	if !decodeJSON(w, r, &input) || !validateInput(w, input) {
		return
	}

	setting, err := h.catalog.MoveSidebarCategory(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, setting)
}

func (u *upload) plan() *domain.Plan {
	return &domain.Plan{
		Filename:    u.filename,
		ContentType: u.contentType,
		Size:        u.size,
	}
}

func formFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
