package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/geometry"
	"github.com/Rrens/floorboard/internal/service"
)

// DashboardHandler serves the read-only dashboard views
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Zones lists a workspace's zones for the requested range
func (h *DashboardHandler) Zones(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.dashboard.DefaultQuery)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	zones := h.dashboard.Zones(chi.URLParam(r, "workspaceID"), q)
	response.OK(w, map[string]any{
		"query": q,
		"zones": zones,
	})
}

// Overlay projects the displayed zones into the requested viewport. Without
// width/height the plan's natural size is used. checked is a comma separated
// id list; when absent every filtered zone is drawn.
func (h *DashboardHandler) Overlay(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.dashboard.DefaultQuery)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	params := r.URL.Query()
	var vp geometry.Viewport
	if vp.W, err = queryFloat(params.Get("width")); err != nil {
		response.BadRequest(w, map[string]string{"width": "must be a number"})
		return
	}
	if vp.H, err = queryFloat(params.Get("height")); err != nil {
		response.BadRequest(w, map[string]string{"height": "must be a number"})
		return
	}

	var checked []string
	if params.Has("checked") {
		checked = splitIDs(params.Get("checked"))
	}

	response.OK(w, h.dashboard.Overlay(chi.URLParam(r, "workspaceID"), q, vp, checked))
}

// Calendar lays out a workspace's zones for ?month=YYYY-MM or the week
// containing ?week=YYYY-MM-DD. With neither it shows the current month.
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	params := r.URL.Query()

	if day := params.Get("week"); day != "" {
		week, err := h.dashboard.ZoneCalendarWeek(workspaceID, day)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		response.OK(w, week)
		return
	}

	month, err := h.dashboard.ZoneCalendarMonth(workspaceID, h.month(r))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	response.OK(w, month)
}

// Overseas lists overseas work for the requested range
func (h *DashboardHandler) Overseas(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, h.dashboard.DefaultQuery)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, map[string]any{
		"query": q,
		"works": h.dashboard.Overseas(q),
	})
}

// OverseasCalendar lays out overseas work on a month grid
func (h *DashboardHandler) OverseasCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := h.dashboard.OverseasCalendarMonth(h.month(r))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	response.OK(w, month)
}

func (h *DashboardHandler) month(r *http.Request) string {
	if m := r.URL.Query().Get("month"); m != "" {
		return m
	}
	return h.dashboard.Today()[:7]
}

func queryFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("non-finite value %q", v)
	}
	return f, nil
}

func splitIDs(v string) []string {
	ids := []string{}
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

type dragInput struct {
	Container struct {
		W float64 `json:"width" validate:"gt=0"`
		H float64 `json:"height" validate:"gt=0"`
	} `json:"container"`
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// DragRect turns a drag over the zone editor into a normalized rect
func (h *DashboardHandler) DragRect(w http.ResponseWriter, r *http.Request) {
	var input dragInput
	if !decodeJSON(w, r, &input) {
		return
	}

	container := geometry.Viewport{W: input.Container.W, H: input.Container.H}
	rect, letterbox, err := h.dashboard.DragRect(chi.URLParam(r, "workspaceID"), container, input.From, input.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"rect":      rect,
		"letterbox": letterbox,
	})
}
