package service

import (
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/calendar"
	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/geometry"
	"github.com/Rrens/floorboard/internal/livesync"
)

// SnapshotSource provides the latest decoded catalog
type SnapshotSource interface {
	Snapshot() *livesync.Snapshot
}

// SidebarEntry is one visible category with its workspaces
type SidebarEntry struct {
	Category   domain.Category    `json:"category"`
	Workspaces []domain.Workspace `json:"workspaces"`
}

// ZoneView is a zone as listed on the dashboard
type ZoneView struct {
	domain.Zone
	WorkspaceName string       `json:"workspaceName"`
	BrandInfo     domain.Brand `json:"brandInfo"`
}

// OverlayShape is one zone drawn over the floor plan
type OverlayShape struct {
	ZoneID    string             `json:"zoneId"`
	Label     string             `json:"label"`
	DateLabel string             `json:"dateLabel,omitempty"`
	Color     string             `json:"color"`
	Pixel     geometry.Pixel     `json:"pixel"`
	Fonts     geometry.FontSizes `json:"fonts"`
}

// Overlay is the pixel-space rendering of a workspace's displayed zones
type Overlay struct {
	WorkspaceID string            `json:"workspaceId"`
	PlanURL     string            `json:"planUrl,omitempty"`
	Viewport    geometry.Viewport `json:"viewport"`
	Shapes      []OverlayShape    `json:"shapes"`
	// Skipped lists displayed zones without usable geometry.
	Skipped []string `json:"skipped"`
}

// OverseasView is an overseas work item with its brand resolved
type OverseasView struct {
	domain.OverseasWork
	BrandInfo domain.Brand `json:"brandInfo"`
}

// DashboardService answers read-only dashboard queries from the live snapshot
type DashboardService struct {
	source   SnapshotSource
	clock    clock.Clock
	location *time.Location
	first    time.Weekday
	rowCap   int
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source SnapshotSource, cfg config.DashboardConfig, c clock.Clock) *DashboardService {
	if c == nil {
		c = clock.NewSystem()
	}
	rowCap := cfg.RowCap
	if rowCap <= 0 {
		rowCap = calendar.DefaultRowCap
	}
	return &DashboardService{
		source:   source,
		clock:    c,
		location: cfg.Location(),
		first:    cfg.FirstWeekday(),
		rowCap:   rowCap,
	}
}

// Today returns the current date in the dashboard's timezone
func (s *DashboardService) Today() string {
	return clock.Today(s.clock, s.location)
}

// DefaultQuery is the range a dashboard opens on: today only.
func (s *DashboardService) DefaultQuery() daterange.Query {
	return daterange.Single(s.Today())
}

// Sidebar returns the visible categories in configured order with their
// workspaces
func (s *DashboardService) Sidebar() []SidebarEntry {
	snap := s.source.Snapshot()
	cats := snap.VisibleCategories()

	out := make([]SidebarEntry, 0, len(cats))
	for _, c := range cats {
		out = append(out, SidebarEntry{Category: c, Workspaces: snap.WorkspacesIn(c.ID)})
	}
	return out
}

// Zones lists a workspace's zones visible for q, newest first
func (s *DashboardService) Zones(workspaceID string, q daterange.Query) []ZoneView {
	snap := s.source.Snapshot()
	return zoneViews(snap, s.filterZones(snap, workspaceID, q))
}

// FilteredZoneIDs returns the ids of a workspace's zones visible for q, in
// display order
func (s *DashboardService) FilteredZoneIDs(snap *livesync.Snapshot, workspaceID string, q daterange.Query) []string {
	zones := s.filterZones(snap, workspaceID, q)
	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	return ids
}

// Overlay projects the displayed zones of a workspace into vp. A nil checked
// list displays every filtered zone.
func (s *DashboardService) Overlay(workspaceID string, q daterange.Query, vp geometry.Viewport, checked []string) Overlay {
	snap := s.source.Snapshot()
	zones := s.filterZones(snap, workspaceID, q)

	ov := Overlay{WorkspaceID: workspaceID, Shapes: []OverlayShape{}, Skipped: []string{}}
	if ws, ok := snap.Workspace(workspaceID); ok {
		ov.PlanURL = ws.PlanURL
		if !vp.Valid() {
			vp = ws.PlanViewport()
		}
	}
	ov.Viewport = vp.OrDefault()

	var show map[string]bool
	if checked != nil {
		show = make(map[string]bool, len(checked))
		for _, id := range checked {
			show[id] = true
		}
	}

	for _, z := range zones {
		if show != nil && !show[z.ID] {
			continue
		}
		px, ok := geometry.Project(z.Geometry(), ov.Viewport)
		if !ok {
			ov.Skipped = append(ov.Skipped, z.ID)
			continue
		}
		label := z.Label()
		ov.Shapes = append(ov.Shapes, OverlayShape{
			ZoneID:    z.ID,
			Label:     label,
			DateLabel: dateLabel(z.StartDate, z.EndDate),
			Color:     z.DisplayColor(),
			Pixel:     px,
			Fonts:     geometry.LabelFontSizes(px.Bounds.Width, px.Bounds.Height, utf8.RuneCountInString(label)),
		})
	}
	return ov
}

// ZoneCalendarMonth lays out a workspace's zones on a month grid
func (s *DashboardService) ZoneCalendarMonth(workspaceID, month string) (calendar.Month, error) {
	return calendar.LayoutMonth(s.zoneItems(workspaceID), month, s.first, s.rowCap, reportMalformed)
}

// ZoneCalendarWeek lays out a workspace's zones on the week containing day
func (s *DashboardService) ZoneCalendarWeek(workspaceID, day string) (calendar.Week, error) {
	start, err := calendar.WeekStart(day, s.first)
	if err != nil {
		return calendar.Week{}, err
	}
	return calendar.LayoutWeek(s.zoneItems(workspaceID), start, s.rowCap, reportMalformed)
}

// DragRect converts a drag between two points of a container showing the
// workspace's plan (object-contain) into a normalized rect
func (s *DashboardService) DragRect(workspaceID string, container geometry.Viewport, from, to geometry.Point) (geometry.Rect, geometry.Letterbox, error) {
	ws, ok := s.source.Snapshot().Workspace(workspaceID)
	if !ok {
		return geometry.Rect{}, geometry.Letterbox{}, domain.ErrWorkspaceNotFound
	}
	img := ws.PlanViewport()
	rect := geometry.RectFromDrag(
		geometry.ScreenToUnit(from, container, img),
		geometry.ScreenToUnit(to, container, img),
	)
	return rect, geometry.FitContain(container, img), nil
}

// Overseas lists overseas work visible for q, newest first
func (s *DashboardService) Overseas(q daterange.Query) []OverseasView {
	works := daterange.Filter(s.source.Snapshot().Overseas, q, reportMalformed)
	out := make([]OverseasView, len(works))
	for i, w := range works {
		out[i] = OverseasView{OverseasWork: w, BrandInfo: domain.LookupBrand(w.Brand)}
	}
	return out
}

// OverseasCalendarMonth lays out overseas work on a month grid
func (s *DashboardService) OverseasCalendarMonth(month string) (calendar.Month, error) {
	works := s.source.Snapshot().Overseas
	items := make([]calendar.Item, len(works))
	for i, w := range works {
		items[i] = w.CalendarItem()
	}
	return calendar.LayoutMonth(items, month, s.first, s.rowCap, reportMalformed)
}

func (s *DashboardService) filterZones(snap *livesync.Snapshot, workspaceID string, q daterange.Query) []domain.Zone {
	return daterange.Filter(snap.ZonesIn(workspaceID), q, reportMalformed)
}

func (s *DashboardService) zoneItems(workspaceID string) []calendar.Item {
	zones := s.source.Snapshot().ZonesIn(workspaceID)
	items := make([]calendar.Item, len(zones))
	for i, z := range zones {
		items[i] = z.CalendarItem()
	}
	return items
}

func zoneViews(snap *livesync.Snapshot, zones []domain.Zone) []ZoneView {
	out := make([]ZoneView, len(zones))
	for i, z := range zones {
		out[i] = ZoneView{
			Zone:          z,
			WorkspaceName: snap.WorkspaceName(z.WorkspaceID),
			BrandInfo:     domain.LookupBrand(z.Brand),
		}
	}
	return out
}

func dateLabel(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case start == end:
		return start
	default:
		return start + " ~ " + end
	}
}

// reportMalformed logs records the date filter excluded for malformed dates.
func reportMalformed(record daterange.Dated, err error) {
	ev := log.Warn().Err(err)
	switch r := record.(type) {
	case domain.Zone:
		ev = ev.Str("zone_id", r.ID).Str("workspace_id", r.WorkspaceID)
	case domain.OverseasWork:
		ev = ev.Str("overseas_id", r.ID)
	case calendar.Item:
		ev = ev.Str("item_id", r.ID)
	}
	ev.Msg("Record excluded for malformed date")
}
