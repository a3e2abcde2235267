package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/geometry"
	"github.com/Rrens/floorboard/internal/livesync"
)

func TestDashboardService_Today(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "2024-03-15", f.dashboard.Today())
	assert.Equal(t, daterange.Single("2024-03-15"), f.dashboard.DefaultQuery())
}

func TestDashboardService_ZonesFiltered(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")
	f.zone(t, ws.ID, "Z1", "2024-03-01", "2024-03-10")
	f.zone(t, ws.ID, "Z2", "2024-03-05", "")
	f.zone(t, ws.ID, "Z3", "2024-04-01", "2024-04-30")

	names := func(views []ZoneView) []string {
		out := []string{}
		for _, v := range views {
			out = append(out, v.Name)
		}
		return out
	}

	got := f.dashboard.Zones(ws.ID, daterange.Query{Start: "2024-03-08", End: "2024-03-12"})
	assert.ElementsMatch(t, []string{"Z1", "Z2"}, names(got))
	assert.Equal(t, "3F", got[0].WorkspaceName)

	assert.Len(t, f.dashboard.Zones(ws.ID, daterange.Query{}), 3, "open query shows everything")
	assert.Empty(t, f.dashboard.Zones("missing", daterange.Query{}))
}

func TestDashboardService_PlaceholderWorkspaceName(t *testing.T) {
	f := newFixture(t)
	doc, err := domain.NewDocument("z1", domain.Zone{WorkspaceID: "gone", Name: "orphan"})
	require.NoError(t, err)
	require.NoError(t, f.docs.Put(context.Background(), domain.ZonesCollection, doc))

	got := f.dashboard.Zones("gone", daterange.Query{})
	require.Len(t, got, 1)
	assert.Equal(t, livesync.UnknownWorkspace, got[0].WorkspaceName)
}

func TestDashboardService_Overlay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")
	rect := f.zone(t, ws.ID, "Rect", "2024-03-01", "2024-03-31")
	poly, err := f.catalog.CreateZone(ctx, domain.ZoneInput{
		WorkspaceID: ws.ID,
		Project:     "Poly",
		Points:      []geometry.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}},
	})
	require.NoError(t, err)

	// A stored zone without geometry stays listable but is not drawn.
	bare, err := domain.NewDocument("bare", domain.Zone{WorkspaceID: ws.ID, Name: "Bare", UpdatedAt: 1})
	require.NoError(t, err)
	require.NoError(t, f.docs.Put(ctx, domain.ZonesCollection, bare))

	ov := f.dashboard.Overlay(ws.ID, daterange.Query{}, geometry.Viewport{W: 1000, H: 500}, nil)
	assert.Equal(t, ws.PlanURL, ov.PlanURL)
	require.Len(t, ov.Shapes, 2)
	assert.Equal(t, []string{"bare"}, ov.Skipped)

	byID := map[string]OverlayShape{}
	for _, s := range ov.Shapes {
		byID[s.ZoneID] = s
	}
	r := byID[rect.ID]
	require.NotNil(t, r.Pixel.Rect)
	assert.Equal(t, geometry.Rect{X: 100, Y: 50, Width: 500, Height: 125}, *r.Pixel.Rect)
	assert.Equal(t, "2024-03-01 ~ 2024-03-31", r.DateLabel)
	assert.Equal(t, geometry.MaxFontSize, r.Fonts.Primary)

	p := byID[poly.ID]
	assert.Equal(t, geometry.ShapePolygon, p.Pixel.Shape)
	assert.Equal(t, "Poly", p.Label)

	checked := f.dashboard.Overlay(ws.ID, daterange.Query{}, geometry.Viewport{}, []string{poly.ID})
	require.Len(t, checked.Shapes, 1)
	assert.Equal(t, geometry.Viewport{W: 400, H: 300}, checked.Viewport, "falls back to the plan's natural size")

	inf := f.dashboard.Overlay(ws.ID, daterange.Query{}, geometry.Viewport{W: math.Inf(1), H: math.Inf(1)}, []string{rect.ID})
	assert.Equal(t, geometry.Viewport{W: 400, H: 300}, inf.Viewport)
	require.Len(t, inf.Shapes, 1)
	_, err = json.Marshal(inf)
	require.NoError(t, err)
}

func TestDashboardService_Calendar(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")
	f.zone(t, ws.ID, "A", "2024-03-01", "2024-03-05")
	f.zone(t, ws.ID, "B", "2024-03-04", "2024-03-04")

	month, err := f.dashboard.ZoneCalendarMonth(ws.ID, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", month.Start)
	assert.Equal(t, "2024-02-25", month.Weeks[0].Start)
	require.NotEmpty(t, month.Weeks)
	assert.Equal(t, 1, month.Weeks[0].Rows)
	assert.Equal(t, 2, month.Weeks[1].Rows)

	week, err := f.dashboard.ZoneCalendarWeek(ws.ID, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", week.Start)
	assert.Len(t, week.Bars, 2)

	_, err = f.dashboard.ZoneCalendarMonth(ws.ID, "March")
	assert.Error(t, err)
}

func TestDashboardService_SidebarAndOverseas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.category(t, "A"), f.category(t, "B")
	f.workspace(t, b.ID, "B1")
	_, err := f.catalog.SaveSidebar(ctx, domain.SidebarInput{Order: []string{b.ID, a.ID}})
	require.NoError(t, err)

	side := f.dashboard.Sidebar()
	require.Len(t, side, 2)
	assert.Equal(t, b.ID, side[0].Category.ID)
	assert.Len(t, side[0].Workspaces, 1)
	assert.Empty(t, side[1].Workspaces)

	_, err = f.overseas.Create(ctx, domain.OverseasInput{Project: "Paris", Brand: "GM", WorkType: domain.WorkTypeOverseas, StartDate: "2024-03-10", EndDate: "2024-03-20"})
	require.NoError(t, err)
	_, err = f.overseas.Create(ctx, domain.OverseasInput{Project: "Busan", WorkType: domain.WorkTypeDomestic, StartDate: "2024-05-01"})
	require.NoError(t, err)

	works := f.dashboard.Overseas(daterange.Single("2024-03-15"))
	require.Len(t, works, 1)
	assert.Equal(t, "Gentle Monster", works[0].BrandInfo.Name)

	month, err := f.dashboard.OverseasCalendarMonth("2024-03")
	require.NoError(t, err)
	bars := 0
	for _, w := range month.Weeks {
		bars += len(w.Bars)
	}
	assert.Equal(t, 2, bars, "Paris spans two weeks")
}

func TestDashboardService_DragRect(t *testing.T) {
	f := newFixture(t)
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F") // 400x300 plan

	// 800x800 container: scale 2, plan drawn 800x600 with 100px bands.
	rect, lb, err := f.dashboard.DragRect(ws.ID,
		geometry.Viewport{W: 800, H: 800},
		geometry.Point{X: 400, Y: 100},
		geometry.Point{X: 80, Y: 790},
	)
	require.NoError(t, err)
	assert.InDelta(t, 2, lb.Scale, 1e-9)
	assert.InDelta(t, 100, lb.OffsetY, 1e-9)
	assert.InDelta(t, 0.1, rect.X, 1e-9)
	assert.InDelta(t, 0, rect.Y, 1e-9)
	assert.InDelta(t, 0.4, rect.Width, 1e-9)
	assert.InDelta(t, 1, rect.Height, 1e-9, "points in the band clamp to the plan edge")

	_, _, err = f.dashboard.DragRect("missing", geometry.Viewport{W: 1, H: 1}, geometry.Point{}, geometry.Point{})
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
}
