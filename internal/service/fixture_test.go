package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/geometry"
	"github.com/Rrens/floorboard/internal/livesync"
	"github.com/Rrens/floorboard/internal/repository/memory"
)

type fixture struct {
	docs      *memory.DocumentStore
	objects   *memory.ObjectStore
	adapter   *livesync.Adapter
	catalog   *CatalogService
	overseas  *OverseasService
	dashboard *DashboardService
	views     *ViewService
}

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := clock.NewFixed(testNow)
	docs := memory.NewDocumentStore()
	objects := memory.NewObjectStore()

	adapter := livesync.NewAdapter(docs)
	require.NoError(t, adapter.Start(context.Background()))
	t.Cleanup(adapter.Close)

	dashboard := NewDashboardService(adapter, config.DashboardConfig{Timezone: "UTC", WeekStart: "sunday"}, c)
	return &fixture{
		docs:      docs,
		objects:   objects,
		adapter:   adapter,
		catalog:   NewCatalogService(docs, objects, c),
		overseas:  NewOverseasService(docs, objects, c),
		dashboard: dashboard,
		views:     NewViewService(memory.NewViewStore(time.Hour, c), adapter, dashboard),
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func (f *fixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := f.catalog.CreateCategory(context.Background(), domain.CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) workspace(t *testing.T, categoryID, name string) *domain.Workspace {
	t.Helper()
	ws, err := f.catalog.CreateWorkspace(context.Background(),
		domain.WorkspaceCreate{Name: name, CategoryID: categoryID},
		&domain.Plan{Filename: "plan.png", ContentType: "image/png"},
		bytes.NewReader(pngBytes(t, 400, 300)),
	)
	require.NoError(t, err)
	return ws
}

func (f *fixture) zone(t *testing.T, workspaceID, name, start, end string) *domain.Zone {
	t.Helper()
	z, err := f.catalog.CreateZone(context.Background(), domain.ZoneInput{
		WorkspaceID: workspaceID,
		Name:        name,
		Rect:        &geometry.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.25},
		StartDate:   start,
		EndDate:     end,
	})
	require.NoError(t, err)
	return z
}
