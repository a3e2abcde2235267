package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/repository/memory"
)

func TestCatalogService_DeleteWorkspaceCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat := f.category(t, "HQ")
	ws := f.workspace(t, cat.ID, "3F")
	other := f.workspace(t, cat.ID, "4F")
	for _, name := range []string{"A", "B", "C", "D"} {
		f.zone(t, ws.ID, name, "2024-03-01", "2024-03-31")
	}
	f.zone(t, other.ID, "E", "", "")

	snap := f.adapter.Snapshot()
	require.Len(t, snap.ZonesIn(ws.ID), 4)
	assert.Equal(t, 400.0, ws.PlanWidth)
	assert.Equal(t, 300.0, ws.PlanHeight)
	assert.Equal(t, domain.ObjectURL("plans/"+ws.ID+".png"), ws.PlanURL)

	require.NoError(t, f.catalog.DeleteWorkspace(ctx, ws.ID))

	snap = f.adapter.Snapshot()
	assert.Empty(t, snap.ZonesIn(ws.ID))
	assert.Len(t, snap.ZonesIn(other.ID), 1)
	_, ok := snap.Workspace(ws.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{"plans/" + other.ID + ".png"}, f.objects.Keys())

	assert.ErrorIs(t, f.catalog.DeleteWorkspace(ctx, ws.ID), domain.ErrWorkspaceNotFound)
}

func TestCatalogService_DeleteCategoryCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat := f.category(t, "HQ")
	keep := f.category(t, "Lab")
	a := f.workspace(t, cat.ID, "A")
	b := f.workspace(t, cat.ID, "B")
	c := f.workspace(t, keep.ID, "C")
	f.zone(t, a.ID, "z1", "", "")
	f.zone(t, b.ID, "z2", "", "")
	f.zone(t, c.ID, "z3", "", "")

	require.NoError(t, f.catalog.DeleteCategory(ctx, cat.ID))

	snap := f.adapter.Snapshot()
	require.Len(t, snap.Categories, 1)
	require.Len(t, snap.Workspaces, 1)
	assert.Equal(t, c.ID, snap.Workspaces[0].ID)
	require.Len(t, snap.Zones, 1)
	assert.Equal(t, c.ID, snap.Zones[0].WorkspaceID)
	assert.Equal(t, []string{"plans/" + c.ID + ".png"}, f.objects.Keys())

	assert.ErrorIs(t, f.catalog.DeleteCategory(ctx, cat.ID), domain.ErrCategoryNotFound)
}

func TestCatalogService_CreateWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "HQ")

	t.Run("plan required", func(t *testing.T) {
		_, err := f.catalog.CreateWorkspace(ctx, domain.WorkspaceCreate{Name: "X", CategoryID: cat.ID}, nil, nil)
		assert.ErrorIs(t, err, domain.ErrPlanRequired)
	})

	t.Run("unsupported file", func(t *testing.T) {
		_, err := f.catalog.CreateWorkspace(ctx,
			domain.WorkspaceCreate{Name: "X", CategoryID: cat.ID},
			&domain.Plan{Filename: "plan.pdf", ContentType: "application/pdf"},
			strings.NewReader("%PDF"),
		)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.catalog.CreateWorkspace(ctx,
			domain.WorkspaceCreate{Name: "X", CategoryID: "missing"},
			&domain.Plan{Filename: "plan.png", ContentType: "image/png"},
			bytes.NewReader(pngBytes(t, 10, 10)),
		)
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
		assert.Empty(t, f.objects.Keys())
	})

	t.Run("inline category", func(t *testing.T) {
		ws, err := f.catalog.CreateWorkspace(ctx,
			domain.WorkspaceCreate{Name: "Annex", NewCategory: "Remote"},
			&domain.Plan{Filename: "plan.webp", ContentType: "image/webp"},
			strings.NewReader("not decodable"),
		)
		require.NoError(t, err)
		cat, ok := f.adapter.Snapshot().Category(ws.CategoryID)
		require.True(t, ok)
		assert.Equal(t, "Remote", cat.Name)
		assert.Zero(t, ws.PlanWidth, "unknown formats render in the default viewport")
	})
}

func TestCatalogService_UploadPlanReplacesObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")

	updated, err := f.catalog.UploadPlan(ctx, ws.ID,
		domain.Plan{Filename: "scan.JPG", ContentType: "image/jpeg"},
		bytes.NewReader(pngBytes(t, 800, 600)),
	)
	require.NoError(t, err)

	assert.Equal(t, domain.ObjectURL("plans/"+ws.ID+".jpg"), updated.PlanURL)
	assert.Equal(t, 800.0, updated.PlanWidth)
	assert.Equal(t, []string{"plans/" + ws.ID + ".jpg"}, f.objects.Keys())
}

func TestCatalogService_UpdateWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")
	lab := f.category(t, "Lab")

	name, blank, missing := "Third floor", "  ", "missing"
	updated, err := f.catalog.UpdateWorkspace(ctx, ws.ID, domain.WorkspaceUpdate{Name: &name, CategoryID: &lab.ID})
	require.NoError(t, err)
	assert.Equal(t, "Third floor", updated.Name)
	assert.Equal(t, lab.ID, updated.CategoryID)

	_, err = f.catalog.UpdateWorkspace(ctx, ws.ID, domain.WorkspaceUpdate{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
	_, err = f.catalog.UpdateWorkspace(ctx, ws.ID, domain.WorkspaceUpdate{CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCatalogService_Zones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")

	_, err := f.catalog.CreateZone(ctx, domain.ZoneInput{WorkspaceID: ws.ID, Name: "A", StartDate: "2024-03-10", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = f.catalog.CreateZone(ctx, domain.ZoneInput{WorkspaceID: "missing", Name: "A"})
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)

	z := f.zone(t, ws.ID, "A", "2024-03-01", "")
	assert.True(t, z.Active)
	assert.Equal(t, domain.DefaultZoneColor, z.Color)
	assert.Equal(t, testNow.UnixMilli(), z.UpdatedAt)

	updated, err := f.catalog.UpdateZone(ctx, z.ID, domain.ZoneInput{WorkspaceID: ws.ID, Team: "Design", Color: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "Design", updated.Label())

	got, ok := f.adapter.Snapshot().Zone(z.ID)
	require.True(t, ok)
	assert.Equal(t, "#ff0000", got.Color)

	require.NoError(t, f.catalog.DeleteZone(ctx, z.ID))
	assert.ErrorIs(t, f.catalog.DeleteZone(ctx, z.ID), domain.ErrZoneNotFound)
	_, err = f.catalog.UpdateZone(ctx, z.ID, domain.ZoneInput{WorkspaceID: ws.ID, Name: "A"})
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)
}

func TestCatalogService_Categories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateCategory(ctx, domain.CategoryInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	c := f.category(t, " HQ ")
	assert.Equal(t, "HQ", c.Name)

	renamed, err := f.catalog.RenameCategory(ctx, c.ID, domain.CategoryInput{Name: "Head office"})
	require.NoError(t, err)
	assert.Equal(t, "Head office", renamed.Name)

	_, err = f.catalog.RenameCategory(ctx, "missing", domain.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCatalogService_SaveSidebar(t *testing.T) {
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")
	c := f.category(t, "C")

	setting, err := f.catalog.SaveSidebar(context.Background(), domain.SidebarInput{
		CategoryIDs: []string{b.ID, "gone", a.ID, b.ID},
		Order:       []string{b.ID, "gone", a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, setting.CategoryIDs)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, setting.Order)

	visible := f.adapter.Snapshot().VisibleCategories()
	require.Len(t, visible, 2)
	assert.Equal(t, b.ID, visible[0].ID)

	setting, err = f.catalog.SaveSidebar(context.Background(), domain.SidebarInput{})
	require.NoError(t, err)
	assert.Empty(t, setting.Order)
}

func TestCatalogService_MoveSidebarCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.category(t, "A"), f.category(t, "B"), f.category(t, "C")

	setting, err := f.catalog.MoveSidebarCategory(ctx, domain.SidebarMove{From: c.ID, To: a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, setting.Order)

	setting, err = f.catalog.MoveSidebarCategory(ctx, domain.SidebarMove{From: c.ID, To: b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, setting.Order)

	visible := f.adapter.Snapshot().VisibleCategories()
	require.Len(t, visible, 3)
	assert.Equal(t, c.ID, visible[2].ID)

	_, err = f.catalog.MoveSidebarCategory(ctx, domain.SidebarMove{From: "gone", To: a.ID})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCatalogService_DeleteCategoryPrunesSidebar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.category(t, "A"), f.category(t, "B")

	_, err := f.catalog.SaveSidebar(ctx, domain.SidebarInput{
		CategoryIDs: []string{a.ID},
		Order:       []string{a.ID, b.ID},
	})
	require.NoError(t, err)
	require.Len(t, f.adapter.Snapshot().VisibleCategories(), 1)

	require.NoError(t, f.catalog.DeleteCategory(ctx, a.ID))

	snap := f.adapter.Snapshot()
	assert.Empty(t, snap.Sidebar.CategoryIDs)
	assert.Equal(t, []string{b.ID}, snap.Sidebar.Order)
	visible := snap.VisibleCategories()
	require.Len(t, visible, 1, "an emptied allow-list shows every category")
	assert.Equal(t, b.ID, visible[0].ID)
}

func TestCatalogService_StoreFailure(t *testing.T) {
	docs := new(MockDocumentStore)
	docs.On("Put", mock.Anything, domain.CategoriesCollection, mock.Anything).Return(errors.New("write concern"))
	svc := NewCatalogService(docs, memory.NewObjectStore(), nil)

	_, err := svc.CreateCategory(context.Background(), domain.CategoryInput{Name: "HQ"})
	assert.ErrorContains(t, err, "failed to create category")
	docs.AssertExpectations(t)
}
