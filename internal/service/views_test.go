package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
)

func TestViewService_Flow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hq := f.category(t, "HQ")
	lab := f.category(t, "Lab")
	third := f.workspace(t, hq.ID, "3F")
	bench := f.workspace(t, lab.ID, "Bench")
	today := f.zone(t, third.ID, "Today", "2024-03-15", "2024-03-15")
	later := f.zone(t, third.ID, "Later", "2024-04-01", "2024-04-02")
	f.zone(t, bench.ID, "Bench zone", "2024-03-01", "2024-03-31")

	v, err := f.views.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, daterange.Single("2024-03-15"), v.State.Query)
	assert.Equal(t, hq.ID, v.State.CategoryID)
	assert.Equal(t, third.ID, v.State.WorkspaceID)
	assert.Equal(t, []string{today.ID}, v.Display)

	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventFilter, Start: "2024-03-01", End: "2024-04-30"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{today.ID, later.ID}, v.Display)

	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventToggle, ID: later.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{today.ID}, v.Display)

	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventSelectZone, ID: today.ID})
	require.NoError(t, err)
	assert.Equal(t, today.ID, v.State.SelectedZone)

	// Switching category moves to its first workspace and resets the selection.
	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventSelectCategory, ID: lab.ID})
	require.NoError(t, err)
	assert.Equal(t, bench.ID, v.State.WorkspaceID)
	assert.Empty(t, v.State.SelectedZone)
	assert.Len(t, v.Display, 1)

	_, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventSelectWorkspace, ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)

	// Deleting the active workspace reconciles the view on the next read.
	require.NoError(t, f.catalog.DeleteWorkspace(ctx, bench.ID))
	v, err = f.views.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, lab.ID, v.State.CategoryID)
	assert.Empty(t, v.State.WorkspaceID)
	assert.Empty(t, v.Display)

	require.NoError(t, f.views.Delete(ctx, v.ID))
	_, err = f.views.Get(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
}

func TestViewService_DataRefreshKeepsUnchangedSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.workspace(t, f.category(t, "HQ").ID, "3F")
	a := f.zone(t, ws.ID, "A", "", "")
	b := f.zone(t, ws.ID, "B", "", "")

	v, err := f.views.Create(ctx)
	require.NoError(t, err)
	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventFilter})
	require.NoError(t, err)
	v, err = f.views.ApplyEvent(ctx, v.ID, ViewEvent{Type: EventToggle, ID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, v.Display)

	// Editing a zone keeps the filtered set, so the unchecked zone stays hidden.
	_, err = f.catalog.UpdateZone(ctx, b.ID, domain.ZoneInput{WorkspaceID: ws.ID, Name: "B2"})
	require.NoError(t, err)
	v, err = f.views.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, v.Display)

	// A new zone changes the set and resets the checked list.
	c := f.zone(t, ws.ID, "C", "", "")
	v, err = f.views.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, v.Display)
}
