package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/livesync"
	"github.com/Rrens/floorboard/internal/viewstate"
)

// View event types accepted by ApplyEvent
const (
	EventFilter          = "filter"
	EventToggle          = "toggle"
	EventCheckAll        = "check_all"
	EventSelectCategory  = "select_category"
	EventSelectWorkspace = "select_workspace"
	EventSelectZone      = "select_zone"
	EventClearZone       = "clear_zone"
	EventOpenEditor      = "open_editor"
	EventCloseEditor     = "close_editor"
)

// ViewEvent is a client interaction with a dashboard view
type ViewEvent struct {
	Type    string `json:"type" validate:"required,oneof=filter toggle check_all select_category select_workspace select_zone clear_zone open_editor close_editor"`
	Start   string `json:"start,omitempty" validate:"omitempty,isodate"`
	End     string `json:"end,omitempty" validate:"omitempty,isodate"`
	ID      string `json:"id,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// View is a stored view with the zones it currently displays
type View struct {
	ID      string          `json:"id"`
	State   viewstate.State `json:"state"`
	Display []string        `json:"display"`
}

// ViewService keeps per-client dashboard selection state in sync with the
// live catalog
type ViewService struct {
	repo      domain.ViewRepository
	source    SnapshotSource
	dashboard *DashboardService
}

// NewViewService creates a new view service
func NewViewService(repo domain.ViewRepository, source SnapshotSource, dashboard *DashboardService) *ViewService {
	return &ViewService{repo: repo, source: source, dashboard: dashboard}
}

// Create opens a view on today with the default navigation
func (s *ViewService) Create(ctx context.Context) (*View, error) {
	state := viewstate.New(s.dashboard.Today())
	return s.save(ctx, uuid.NewString(), s.reconcile(state))
}

// Get returns a view reconciled against the current catalog
func (s *ViewService) Get(ctx context.Context, id string) (*View, error) {
	state, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, id, s.reconcile(state))
}

// ApplyEvent feeds one interaction into the view's state machine
func (s *ViewService) ApplyEvent(ctx context.Context, id string, ev ViewEvent) (*View, error) {
	state, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := s.source.Snapshot()
	state = s.reconcileWith(snap, state)

	switch ev.Type {
	case EventFilter:
		q := daterange.Query{Start: ev.Start, End: ev.End}
		state = viewstate.Reduce(state, viewstate.FilterChanged{
			Query: q,
			IDs:   s.dashboard.FilteredZoneIDs(snap, state.WorkspaceID, q),
		})
	case EventToggle:
		state = viewstate.Reduce(state, viewstate.Toggled{ID: ev.ID})
	case EventCheckAll:
		state = viewstate.Reduce(state, viewstate.AllChecked{Checked: ev.Checked})
	case EventSelectCategory:
		if _, ok := snap.Category(ev.ID); !ok {
			return nil, domain.ErrCategoryNotFound
		}
		state = viewstate.Reduce(state, viewstate.CategorySelected{ID: ev.ID, Workspaces: workspaceRefs(snap)})
		state = s.refresh(snap, state)
	case EventSelectWorkspace:
		ws, ok := snap.Workspace(ev.ID)
		if !ok {
			return nil, domain.ErrWorkspaceNotFound
		}
		state = viewstate.Reduce(state, viewstate.WorkspaceSelected{ID: ws.ID, CategoryID: ws.CategoryID})
		state = s.refresh(snap, state)
	case EventSelectZone:
		if _, ok := snap.Zone(ev.ID); !ok {
			return nil, domain.ErrZoneNotFound
		}
		state = viewstate.Reduce(state, viewstate.ZoneSelected{ID: ev.ID})
	case EventClearZone:
		state = viewstate.Reduce(state, viewstate.ZoneCleared{})
	case EventOpenEditor:
		state = viewstate.Reduce(state, viewstate.EditorOpened{ZoneID: ev.ID})
	case EventCloseEditor:
		state = viewstate.Reduce(state, viewstate.EditorClosed{})
	default:
		return nil, fmt.Errorf("unknown view event %q", ev.Type)
	}

	return s.save(ctx, id, state)
}

// Delete discards a view
func (s *ViewService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ViewService) reconcile(state viewstate.State) viewstate.State {
	return s.reconcileWith(s.source.Snapshot(), state)
}

// reconcileWith repairs the navigation after catalog changes and refreshes
// the filtered zone list.
func (s *ViewService) reconcileWith(snap *livesync.Snapshot, state viewstate.State) viewstate.State {
	cats := snap.VisibleCategories()
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	state = viewstate.Reduce(state, viewstate.NavigationReconciled{Categories: ids, Workspaces: workspaceRefs(snap)})
	return s.refresh(snap, state)
}

func (s *ViewService) refresh(snap *livesync.Snapshot, state viewstate.State) viewstate.State {
	return viewstate.Reduce(state, viewstate.DataRefreshed{
		IDs: s.dashboard.FilteredZoneIDs(snap, state.WorkspaceID, state.Query),
	})
}

func (s *ViewService) save(ctx context.Context, id string, state viewstate.State) (*View, error) {
	if err := s.repo.Save(ctx, id, state); err != nil {
		return nil, fmt.Errorf("failed to save view: %w", err)
	}
	return &View{ID: id, State: state, Display: viewstate.Display(state)}, nil
}

func workspaceRefs(snap *livesync.Snapshot) []viewstate.WorkspaceRef {
	refs := make([]viewstate.WorkspaceRef, len(snap.Workspaces))
	for i, w := range snap.Workspaces {
		refs[i] = viewstate.WorkspaceRef{ID: w.ID, CategoryID: w.CategoryID}
	}
	return refs
}
