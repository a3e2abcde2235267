// Package viewstate is the dashboard's selection state machine: the date
// query, which filtered records are checked for display, the active
// category/workspace and the open detail or editor panel.
//
// Reduce is pure. Callers compute the filtered ids and pass them in events.
package viewstate

import "github.com/Rrens/floorboard/internal/daterange"

// State is one dashboard view.
type State struct {
	Query       daterange.Query `json:"query"`
	CategoryID  string          `json:"categoryId"`
	WorkspaceID string          `json:"workspaceId"`
	// Filtered holds the ids passing the date filter, in display order.
	Filtered []string `json:"filtered"`
	// Checked is a subset of Filtered, kept in Filtered order.
	Checked      []string `json:"checked"`
	SelectedZone string   `json:"selectedZone,omitempty"`
	EditorOpen   bool     `json:"editorOpen"`
	EditorZone   string   `json:"editorZone,omitempty"`
}

// New returns the initial state for a dashboard opened on today: the query
// is pre-populated with today as both bounds.
func New(today string) State {
	return State{
		Query:    daterange.Single(today),
		Filtered: []string{},
		Checked:  []string{},
	}
}

// WorkspaceRef is the part of a workspace the navigation rules need.
type WorkspaceRef struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// FilterChanged replaces the query. IDs are the records passing it.
type FilterChanged struct {
	Query daterange.Query
	IDs   []string
}

// DataRefreshed reports the filtered ids after a store change.
type DataRefreshed struct {
	IDs []string
}

// Toggled flips one record's checked state.
type Toggled struct {
	ID string
}

// AllChecked checks or unchecks every filtered record.
type AllChecked struct {
	Checked bool
}

// CategorySelected activates a category. Workspaces is the current
// workspace list, used to move off a workspace of another category.
type CategorySelected struct {
	ID         string
	Workspaces []WorkspaceRef
}

// WorkspaceSelected activates a workspace and, when known, its category.
type WorkspaceSelected struct {
	ID         string
	CategoryID string
}

// NavigationReconciled fixes the selection against the visible categories
// (in sidebar order) and the workspace list after a snapshot.
type NavigationReconciled struct {
	Categories []string
	Workspaces []WorkspaceRef
}

// ZoneSelected opens the detail popover of a zone.
type ZoneSelected struct {
	ID string
}

// ZoneCleared closes the detail popover.
type ZoneCleared struct{}

// EditorOpened opens the zone editor. An empty ZoneID means a new zone.
type EditorOpened struct {
	ZoneID string
}

// EditorClosed closes the zone editor.
type EditorClosed struct{}

func (FilterChanged) event()        {}
func (DataRefreshed) event()        {}
func (Toggled) event()              {}
func (AllChecked) event()           {}
func (CategorySelected) event()     {}
func (WorkspaceSelected) event()    {}
func (NavigationReconciled) event() {}
func (ZoneSelected) event()         {}
func (ZoneCleared) event()          {}
func (EditorOpened) event()         {}
func (EditorClosed) event()         {}

// Reduce applies e to s and returns the new state. s is not modified.
func Reduce(s State, e Event) State {
	s = s.clone()

	switch e := e.(type) {
	case FilterChanged:
		s.Query = e.Query
		s.resetChecked(e.IDs)

	case DataRefreshed:
		if sameSet(s.Filtered, e.IDs) {
			checked := toSet(s.Checked)
			s.Filtered = copyIDs(e.IDs)
			s.Checked = keep(s.Filtered, checked)
		} else {
			s.resetChecked(e.IDs)
		}

	case Toggled:
		if indexOf(s.Filtered, e.ID) < 0 {
			break
		}
		checked := toSet(s.Checked)
		checked[e.ID] = !checked[e.ID]
		s.Checked = keep(s.Filtered, checked)

	case AllChecked:
		if e.Checked {
			s.Checked = copyIDs(s.Filtered)
		} else {
			s.Checked = []string{}
		}

	case CategorySelected:
		s.CategoryID = e.ID
		if !belongs(e.Workspaces, s.WorkspaceID, e.ID) {
			s.selectWorkspace(firstIn(e.Workspaces, e.ID))
		}

	case WorkspaceSelected:
		if e.CategoryID != "" {
			s.CategoryID = e.CategoryID
		}
		s.selectWorkspace(e.ID)

	case NavigationReconciled:
		if indexOf(e.Categories, s.CategoryID) < 0 {
			s.CategoryID = ""
			if len(e.Categories) > 0 {
				s.CategoryID = e.Categories[0]
			}
		}
		if !belongs(e.Workspaces, s.WorkspaceID, s.CategoryID) {
			next := firstIn(e.Workspaces, s.CategoryID)
			if next == "" && s.CategoryID == "" && len(e.Workspaces) > 0 {
				next = e.Workspaces[0].ID
			}
			s.selectWorkspace(next)
		}

	case ZoneSelected:
		s.SelectedZone = e.ID

	case ZoneCleared:
		s.SelectedZone = ""

	case EditorOpened:
		s.EditorOpen = true
		s.EditorZone = e.ZoneID

	case EditorClosed:
		s.EditorOpen = false
		s.EditorZone = ""
	}
	return s
}

// Display returns the checked records in filtered order.
func Display(s State) []string {
	return keep(s.Filtered, toSet(s.Checked))
}

func (s *State) resetChecked(ids []string) {
	s.Filtered = copyIDs(ids)
	s.Checked = copyIDs(ids)
	if s.SelectedZone != "" && indexOf(s.Filtered, s.SelectedZone) < 0 {
		s.SelectedZone = ""
	}
}

func (s *State) selectWorkspace(id string) {
	if id == s.WorkspaceID {
		return
	}
	s.WorkspaceID = id
	s.SelectedZone = ""
	s.EditorOpen = false
	s.EditorZone = ""
}

func (s State) clone() State {
	s.Filtered = copyIDs(s.Filtered)
	s.Checked = copyIDs(s.Checked)
	return s
}

// belongs reports whether workspace id exists and sits in category. An empty
// category accepts any existing workspace.
func belongs(ws []WorkspaceRef, id, category string) bool {
	if id == "" {
		return false
	}
	for _, w := range ws {
		if w.ID == id {
			return category == "" || w.CategoryID == category
		}
	}
	return false
}

func firstIn(ws []WorkspaceRef, category string) string {
	if category == "" {
		return ""
	}
	for _, w := range ws {
		if w.CategoryID == category {
			return w.ID
		}
	}
	return ""
}

func keep(order []string, set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, id := range order {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func sameSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if !bs[id] {
			return false
		}
	}
	return true
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
