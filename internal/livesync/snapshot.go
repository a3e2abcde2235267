package livesync

import (
	"sort"

	"github.com/Rrens/floorboard/internal/domain"
)

// UnknownWorkspace is shown for references to workspaces that are not (or no
// longer) in the snapshot.
const UnknownWorkspace = "unknown workspace"

// Versions counts the notifications applied per collection.
type Versions struct {
	Categories uint64 `json:"categories"`
	Workspaces uint64 `json:"workspaces"`
	Zones      uint64 `json:"zones"`
	Overseas   uint64 `json:"overseas"`
	Settings   uint64 `json:"settings"`
}

// Quarantined is a document rejected at the decode boundary.
type Quarantined struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Reason     string `json:"reason"`
}

// Snapshot is an immutable view of every collection. Callers must not modify
// the slices it exposes.
type Snapshot struct {
	Categories  []domain.Category     `json:"categories"`
	Workspaces  []domain.Workspace    `json:"workspaces"`
	Zones       []domain.Zone         `json:"zones"`
	Overseas    []domain.OverseasWork `json:"overseas"`
	Sidebar     domain.SidebarSetting `json:"sidebar"`
	Versions    Versions              `json:"versions"`
	Quarantined []Quarantined         `json:"quarantined"`
	quarantine  map[string][]Quarantined
	workspaces  map[string]int
	categories  map[string]int
}

func emptySnapshot() *Snapshot {
	s := &Snapshot{
		Categories: []domain.Category{},
		Workspaces: []domain.Workspace{},
		Zones:      []domain.Zone{},
		Overseas:   []domain.OverseasWork{},
		quarantine: map[string][]Quarantined{},
	}
	s.index()
	return s
}

// with returns a shallow copy of s that can be modified and re-indexed.
func (s *Snapshot) with() *Snapshot {
	next := *s
	next.quarantine = make(map[string][]Quarantined, len(s.quarantine))
	for k, v := range s.quarantine {
		next.quarantine[k] = v
	}
	return &next
}

func (s *Snapshot) index() {
	s.workspaces = make(map[string]int, len(s.Workspaces))
	for i, w := range s.Workspaces {
		s.workspaces[w.ID] = i
	}
	s.categories = make(map[string]int, len(s.Categories))
	for i, c := range s.Categories {
		s.categories[c.ID] = i
	}

	s.Quarantined = []Quarantined{}
	keys := make([]string, 0, len(s.quarantine))
	for k := range s.quarantine {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Quarantined = append(s.Quarantined, s.quarantine[k]...)
	}
}

// Category looks up a category by id.
func (s *Snapshot) Category(id string) (domain.Category, bool) {
	i, ok := s.categories[id]
	if !ok {
		return domain.Category{}, false
	}
	return s.Categories[i], true
}

// Workspace looks up a workspace by id.
func (s *Snapshot) Workspace(id string) (domain.Workspace, bool) {
	i, ok := s.workspaces[id]
	if !ok {
		return domain.Workspace{}, false
	}
	return s.Workspaces[i], true
}

// WorkspaceName returns the workspace's name or the UnknownWorkspace
// placeholder.
func (s *Snapshot) WorkspaceName(id string) string {
	if w, ok := s.Workspace(id); ok {
		return w.Name
	}
	return UnknownWorkspace
}

// WorkspacesIn returns the workspaces of a category, by name.
func (s *Snapshot) WorkspacesIn(categoryID string) []domain.Workspace {
	out := []domain.Workspace{}
	for _, w := range s.Workspaces {
		if w.CategoryID == categoryID {
			out = append(out, w)
		}
	}
	return out
}

// ZonesIn returns the zones of a workspace, most recently updated first.
func (s *Snapshot) ZonesIn(workspaceID string) []domain.Zone {
	out := []domain.Zone{}
	for _, z := range s.Zones {
		if z.WorkspaceID == workspaceID {
			out = append(out, z)
		}
	}
	return out
}

// Zone looks up a zone by id.
func (s *Snapshot) Zone(id string) (domain.Zone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return domain.Zone{}, false
}

// OverseasWork looks up an overseas work item by id.
func (s *Snapshot) OverseasWork(id string) (domain.OverseasWork, bool) {
	for _, w := range s.Overseas {
		if w.ID == id {
			return w, true
		}
	}
	return domain.OverseasWork{}, false
}

// VisibleCategories applies the sidebar setting to the categories.
func (s *Snapshot) VisibleCategories() []domain.Category {
	return s.Sidebar.Visible(s.Categories)
}
