package domain

import "sort"

// Sidebar settings live in a singleton document.
const (
	SettingsCollection = "settings"
	SidebarSettingID   = "sidebar"
)

// SidebarSetting controls which categories the dashboard sidebar shows and in
// what order. An absent document or empty lists mean all categories in
// natural order.
type SidebarSetting struct {
	CategoryIDs []string `json:"categoryIds"`
	Order       []string `json:"order"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// SidebarInput represents a sidebar settings save
type SidebarInput struct {
	CategoryIDs []string `json:"categoryIds" validate:"dive,required"`
	Order       []string `json:"order" validate:"dive,required"`
}

// SidebarMove moves From to the position held by To in the sidebar order
type SidebarMove struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Visible filters categories to the allowed ids and sorts them by the
// configured order. Categories missing from the order keep their relative
// position after the ordered ones.
func (s SidebarSetting) Visible(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	if len(s.CategoryIDs) == 0 {
		out = append(out, categories...)
	} else {
		allowed := make(map[string]bool, len(s.CategoryIDs))
		for _, id := range s.CategoryIDs {
			allowed[id] = true
		}
		for _, c := range categories {
			if allowed[c.ID] {
				out = append(out, c)
			}
		}
	}
	if len(s.Order) == 0 {
		return out
	}

	pos := make(map[string]int, len(s.Order))
	for i, id := range s.Order {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	rank := func(id string) int {
		if i, ok := pos[id]; ok {
			return i
		}
		return len(s.Order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].ID) < rank(out[j].ID)
	})
	return out
}

// MergeOrder keeps the ids of order that still name a category and appends
// the remaining categories in their given order.
func MergeOrder(order []string, categories []Category) []string {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	out := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, id := range order {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, c := range categories {
		if !seen[c.ID] {
			out = append(out, c.ID)
			seen[c.ID] = true
		}
	}
	return out
}

// Reorder moves from to the position currently held by to, shifting the
// ids in between. Ids absent from order are appended first.
func Reorder(order []string, from, to string) []string {
	out := append([]string(nil), order...)
	if from == "" || from == to {
		return out
	}
	if indexOf(out, from) < 0 {
		out = append(out, from)
	}
	if indexOf(out, to) < 0 {
		out = append(out, to)
	}

	fromIdx, toIdx := indexOf(out, from), indexOf(out, to)
	out = append(out[:fromIdx], out[fromIdx+1:]...)
	if toIdx > len(out) {
		toIdx = len(out)
	}
	out = append(out[:toIdx], append([]string{from}, out[toIdx:]...)...)
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
