package domain

import "github.com/Rrens/floorboard/internal/geometry"

// Category groups workspaces in the sidebar
type Category struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updatedAt"`
}

// CategoryInput represents category create/rename data
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Workspace is a physical area with a floor plan, grouped under a category
type Workspace struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	PlanURL    string `json:"planUrl,omitempty"`
	// Natural size of the plan image, when known.
	PlanWidth  float64 `json:"planWidth,omitempty" validate:"gte=0"`
	PlanHeight float64 `json:"planHeight,omitempty" validate:"gte=0"`
	UpdatedAt  int64   `json:"updatedAt"`
}

// PlanViewport returns the plan's natural size or the default viewport.
func (w Workspace) PlanViewport() geometry.Viewport {
	return geometry.Viewport{W: w.PlanWidth, H: w.PlanHeight}.OrDefault()
}

// WorkspaceCreate represents workspace creation data. The plan image travels
// alongside as a multipart file. NewCategory creates the category inline.
type WorkspaceCreate struct {
	Name        string  `json:"name" validate:"required,max=100"`
	CategoryID  string  `json:"categoryId" validate:"required_without=NewCategory"`
	NewCategory string  `json:"newCategory,omitempty" validate:"max=100"`
	PlanWidth   float64 `json:"planWidth,omitempty" validate:"gte=0"`
	PlanHeight  float64 `json:"planHeight,omitempty" validate:"gte=0"`
}

// WorkspaceUpdate represents workspace rename/move data
type WorkspaceUpdate struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	CategoryID *string `json:"categoryId,omitempty" validate:"omitempty,min=1"`
}

// Plan is an uploaded floor-plan image
type Plan struct {
	Filename    string
	ContentType string
	Size        int64
	Width       float64
	Height      float64
}
