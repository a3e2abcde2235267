package domain

import (
	"github.com/Rrens/floorboard/internal/calendar"
	"github.com/Rrens/floorboard/internal/geometry"
)

// DefaultZoneColor is used when a zone has no colour of its own
const DefaultZoneColor = "#327fff"

// Zone is a reservation region on a workspace's floor plan. Geometry is a
// normalized rect or a legacy polygon; the rect wins when both are present.
type Zone struct {
	ID          string           `json:"id" validate:"required"`
	WorkspaceID string           `json:"workspaceId" validate:"required"`
	Name        string           `json:"name"`
	Team        string           `json:"team,omitempty"`
	Project     string           `json:"project,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	Manager     string           `json:"manager,omitempty"`
	Purpose     string           `json:"purpose,omitempty"`
	Note        string           `json:"note,omitempty"`
	Color       string           `json:"color,omitempty"`
	Rect        *geometry.Rect   `json:"rect,omitempty"`
	Points      []geometry.Point `json:"points,omitempty"`
	StartDate   string           `json:"startDate,omitempty"`
	EndDate     string           `json:"endDate,omitempty"`
	UpdatedAt   int64            `json:"updatedAt"`
	Active      bool             `json:"active"`
}

// DateRange implements daterange.Dated.
func (z Zone) DateRange() (string, string) {
	return z.StartDate, z.EndDate
}

// Label is the text drawn on the zone: project, else team, else name.
func (z Zone) Label() string {
	switch {
	case z.Project != "":
		return z.Project
	case z.Team != "":
		return z.Team
	default:
		return z.Name
	}
}

// DisplayColor returns the zone colour or the default.
func (z Zone) DisplayColor() string {
	if z.Color == "" {
		return DefaultZoneColor
	}
	return z.Color
}

// Geometry returns the stored normalized geometry.
func (z Zone) Geometry() geometry.Normalized {
	return geometry.Normalized{Rect: z.Rect, Points: z.Points}
}

// CalendarItem converts the zone for calendar packing.
func (z Zone) CalendarItem() calendar.Item {
	return calendar.Item{
		ID:    z.ID,
		Label: z.Label(),
		Color: z.DisplayColor(),
		Start: z.StartDate,
		End:   z.EndDate,
	}
}

// ZoneInput represents zone create/update data. A zone needs a rect or a
// polygon, and at least one of name, team or project.
type ZoneInput struct {
	WorkspaceID string           `json:"workspaceId" validate:"required"`
	Name        string           `json:"name" validate:"required_without_all=Team Project,max=100"`
	Team        string           `json:"team,omitempty" validate:"max=100"`
	Project     string           `json:"project,omitempty" validate:"max=100"`
	Brand       string           `json:"brand,omitempty" validate:"omitempty,brand"`
	Manager     string           `json:"manager,omitempty" validate:"max=100"`
	Purpose     string           `json:"purpose,omitempty" validate:"max=500"`
	Note        string           `json:"note,omitempty" validate:"max=1000"`
	Color       string           `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Rect        *geometry.Rect   `json:"rect,omitempty" validate:"required_without=Points"`
	Points      []geometry.Point `json:"points,omitempty" validate:"required_without=Rect"`
	StartDate   string           `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate     string           `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Active      *bool            `json:"active,omitempty"`
}

// ZoneFromInput builds the zone stored for in.
func ZoneFromInput(id string, in ZoneInput, updatedAt int64) Zone {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	z := Zone{
		ID:          id,
		WorkspaceID: in.WorkspaceID,
		Name:        in.Name,
		Team:        in.Team,
		Project:     in.Project,
		Brand:       in.Brand,
		Manager:     in.Manager,
		Purpose:     in.Purpose,
		Note:        in.Note,
		Color:       in.Color,
		Rect:        in.Rect,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		UpdatedAt:   updatedAt,
		Active:      active,
	}
	if z.Rect == nil {
		z.Points = in.Points
	}
	if z.Color == "" {
		z.Color = DefaultZoneColor
	}
	return z
}
