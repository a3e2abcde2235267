package domain

import "github.com/Rrens/floorboard/internal/calendar"

// WorkType distinguishes on-site jobs at home and abroad
type WorkType string

const (
	WorkTypeDomestic WorkType = "domestic"
	WorkTypeOverseas WorkType = "overseas"
)

// Attachment is a file linked to an overseas work item
type Attachment struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// OverseasWork is an off-site installation job. It shares the date filter and
// calendar packing with zones but is otherwise independent of them.
type OverseasWork struct {
	ID          string       `json:"id" validate:"required"`
	Project     string       `json:"project"`
	Brand       string       `json:"brand,omitempty"`
	Location    string       `json:"location,omitempty"`
	Manager     string       `json:"manager,omitempty"`
	Content     string       `json:"content,omitempty"`
	WorkType    WorkType     `json:"workType,omitempty"`
	StartDate   string       `json:"startDate,omitempty"`
	EndDate     string       `json:"endDate,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty" validate:"dive"`
	UpdatedAt   int64        `json:"updatedAt"`
}

// DateRange implements daterange.Dated.
func (w OverseasWork) DateRange() (string, string) {
	return w.StartDate, w.EndDate
}

// CalendarItem converts the work item for calendar packing, coloured by brand.
func (w OverseasWork) CalendarItem() calendar.Item {
	return calendar.Item{
		ID:    w.ID,
		Label: w.Project,
		Color: LookupBrand(w.Brand).Color,
		Start: w.StartDate,
		End:   w.EndDate,
	}
}

// OverseasInput represents overseas work create/update data
type OverseasInput struct {
	Project     string       `json:"project" validate:"required,max=200"`
	Brand       string       `json:"brand,omitempty" validate:"omitempty,brand"`
	Location    string       `json:"location,omitempty" validate:"max=200"`
	Manager     string       `json:"manager,omitempty" validate:"max=100"`
	Content     string       `json:"content,omitempty" validate:"max=2000"`
	WorkType    WorkType     `json:"workType" validate:"required,oneof=domestic overseas"`
	StartDate   string       `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate     string       `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Attachments []Attachment `json:"attachments,omitempty" validate:"dive"`
}

// OverseasFromInput builds the work item stored for in.
func OverseasFromInput(id string, in OverseasInput, updatedAt int64) OverseasWork {
	return OverseasWork{
		ID:          id,
		Project:     in.Project,
		Brand:       in.Brand,
		Location:    in.Location,
		Manager:     in.Manager,
		Content:     in.Content,
		WorkType:    in.WorkType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Attachments: in.Attachments,
		UpdatedAt:   updatedAt,
	}
}
