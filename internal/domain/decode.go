package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Rrens/floorboard/internal/daterange"
)

var validate = NewValidator()

// NewValidator returns a validator with the domain rules registered:
// isodate (YYYY-MM-DD) and brand (a code of the brand table). Field names in
// errors follow the JSON tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return daterange.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("brand", func(fl validator.FieldLevel) bool {
		return IsBrand(fl.Field().String())
	})
	return v
}

// Validate checks v against its struct tags.
func Validate(v any) error {
	return validate.Struct(v)
}

// DecodeCategory turns a stored document into a Category.
func DecodeCategory(doc Document) (Category, error) {
	var c Category
	if err := decode(doc, &c, &c.ID); err != nil {
		return Category{}, err
	}
	return c, nil
}

// DecodeWorkspace turns a stored document into a Workspace.
func DecodeWorkspace(doc Document) (Workspace, error) {
	var w Workspace
	if err := decode(doc, &w, &w.ID); err != nil {
		return Workspace{}, err
	}
	return w, nil
}

// DecodeZone turns a stored document into a Zone. Dates are kept as stored;
// malformed ones are excluded later by the date filter.
func DecodeZone(doc Document) (Zone, error) {
	var z Zone
	if err := decode(doc, &z, &z.ID); err != nil {
		return Zone{}, err
	}
	return z, nil
}

// DecodeOverseas turns a stored document into an OverseasWork.
func DecodeOverseas(doc Document) (OverseasWork, error) {
	var w OverseasWork
	if err := decode(doc, &w, &w.ID); err != nil {
		return OverseasWork{}, err
	}
	return w, nil
}

// DecodeSidebar turns the settings document into a SidebarSetting.
func DecodeSidebar(doc Document) (SidebarSetting, error) {
	var s SidebarSetting
	if err := json.Unmarshal(doc.Data, &s); err != nil {
		return SidebarSetting{}, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc.ID, err)
	}
	return s, nil
}

func decode(doc Document, v any, id *string) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc.ID, err)
	}
	*id = doc.ID
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc.ID, err)
	}
	return nil
}
