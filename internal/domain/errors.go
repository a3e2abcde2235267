package domain

import "errors"

// Domain errors returned by services and mapped to HTTP status codes by
// handlers.
var (
	ErrNotFound           = errors.New("not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrZoneNotFound       = errors.New("zone not found")
	ErrOverseasNotFound   = errors.New("overseas work not found")
	ErrViewNotFound       = errors.New("view not found")
	ErrObjectNotFound     = errors.New("object not found")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDateRange   = errors.New("end date before start date")
	ErrPlanRequired       = errors.New("floor plan image is required")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin access required")
	ErrMalformedDocument  = errors.New("malformed document")
	ErrNameRequired       = errors.New("name is required")
)
