// Package handler implements the HTTP endpoints of the dashboard API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/api/response"
	"github.com/Rrens/floorboard/internal/daterange"
	"github.com/Rrens/floorboard/internal/domain"
)

var validate = domain.NewValidator()

// decodeJSON reads and validates a request body into v. It writes the error
// response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	return validateInput(w, v)
}

func validateInput(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		response.BadRequest(w, err.Error())
		return false
	}

	fields := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required", "required_without", "required_without_all":
			fields[field] = "field is required"
		case "email":
			fields[field] = "invalid email format"
		case "isodate":
			fields[field] = "must be a date in YYYY-MM-DD form"
		case "brand":
			fields[field] = "unknown brand"
		case "hexcolor":
			fields[field] = "must be a hex color"
		case "min":
			fields[field] = "must be at least " + e.Param() + " characters"
		case "max":
			fields[field] = "must be at most " + e.Param() + " characters"
		case "oneof":
			fields[field] = "must be one of: " + e.Param()
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	response.BadRequest(w, fields)
	return false
}

// writeError maps service errors to status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound),
		errors.Is(err, domain.ErrZoneNotFound),
		errors.Is(err, domain.ErrOverseasNotFound),
		errors.Is(err, domain.ErrViewNotFound),
		errors.Is(err, domain.ErrObjectNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrPlanRequired),
		errors.Is(err, domain.ErrUnsupportedFile),
		errors.Is(err, domain.ErrNameRequired):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrMalformedDocument):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
		response.InternalError(w)
	}
}

// parseQuery reads the start/end filter. A request naming neither parameter
// gets the dashboard default; empty values mean an open bound.
func parseQuery(r *http.Request, fallback func() daterange.Query) (daterange.Query, error) {
	params := r.URL.Query()
	if !params.Has("start") && !params.Has("end") {
		return fallback(), nil
	}
	return daterange.ParseQuery(params.Get("start"), params.Get("end"))
}
