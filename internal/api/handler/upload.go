package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Rrens/floorboard/internal/api/response"
)

const defaultMaxUpload = 20 << 20

// upload is one file read from a multipart request
type upload struct {
	file        multipart.File
	filename    string
	contentType string
	size        int64
}

// parseUpload limits the request to maxBytes and parses its multipart form.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return false
		}
		response.BadRequest(w, "invalid multipart form")
		return false
	}
	return true
}

// formFile opens the named file of a parsed form. A missing file yields
// (nil, nil) so services can report their own required-file error.
func formFile(r *http.Request, field string) (*upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			contentType = byExt
		}
	}

	return &upload{
		file:        file,
		filename:    filepath.Base(header.Filename),
		contentType: contentType,
		size:        header.Size,
	}, nil
}
