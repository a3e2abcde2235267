package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/domain"
)

// OverseasService handles admin writes to overseas work items
type OverseasService struct {
	docs    domain.DocumentStore
	objects domain.ObjectStore
	clock   clock.Clock
}

// NewOverseasService creates a new overseas work service
func NewOverseasService(docs domain.DocumentStore, objects domain.ObjectStore, c clock.Clock) *OverseasService {
	if c == nil {
		c = clock.NewSystem()
	}
	return &OverseasService{docs: docs, objects: objects, clock: c}
}

// Create creates an overseas work item
func (s *OverseasService) Create(ctx context.Context, input domain.OverseasInput) (*domain.OverseasWork, error) {
	if err := checkRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	w := domain.OverseasFromInput(uuid.NewString(), input, s.clock.Now().UnixMilli())
	if err := put(ctx, s.docs, domain.OverseasCollection, w.ID, w); err != nil {
		return nil, fmt.Errorf("failed to create overseas work: %w", err)
	}
	return &w, nil
}

// Update replaces an overseas work item. Attachments dropped by the update
// are removed from the object store.
func (s *OverseasService) Update(ctx context.Context, id string, input domain.OverseasInput) (*domain.OverseasWork, error) {
	if err := checkRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	old, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	w := domain.OverseasFromInput(id, input, s.clock.Now().UnixMilli())
	if err := put(ctx, s.docs, domain.OverseasCollection, w.ID, w); err != nil {
		return nil, fmt.Errorf("failed to update overseas work: %w", err)
	}

	kept := make(map[string]bool, len(w.Attachments))
	for _, a := range w.Attachments {
		kept[a.URL] = true
	}
	for _, a := range old.Attachments {
		if !kept[a.URL] {
			s.deleteObject(ctx, a.URL)
		}
	}
	return &w, nil
}

// Delete removes an overseas work item and its attachments
func (s *OverseasService) Delete(ctx context.Context, id string) error {
	w, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, domain.OverseasCollection, id); err != nil {
		return fmt.Errorf("failed to delete overseas work: %w", err)
	}
	for _, a := range w.Attachments {
		s.deleteObject(ctx, a.URL)
	}
	return nil
}

// AddAttachment uploads a file and links it to the work item
func (s *OverseasService) AddAttachment(ctx context.Context, id, filename, contentType string, r io.Reader) (*domain.OverseasWork, error) {
	w, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.ErrNameRequired
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := domain.AttachmentKey(w.ID, uuid.NewString(), filename)
	info, err := s.objects.Put(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	w.Attachments = append(w.Attachments, domain.Attachment{Name: filename, URL: info.URL})
	w.UpdatedAt = s.clock.Now().UnixMilli()
	if err := put(ctx, s.docs, domain.OverseasCollection, w.ID, w); err != nil {
		_ = s.objects.Delete(ctx, key)
		return nil, fmt.Errorf("failed to update overseas work: %w", err)
	}
	return &w, nil
}

func (s *OverseasService) get(ctx context.Context, id string) (domain.OverseasWork, error) {
	return get(ctx, s.docs, domain.OverseasCollection, id, domain.ErrOverseasNotFound, domain.DecodeOverseas)
}

// deleteObject removes an attachment we stored. Links to outside URLs are
// left alone.
func (s *OverseasService) deleteObject(ctx context.Context, url string) {
	key, ok := domain.ObjectKeyFromURL(url)
	if !ok {
		return
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete attachment")
	}
}
