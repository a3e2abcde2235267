package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/domain"
)

func TestOverseasService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.overseas.Create(ctx, domain.OverseasInput{Project: "X", WorkType: domain.WorkTypeDomestic, StartDate: "2024-03-02", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	w, err := f.overseas.Create(ctx, domain.OverseasInput{Project: "Seoul popup", WorkType: domain.WorkTypeDomestic})
	require.NoError(t, err)

	w, err = f.overseas.AddAttachment(ctx, w.ID, "layout.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.Len(t, w.Attachments, 1)
	assert.Equal(t, "layout.pdf", w.Attachments[0].Name)
	require.Len(t, f.objects.Keys(), 1)

	// Dropping the attachment on update removes the stored file; outside
	// links are kept as plain references.
	input := domain.OverseasInput{
		Project:     "Seoul popup",
		WorkType:    domain.WorkTypeDomestic,
		Attachments: []domain.Attachment{{Name: "drive", URL: "https://example.com/doc"}},
	}
	w, err = f.overseas.Update(ctx, w.ID, input)
	require.NoError(t, err)
	assert.Empty(t, f.objects.Keys())

	_, err = f.overseas.AddAttachment(ctx, w.ID, "photo.png", "", strings.NewReader("png"))
	require.NoError(t, err)
	require.NoError(t, f.overseas.Delete(ctx, w.ID))
	assert.Empty(t, f.objects.Keys())
	assert.Empty(t, f.adapter.Snapshot().Overseas)

	assert.ErrorIs(t, f.overseas.Delete(ctx, w.ID), domain.ErrOverseasNotFound)
	_, err = f.overseas.AddAttachment(ctx, "missing", "a.txt", "text/plain", strings.NewReader("a"))
	assert.ErrorIs(t, err, domain.ErrOverseasNotFound)
}
