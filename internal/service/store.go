package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/floorboard/internal/domain"
)

func put(ctx context.Context, docs domain.DocumentStore, collection, id string, v any) error {
	doc, err := domain.NewDocument(id, v)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return docs.Put(ctx, collection, doc)
}

// get reads and decodes one document, mapping a missing one to notFound.
func get[T any](ctx context.Context, docs domain.DocumentStore, collection, id string, notFound error, decode func(domain.Document) (T, error)) (T, error) {
	var zero T
	if id == "" {
		return zero, notFound
	}
	doc, err := docs.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, notFound
		}
		return zero, fmt.Errorf("failed to get %s: %w", collection, err)
	}
	v, err := decode(*doc)
	if err != nil {
		return zero, err
	}
	return v, nil
}
