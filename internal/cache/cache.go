// Package cache keeps serialized entities in per-resource sorted sets
// scored by entity ID.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	SetBrands    = "brands"
	SetCars      = "cars"
	SetLocations = "locations"
)

// Store is the sorted-set cache used by the catalog services. Members are
// JSON documents, scores are entity IDs.
type Store interface {
	Add(ctx context.Context, set string, id uint, value any) error
	Get(ctx context.Context, set string, id uint) ([]byte, bool, error)
	Replace(ctx context.Context, set string, id uint, value any) error
	Remove(ctx context.Context, set string, id uint) error
	Range(ctx context.Context, set string, start, stop int64) ([][]byte, error)
	Count(ctx context.Context, set string) (int64, error)
	MarkComplete(ctx context.Context, set string) error
	IsComplete(ctx context.Context, set string) (bool, error)
	Invalidate(ctx context.Context, set string) error
}

// Get decodes the member scored id into a T.
func Get[T any](ctx context.Context, store Store, set string, id uint) (*T, bool, error) {
	raw, ok, err := store.Get(ctx, set, id)
	if err != nil || !ok {
		return nil, false, err
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, fmt.Errorf("decode %s:%d: %w", set, id, err)
	}
	return &value, true, nil
}

// Range decodes members between ranks start and stop inclusive.
func Range[T any](ctx context.Context, store Store, set string, start, stop int64) ([]T, error) {
	raws, err := store.Range(ctx, set, start, stop)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raws))
	for _, raw := range raws {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode %s member: %w", set, err)
		}
		items = append(items, value)
	}
	return items, nil
}

func completeKey(set string) string {
	return set + ":complete"
}
