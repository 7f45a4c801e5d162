package services

import (
	"context"
	"errors"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/metrics"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID uint
	Email  string
	Role   string
	Name   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// URLBuilder turns a stored file name into a public URL.
type URLBuilder func(name string) string

// Page is a window of a listing together with its paging metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func newPage[T any](items []T, total int64, p utils.Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}
}

// mapRepoErr converts repository sentinels into HTTP-categorised errors.
func mapRepoErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict("Resource already exists")
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.Conflict("Resource is referenced by other records")
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(err)
}

// catalogCache is the cache-aside view of one sorted set. Cache failures
// are logged and never surface to callers.
type catalogCache[T any] struct {
	store cache.Store
	set   string
	log   logger.ILogger
}

func newCatalogCache[T any](store cache.Store, set string, log logger.ILogger) catalogCache[T] {
	return catalogCache[T]{store: store, set: set, log: log}
}

func (c catalogCache[T]) get(ctx context.Context, id uint) (*T, bool) {
	value, ok, err := cache.Get[T](ctx, c.store, c.set, id)
	if err != nil {
		c.fail("get", err)
		return nil, false
	}
	if ok {
		metrics.CacheHits.WithLabelValues(c.set).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(c.set).Inc()
	}
	return value, ok
}

func (c catalogCache[T]) add(ctx context.Context, id uint, value *T) {
	if err := c.store.Add(ctx, c.set, id, value); err != nil {
		c.fail("add", err)
	}
}

func (c catalogCache[T]) replace(ctx context.Context, id uint, value *T) {
	if err := c.store.Replace(ctx, c.set, id, value); err != nil {
		c.fail("replace", err)
		c.invalidate(ctx)
	}
}

func (c catalogCache[T]) remove(ctx context.Context, id uint) {
	if err := c.store.Remove(ctx, c.set, id); err != nil {
		c.fail("remove", err)
		c.invalidate(ctx)
	}
}

func (c catalogCache[T]) invalidate(ctx context.Context) {
	if err := c.store.Invalidate(ctx, c.set); err != nil {
		c.fail("invalidate", err)
	}
}

// page serves a listing window. A set marked complete answers directly;
// otherwise the whole table is loaded in ID order, cached, and the window is
// cut from it, so both paths agree on ordering.
func (c catalogCache[T]) page(ctx context.Context, p utils.Pagination, loadAll func(context.Context) ([]T, error), idOf func(*T) uint) ([]T, int64, error) {
	complete, err := c.store.IsComplete(ctx, c.set)
	if err != nil {
		c.fail("is_complete", err)
	}

	if complete {
		items, rangeErr := cache.Range[T](ctx, c.store, c.set, int64(p.Offset), int64(p.Offset+p.Limit-1))
		total, countErr := c.store.Count(ctx, c.set)
		if rangeErr == nil && countErr == nil {
			metrics.CacheHits.WithLabelValues(c.set).Inc()
			return items, total, nil
		}
		c.fail("range", errors.Join(rangeErr, countErr))
	}
	metrics.CacheMisses.WithLabelValues(c.set).Inc()

	all, err := loadAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	c.warm(ctx, all, idOf)

	return window(all, p.Offset, p.Limit), int64(len(all)), nil
}

func (c catalogCache[T]) warm(ctx context.Context, all []T, idOf func(*T) uint) {
	if err := c.store.Invalidate(ctx, c.set); err != nil {
		c.fail("invalidate", err)
		return
	}
	for i := range all {
		if err := c.store.Add(ctx, c.set, idOf(&all[i]), &all[i]); err != nil {
			c.fail("warm", err)
			return
		}
	}
	if err := c.store.MarkComplete(ctx, c.set); err != nil {
		c.fail("mark_complete", err)
	}
}

func (c catalogCache[T]) fail(op string, err error) {
	metrics.CacheErrors.WithLabelValues(c.set).Inc()
	c.log.Warning("cache operation failed",
		logger.String("set", c.set),
		logger.String("op", op),
		logger.Error(err),
	)
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
