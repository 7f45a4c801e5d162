// Package repository holds the GORM-backed persistence for every resource.
// Services depend on the narrow interfaces declared next to each
// implementation so they can be exercised with in-memory fakes.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTransaction runs fn inside one database transaction. Repositories
// called with the derived context join it.
func (tm *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case foreignKeyViolation:
			return ErrReferenced
		}
	}
	return err
}

// crud implements the operations shared by simple catalog tables.
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) Create(ctx context.Context, entity *T) error {
	return translate(conn(ctx, r.db).Create(entity).Error)
}

func (r crud[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := conn(ctx, r.db).First(&entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r crud[T]) List(ctx context.Context, offset, limit int) ([]T, int64, error) {
	var (
		items []T
		total int64
	)
	db := conn(ctx, r.db)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r crud[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	if err := conn(ctx, r.db).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r crud[T]) Save(ctx context.Context, entity *T) error {
	return translate(conn(ctx, r.db).Save(entity).Error)
}

func (r crud[T]) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r crud[T]) updateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := conn(ctx, r.db).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
