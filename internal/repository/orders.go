package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/rentify/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, offset, limit int) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type orderRepository struct {
	crud[models.Order]
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{crud[models.Order]{db: db}}
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := conn(ctx, r.db).Preload("User").Preload("Car").First(&order, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	var (
		orders []models.Order
		total  int64
	)
	db := conn(ctx, r.db)
	if err := db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").Preload("Car").
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := conn(ctx, r.db).Preload("Car").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updateFields(ctx, id, fields)
}

type ContactRepository interface {
	Create(ctx context.Context, message *models.ContactUs) error
	FindByID(ctx context.Context, id uint) (*models.ContactUs, error)
	List(ctx context.Context, offset, limit int) ([]models.ContactUs, int64, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type contactRepository struct {
	crud[models.ContactUs]
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{crud[models.ContactUs]{db: db}}
}

func (r *contactRepository) FindByID(ctx context.Context, id uint) (*models.ContactUs, error) {
	var message models.ContactUs
	if err := conn(ctx, r.db).Preload("User").First(&message, id).Error; err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

func (r *contactRepository) List(ctx context.Context, offset, limit int) ([]models.ContactUs, int64, error) {
	var (
		messages []models.ContactUs
		total    int64
	)
	db := conn(ctx, r.db)
	if err := db.Model(&models.ContactUs{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").Order("id DESC").Offset(offset).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *contactRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updateFields(ctx, id, fields)
}
