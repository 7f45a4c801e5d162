package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/rentify/internal/models"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.CarReview) error
	FindByID(ctx context.Context, id uint) (*models.CarReview, error)
	Save(ctx context.Context, review *models.CarReview) error
	Delete(ctx context.Context, id uint) error
	AverageRate(ctx context.Context, carID uint) (float64, int64, error)
}

type reviewRepository struct {
	crud[models.CarReview]
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{crud[models.CarReview]{db: db}}
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*models.CarReview, error) {
	var review models.CarReview
	if err := conn(ctx, r.db).Preload("User").First(&review, id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.CarReview) error {
	return translate(conn(ctx, r.db).Omit("User").Save(review).Error)
}

func (r *reviewRepository) AverageRate(ctx context.Context, carID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := conn(ctx, r.db).Model(&models.CarReview{}).
		Select("COALESCE(AVG(review_rate), 0) AS average, COUNT(*) AS total").
		Where("car_id = ?", carID).
		Scan(&row).Error
	return row.Average, row.Total, err
}

type DiscountRepository interface {
	Create(ctx context.Context, discount *models.Discount) error
	FindByID(ctx context.Context, id uint) (*models.Discount, error)
	List(ctx context.Context, offset, limit int) ([]models.Discount, int64, error)
	Delete(ctx context.Context, id uint) error
	ActivePercentage(ctx context.Context, carID uint, now time.Time) (int, error)
}

type discountRepository struct {
	crud[models.Discount]
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{crud[models.Discount]{db: db}}
}

// ActivePercentage returns the highest percentage among the car's unexpired
// discounts, or zero.
func (r *discountRepository) ActivePercentage(ctx context.Context, carID uint, now time.Time) (int, error) {
	var pct int
	err := conn(ctx, r.db).Model(&models.Discount{}).
		Select("COALESCE(MAX(percentage), 0)").
		Where("car_id = ? AND end_date > ?", carID, now).
		Scan(&pct).Error
	return pct, err
}
