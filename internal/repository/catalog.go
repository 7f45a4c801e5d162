package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/rentify/internal/models"
)

type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	FindByID(ctx context.Context, id uint) (*models.Brand, error)
	List(ctx context.Context, offset, limit int) ([]models.Brand, int64, error)
	All(ctx context.Context) ([]models.Brand, error)
	Save(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id uint) error
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return crud[models.Brand]{db: db}
}

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context, offset, limit int) ([]models.Location, int64, error)
	All(ctx context.Context) ([]models.Location, error)
	Save(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id uint) error
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return crud[models.Location]{db: db}
}

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	FindByID(ctx context.Context, id uint) (*models.Car, error)
	FindDetails(ctx context.Context, id uint) (*models.Car, error)
	List(ctx context.Context, offset, limit int, availableOnly bool) ([]models.Car, int64, error)
	All(ctx context.Context) ([]models.Car, error)
	Save(ctx context.Context, car *models.Car) error
	LockAvailable(ctx context.Context, id uint) (*models.Car, error)
	MarkUnavailable(ctx context.Context, id uint) (bool, error)
	MarkAvailable(ctx context.Context, id uint) error
	AddImages(ctx context.Context, carID uint, paths []string) ([]models.CarImage, error)
	UpsertPolicy(ctx context.Context, carID uint, text string) (*models.CarPolicy, error)
}

type carRepository struct {
	crud[models.Car]
}

func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{crud[models.Car]{db: db}}
}

func (r *carRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Brand").
		Preload("PickupLocation").
		Preload("DropoffLocation").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Policy").
		Preload("Discounts", "end_date > ?", time.Now())
}

func (r *carRepository) FindDetails(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := r.withRelations(conn(ctx, r.db)).First(&car, id).Error; err != nil {
		return nil, translate(err)
	}
	return &car, nil
}

func (r *carRepository) List(ctx context.Context, offset, limit int, availableOnly bool) ([]models.Car, int64, error) {
	var (
		cars  []models.Car
		total int64
	)
	query := conn(ctx, r.db).Model(&models.Car{})
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.withRelations(query).Order("id ASC").Offset(offset).Limit(limit).Find(&cars).Error
	if err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

func (r *carRepository) All(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	if err := r.withRelations(conn(ctx, r.db)).Order("id ASC").Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) Save(ctx context.Context, car *models.Car) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Save(car).Error)
}

// LockAvailable reads the car row with a row lock, failing with ErrNotFound
// when it is missing or already rented.
func (r *carRepository) LockAvailable(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_available = ?", id, true).
		First(&car).Error
	if err != nil {
		return nil, translate(err)
	}
	return &car, nil
}

func (r *carRepository) MarkUnavailable(ctx context.Context, id uint) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Car{}).
		Where("id = ? AND is_available = ?", id, true).
		Update("is_available", false)
	return res.RowsAffected == 1, res.Error
}

// MarkAvailable frees the car for new orders. Withdrawn cars stay off rental.
func (r *carRepository) MarkAvailable(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Model(&models.Car{}).
		Where("id = ? AND withdrawn = ?", id, false).
		Update("is_available", true).Error
}

func (r *carRepository) AddImages(ctx context.Context, carID uint, paths []string) ([]models.CarImage, error) {
	images := make([]models.CarImage, 0, len(paths))
	for _, path := range paths {
		images = append(images, models.CarImage{CarID: carID, ImagePath: path})
	}
	if len(images) == 0 {
		return images, nil
	}
	if err := conn(ctx, r.db).Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *carRepository) UpsertPolicy(ctx context.Context, carID uint, text string) (*models.CarPolicy, error) {
	policy := models.CarPolicy{CarID: carID, PoliciesText: text}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "car_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"policies_text", "updated_at"}),
	}).Create(&policy).Error
	if err != nil {
		return nil, translate(err)
	}
	return &policy, nil
}
