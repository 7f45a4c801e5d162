package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/rentify/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type userRepository struct {
	crud[models.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{crud[models.User]{db: db}}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := conn(ctx, r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updateFields(ctx, id, fields)
}

type BlacklistRepository interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type blacklistRepository struct {
	db *gorm.DB
}

func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

func (r *blacklistRepository) Add(ctx context.Context, token string, expiresAt time.Time) error {
	entry := models.TokenBlacklist{Token: token, ExpiresAt: expiresAt}
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}

func (r *blacklistRepository) Exists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.TokenBlacklist{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

func (r *blacklistRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := conn(ctx, r.db).Where("expires_at < ?", now).Delete(&models.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
