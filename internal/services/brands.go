package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const (
	msgBrandNotFound  = "Brand is not found."
	msgBrandDuplicate = "Brand with this name already exists"
)

type BrandView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BrandService struct {
	brands  repository.BrandRepository
	cache   catalogCache[models.Brand]
	cars    catalogCache[models.Car]
	uploads Uploads
	urls    URLBuilder
	log     logger.ILogger
}

func NewBrandService(brands repository.BrandRepository, store cache.Store, uploads Uploads, urls URLBuilder, log logger.ILogger) *BrandService {
	return &BrandService{
		brands:  brands,
		cache:   newCatalogCache[models.Brand](store, cache.SetBrands, log),
		cars:    newCatalogCache[models.Car](store, cache.SetCars, log),
		uploads: uploads,
		urls:    urls,
		log:     log,
	}
}

func (s *BrandService) view(b *models.Brand) BrandView {
	return BrandView{
		ID:        b.ID,
		Name:      ucFirst(b.Name),
		Logo:      s.urls(b.Logo),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func normalizeBrandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Create stores a brand under its lower-cased name. The uploaded logo is
// removed again if the brand cannot be saved.
func (s *BrandService) Create(ctx context.Context, name, logo string) (*BrandView, error) {
	brand := &models.Brand{Name: normalizeBrandName(name), Logo: logo}

	if err := s.brands.Create(ctx, brand); err != nil {
		s.uploads.Remove(logo)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgBrandDuplicate)
		}
		s.log.Error("create brand failed", logger.Error(err))
		return nil, mapRepoErr(err, msgBrandNotFound)
	}

	s.cache.add(ctx, brand.ID, brand)
	view := s.view(brand)
	return &view, nil
}

func (s *BrandService) FindAll(ctx context.Context, p utils.Pagination) (Page[BrandView], error) {
	brands, total, err := s.cache.page(ctx, p, s.brands.All, func(b *models.Brand) uint { return b.ID })
	if err != nil {
		s.log.Error("list brands failed", logger.Error(err))
		return Page[BrandView]{}, apperrors.Internal(err)
	}

	views := make([]BrandView, 0, len(brands))
	for i := range brands {
		views = append(views, s.view(&brands[i]))
	}
	return newPage(views, total, p), nil
}

func (s *BrandService) FindOne(ctx context.Context, id uint) (*BrandView, error) {
	brand, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	view := s.view(brand)
	return &view, nil
}

func (s *BrandService) find(ctx context.Context, id uint, useCache bool) (*models.Brand, error) {
	if useCache {
		if brand, ok := s.cache.get(ctx, id); ok {
			return brand, nil
		}
	}

	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgBrandNotFound)
	}

	if useCache {
		s.cache.add(ctx, brand.ID, brand)
	}
	return brand, nil
}

// Update renames a brand and optionally swaps its logo. The old logo file
// is deleted only after the row is saved.
func (s *BrandService) Update(ctx context.Context, id uint, name string, logo string) (*BrandView, error) {
	brand, err := s.find(ctx, id, false)
	if err != nil {
		if logo != "" {
			s.uploads.Remove(logo)
		}
		return nil, err
	}

	oldLogo := brand.Logo
	if name != "" {
		brand.Name = normalizeBrandName(name)
	}
	if logo != "" {
		brand.Logo = logo
	}

	if err := s.brands.Save(ctx, brand); err != nil {
		if logo != "" {
			s.uploads.Remove(logo)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgBrandDuplicate)
		}
		s.log.Error("update brand failed", logger.Uint("brand_id", id), logger.Error(err))
		return nil, mapRepoErr(err, msgBrandNotFound)
	}

	if logo != "" && oldLogo != logo {
		s.uploads.Remove(oldLogo)
	}

	s.cache.replace(ctx, brand.ID, brand)
	s.cars.invalidate(ctx)

	view := s.view(brand)
	return &view, nil
}

func (s *BrandService) Remove(ctx context.Context, id uint) error {
	brand, err := s.find(ctx, id, false)
	if err != nil {
		return err
	}

	if err := s.brands.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperrors.Conflict("Brand still has cars assigned")
		}
		s.log.Error("delete brand failed", logger.Uint("brand_id", id), logger.Error(err))
		return mapRepoErr(err, msgBrandNotFound)
	}

	s.uploads.Remove(brand.Logo)
	s.cache.remove(ctx, id)
	return nil
}
