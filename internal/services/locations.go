package services

import (
	"context"
	"errors"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const msgLocationNotFound = "Location is not found."

// LocationInput is a full or partial location payload. Nil fields are left
// untouched on update.
type LocationInput struct {
	Address      *string
	Coordinates  *models.Coordinates
	LocationType *models.LocationType
}

type LocationService struct {
	locations repository.LocationRepository
	cache     catalogCache[models.Location]
	cars      catalogCache[models.Car]
	log       logger.ILogger
}

func NewLocationService(locations repository.LocationRepository, store cache.Store, log logger.ILogger) *LocationService {
	return &LocationService{
		locations: locations,
		cache:     newCatalogCache[models.Location](store, cache.SetLocations, log),
		cars:      newCatalogCache[models.Car](store, cache.SetCars, log),
		log:       log,
	}
}

func (s *LocationService) Create(ctx context.Context, in LocationInput) (*models.Location, error) {
	location := &models.Location{}
	applyLocation(location, in)

	if err := s.locations.Create(ctx, location); err != nil {
		s.log.Error("create location failed", logger.Error(err))
		return nil, mapRepoErr(err, msgLocationNotFound)
	}

	s.cache.add(ctx, location.ID, location)
	return location, nil
}

func (s *LocationService) FindAll(ctx context.Context, p utils.Pagination) (Page[models.Location], error) {
	locations, total, err := s.cache.page(ctx, p, s.locations.All, func(l *models.Location) uint { return l.ID })
	if err != nil {
		s.log.Error("list locations failed", logger.Error(err))
		return Page[models.Location]{}, apperrors.Internal(err)
	}
	return newPage(locations, total, p), nil
}

func (s *LocationService) FindOne(ctx context.Context, id uint) (*models.Location, error) {
	return s.find(ctx, id, true)
}

func (s *LocationService) find(ctx context.Context, id uint, useCache bool) (*models.Location, error) {
	if useCache {
		if location, ok := s.cache.get(ctx, id); ok {
			return location, nil
		}
	}

	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgLocationNotFound)
	}

	if useCache {
		s.cache.add(ctx, location.ID, location)
	}
	return location, nil
}

func (s *LocationService) Update(ctx context.Context, id uint, in LocationInput) (*models.Location, error) {
	location, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}

	applyLocation(location, in)
	if err := s.locations.Save(ctx, location); err != nil {
		s.log.Error("update location failed", logger.Uint("location_id", id), logger.Error(err))
		return nil, mapRepoErr(err, msgLocationNotFound)
	}

	s.cache.replace(ctx, location.ID, location)
	s.cars.invalidate(ctx)
	return location, nil
}

func (s *LocationService) Remove(ctx context.Context, id uint) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperrors.Conflict("Location is still used by cars")
		}
		return mapRepoErr(err, msgLocationNotFound)
	}
	s.cache.remove(ctx, id)
	return nil
}

func applyLocation(location *models.Location, in LocationInput) {
	if in.Address != nil {
		location.Address = *in.Address
	}
	if in.Coordinates != nil {
		location.Coordinates = *in.Coordinates
	}
	if in.LocationType != nil {
		location.LocationType = *in.LocationType
	}
}
