package services

import (
	"context"
	"time"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

// CarRefresher reloads a cached car after a change that affects how it is
// rendered.
type CarRefresher interface {
	Refresh(ctx context.Context, carID uint)
}

type DiscountInput struct {
	CarID      uint
	StartDate  time.Time
	EndDate    time.Time
	Percentage int
}

type DiscountService struct {
	discounts repository.DiscountRepository
	cars      repository.CarRepository
	refresher CarRefresher
	log       logger.ILogger
}

func NewDiscountService(discounts repository.DiscountRepository, cars repository.CarRepository, refresher CarRefresher, log logger.ILogger) *DiscountService {
	return &DiscountService{discounts: discounts, cars: cars, refresher: refresher, log: log}
}

func (s *DiscountService) Create(ctx context.Context, in DiscountInput) (*models.Discount, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, apperrors.BadRequest("End date must be after start date")
	}
	if in.Percentage < 1 || in.Percentage > 99 {
		return nil, apperrors.BadRequest("discount_percentage must be between 1 and 99")
	}
	if _, err := s.cars.FindByID(ctx, in.CarID); err != nil {
		return nil, mapRepoErr(err, "Car Not found.")
	}

	discount := &models.Discount{
		CarID:      in.CarID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Percentage: in.Percentage,
	}
	if err := s.discounts.Create(ctx, discount); err != nil {
		s.log.Error("create discount failed", logger.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.refresher.Refresh(ctx, in.CarID)
	return discount, nil
}

func (s *DiscountService) FindAll(ctx context.Context, p utils.Pagination) (Page[models.Discount], error) {
	discounts, total, err := s.discounts.List(ctx, p.Offset, p.Limit)
	if err != nil {
		s.log.Error("list discounts failed", logger.Error(err))
		return Page[models.Discount]{}, apperrors.Internal(err)
	}
	return newPage(discounts, total, p), nil
}

func (s *DiscountService) Remove(ctx context.Context, id uint) error {
	discount, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, "Discount Not found.")
	}
	if err := s.discounts.Delete(ctx, id); err != nil {
		return mapRepoErr(err, "Discount Not found.")
	}
	s.refresher.Refresh(ctx, discount.CarID)
	return nil
}
