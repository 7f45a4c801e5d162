package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
)

const msgReviewNotFound = "Review not found"

type ReviewInput struct {
	CarID      uint
	ReviewRate *int
	ReviewText *string
}

type Reviewer struct {
	FullName string `json:"full_name"`
	Image    string `json:"image"`
}

type ReviewView struct {
	ID         uint      `json:"id"`
	CarID      uint      `json:"car_id"`
	ReviewRate int       `json:"review_rate"`
	ReviewText string    `json:"review_text"`
	User       *Reviewer `json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CarRating struct {
	CarID        uint    `json:"car_id"`
	AverageRate  float64 `json:"avg_rate"`
	ReviewsCount int64   `json:"reviews_count"`
}

type ReviewService struct {
	reviews repository.ReviewRepository
	cars    repository.CarRepository
	ratings *sturdyc.Client[CarRating]
	urls    URLBuilder
	log     logger.ILogger
}

func NewReviewService(reviews repository.ReviewRepository, cars repository.CarRepository, urls URLBuilder, log logger.ILogger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		cars:    cars,
		ratings: sturdyc.New[CarRating](10000, 16, 10*time.Minute, 10),
		urls:    urls,
		log:     log,
	}
}

func ratingKey(carID uint) string {
	return "rating:" + strconv.FormatUint(uint64(carID), 10)
}

func (s *ReviewService) view(r *models.CarReview) ReviewView {
	view := ReviewView{
		ID:         r.ID,
		CarID:      r.CarID,
		ReviewRate: r.ReviewRate,
		ReviewText: r.ReviewText,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.User != nil {
		view.User = &Reviewer{FullName: r.User.FullName, Image: s.urls(r.User.Image)}
	}
	return view
}

func (s *ReviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*ReviewView, error) {
	if _, err := s.cars.FindByID(ctx, in.CarID); err != nil {
		return nil, mapRepoErr(err, "Car not found")
	}

	review := &models.CarReview{CarID: in.CarID, UserID: actor.UserID}
	if in.ReviewRate != nil {
		review.ReviewRate = *in.ReviewRate
	}
	if in.ReviewText != nil {
		review.ReviewText = *in.ReviewText
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		s.log.Error("create review failed", logger.Error(err))
		return nil, mapRepoErr(err, msgReviewNotFound)
	}

	s.ratings.Delete(ratingKey(in.CarID))
	view := s.view(review)
	return &view, nil
}

func (s *ReviewService) FindOne(ctx context.Context, id uint) (*ReviewView, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgReviewNotFound)
	}
	view := s.view(review)
	return &view, nil
}

// CarRating returns the average review rate of a car, memoised in process
// until the next review write for that car.
func (s *ReviewService) CarRating(ctx context.Context, carID uint) (*CarRating, error) {
	rating, err := s.ratings.GetOrFetch(ctx, ratingKey(carID), func(ctx context.Context) (CarRating, error) {
		avg, count, err := s.reviews.AverageRate(ctx, carID)
		if err != nil {
			return CarRating{}, err
		}
		return CarRating{
			CarID:        carID,
			AverageRate:  math.Round(avg*100) / 100,
			ReviewsCount: count,
		}, nil
	})
	if err != nil {
		s.log.Error("car rating failed", logger.Uint("car_id", carID), logger.Error(err))
		return nil, apperrors.Internal(err)
	}
	return &rating, nil
}

// Update changes the caller's own review.
func (s *ReviewService) Update(ctx context.Context, actor Actor, id uint, in ReviewInput) (*ReviewView, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgReviewNotFound)
	}
	if review.UserID != actor.UserID {
		return nil, apperrors.Forbidden("You are not allowed to update this review.")
	}

	if in.ReviewRate != nil {
		review.ReviewRate = *in.ReviewRate
	}
	if in.ReviewText != nil {
		review.ReviewText = *in.ReviewText
	}

	if err := s.reviews.Save(ctx, review); err != nil {
		s.log.Error("update review failed", logger.Uint("review_id", id), logger.Error(err))
		return nil, mapRepoErr(err, msgReviewNotFound)
	}

	s.ratings.Delete(ratingKey(review.CarID))
	view := s.view(review)
	return &view, nil
}

func (s *ReviewService) Remove(ctx context.Context, id uint) error {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, msgReviewNotFound)
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return mapRepoErr(err, msgReviewNotFound)
	}
	s.ratings.Delete(ratingKey(review.CarID))
	return nil
}
