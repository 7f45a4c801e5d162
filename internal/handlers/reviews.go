package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	CarID      uint    `json:"car_id" validate:"required,gt=0"`
	ReviewRate *int    `json:"review_rate" validate:"required,min=1,max=5"`
	ReviewText *string `json:"review_text" validate:"omitempty,max=900"`
}

type updateReviewRequest struct {
	ReviewRate *int    `json:"review_rate" validate:"omitempty,min=1,max=5"`
	ReviewText *string `json:"review_text" validate:"omitempty,max=900"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req createReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	actor, _ := middleware.CurrentActor(c)
	review, err := h.reviews.Create(c.UserContext(), actor, services.ReviewInput{
		CarID:      req.CarID,
		ReviewRate: req.ReviewRate,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		return err
	}
	return middleware.Created(c, "Review added successfully.", review)
}

func (h *ReviewHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.reviews.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Review retrieved successfully.", review)
}

// CarRating serves GET /?car_id=.
func (h *ReviewHandler) CarRating(c *fiber.Ctx) error {
	carID, err := queryID(c, "car_id")
	if err != nil {
		return err
	}
	rating, err := h.reviews.CarRating(c.UserContext(), carID)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Rating retrieved successfully.", rating)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	actor, _ := middleware.CurrentActor(c)
	review, err := h.reviews.Update(c.UserContext(), actor, id, services.ReviewInput{
		ReviewRate: req.ReviewRate,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		return err
	}
	return middleware.OK(c, "Review updated successfully.", review)
}

func (h *ReviewHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Review removed successfully.", nil)
}
