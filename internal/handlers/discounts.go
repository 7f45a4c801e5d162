package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type DiscountHandler struct {
	discounts *services.DiscountService
}

func NewDiscountHandler(discounts *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

type createDiscountRequest struct {
	CarID      uint   `json:"car_id" validate:"required,gt=0"`
	StartDate  string `json:"start_date" validate:"required,date"`
	EndDate    string `json:"end_date" validate:"required,date"`
	Percentage int    `json:"discount_percentage" validate:"required,min=1,max=99"`
}

func (h *DiscountHandler) Create(c *fiber.Ctx) error {
	var req createDiscountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	start, _ := parseDate(req.StartDate)
	end, _ := parseDate(req.EndDate)

	discount, err := h.discounts.Create(c.UserContext(), services.DiscountInput{
		CarID:      req.CarID,
		StartDate:  start,
		EndDate:    end,
		Percentage: req.Percentage,
	})
	if err != nil {
		return err
	}
	return middleware.Created(c, "Discount added successfully.", discount)
}

func (h *DiscountHandler) FindAll(c *fiber.Ctx) error {
	page, err := h.discounts.FindAll(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Discounts retrieved successfully.", page)
}

func (h *DiscountHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.discounts.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Discount removed successfully.", nil)
}
