package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type BrandHandler struct {
	brands  *services.BrandService
	uploads services.Uploads
}

func NewBrandHandler(brands *services.BrandService, uploads services.Uploads) *BrandHandler {
	return &BrandHandler{brands: brands, uploads: uploads}
}

type createBrandRequest struct {
	Name string `form:"brand_name" json:"brand_name" validate:"required,max=200,alphaspace"`
}

// Create expects a multipart form with the brand name and a brand_logo file.
func (h *BrandHandler) Create(c *fiber.Ctx) error {
	var req createBrandRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	logo, err := formImage(c, h.uploads, "brand_logo", true)
	if err != nil {
		return err
	}

	brand, err := h.brands.Create(c.UserContext(), req.Name, logo)
	if err != nil {
		return err
	}
	return middleware.Created(c, "Brand added successfully.", brand)
}

func (h *BrandHandler) FindAll(c *fiber.Ctx) error {
	page, err := h.brands.FindAll(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Brands retrieved successfully.", page)
}

func (h *BrandHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	brand, err := h.brands.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Brand retrieved successfully.", brand)
}

type updateBrandRequest struct {
	BrandID uint   `form:"brand_id" json:"brand_id" validate:"required,gt=0"`
	Name    string `form:"brand_name" json:"brand_name" validate:"omitempty,max=200,alphaspace"`
}

// Update takes the brand id from the body; a new brand_logo file is optional.
func (h *BrandHandler) Update(c *fiber.Ctx) error {
	var req updateBrandRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	logo, err := formImage(c, h.uploads, "brand_logo", false)
	if err != nil {
		return err
	}

	brand, err := h.brands.Update(c.UserContext(), req.BrandID, req.Name, logo)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Brand updated successfully.", brand)
}

func (h *BrandHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.brands.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Brand removed successfully.", nil)
}
