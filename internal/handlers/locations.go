package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type LocationHandler struct {
	locations *services.LocationService
}

func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type coordinatesRequest struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Long float64 `json:"long" validate:"gte=-180,lte=180"`
}

type createLocationRequest struct {
	Address      string              `json:"address" validate:"required,max=255"`
	Coordinates  *coordinatesRequest `json:"coordinates" validate:"required"`
	LocationType string              `json:"location_type" validate:"required,oneof=pickup drop_off"`
}

type updateLocationRequest struct {
	Address      *string             `json:"address" validate:"omitempty,min=1,max=255"`
	Coordinates  *coordinatesRequest `json:"coordinates" validate:"omitempty"`
	LocationType *string             `json:"location_type" validate:"omitempty,oneof=pickup drop_off"`
}

func locationInput(address *string, coords *coordinatesRequest, kind *string) services.LocationInput {
	in := services.LocationInput{Address: address}
	if coords != nil {
		in.Coordinates = &models.Coordinates{Lat: coords.Lat, Long: coords.Long}
	}
	if kind != nil {
		t := models.LocationType(*kind)
		in.LocationType = &t
	}
	return in
}

func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req createLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	location, err := h.locations.Create(c.UserContext(), locationInput(&req.Address, req.Coordinates, &req.LocationType))
	if err != nil {
		return err
	}
	return middleware.Created(c, "Location added successfully.", location)
}

func (h *LocationHandler) FindAll(c *fiber.Ctx) error {
	page, err := h.locations.FindAll(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Locations retrieved successfully.", page)
}

func (h *LocationHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	location, err := h.locations.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Location retrieved successfully.", location)
}

func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	location, err := h.locations.Update(c.UserContext(), id, locationInput(req.Address, req.Coordinates, req.LocationType))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Location updated successfully.", location)
}

func (h *LocationHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.locations.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Location removed successfully.", nil)
}
