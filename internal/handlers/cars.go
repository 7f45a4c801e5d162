package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type CarHandler struct {
	cars    *services.CarService
	uploads services.Uploads
}

func NewCarHandler(cars *services.CarService, uploads services.Uploads) *CarHandler {
	return &CarHandler{cars: cars, uploads: uploads}
}

// Field order matches services.CarInput so requests convert directly.
type createCarRequest struct {
	BrandID             *uint                `json:"brand_id" validate:"required,gt=0"`
	Name                *string              `json:"car_name" validate:"required,min=1,max=255"`
	RentalPrice         *decimal.Decimal     `json:"rental_price" validate:"required"`
	MinimumRentalPeriod *int                 `json:"minimum_rental_period" validate:"required,min=1,max=365"`
	PickupLocationID    *uint                `json:"pickup_location_id" validate:"required,gt=0"`
	DropoffLocationID   *uint                `json:"dropoff_location_id" validate:"required,gt=0"`
	Transmission        *models.Transmission `json:"transmission" validate:"required,oneof=automatic manual"`
	NumberOfSeats       *int                 `json:"number_of_seats" validate:"required,min=1,max=50"`
	IsAvailable         *bool                `json:"is_available"`
	EngineSize          *int                 `json:"engine_size" validate:"required,min=1,max=1000"`
	MaxSpeed            *int                 `json:"max_speed" validate:"required,min=10"`
	DieselCapacity      *int                 `json:"diesel_capacity" validate:"required,min=1,max=200"`
	BodyType            *string              `json:"body_type" validate:"required,min=1,max=255"`
	Year                *int                 `json:"year" validate:"required,min=1900,notfutureyear"`
	FuelType            *models.FuelType     `json:"fuel_type" validate:"required,oneof=petrol diesel"`
}

type updateCarRequest struct {
	BrandID             *uint                `json:"brand_id" validate:"omitempty,gt=0"`
	Name                *string              `json:"car_name" validate:"omitempty,min=1,max=255"`
	RentalPrice         *decimal.Decimal     `json:"rental_price"`
	MinimumRentalPeriod *int                 `json:"minimum_rental_period" validate:"omitempty,min=1,max=365"`
	PickupLocationID    *uint                `json:"pickup_location_id" validate:"omitempty,gt=0"`
	DropoffLocationID   *uint                `json:"dropoff_location_id" validate:"omitempty,gt=0"`
	Transmission        *models.Transmission `json:"transmission" validate:"omitempty,oneof=automatic manual"`
	NumberOfSeats       *int                 `json:"number_of_seats" validate:"omitempty,min=1,max=50"`
	EngineSize          *int                 `json:"engine_size" validate:"omitempty,min=1,max=1000"`
	MaxSpeed            *int                 `json:"max_speed" validate:"omitempty,min=10"`
	DieselCapacity      *int                 `json:"diesel_capacity" validate:"omitempty,min=1,max=200"`
	BodyType            *string              `json:"body_type" validate:"omitempty,min=1,max=255"`
	Year                *int                 `json:"year" validate:"omitempty,min=1900,notfutureyear"`
	FuelType            *models.FuelType     `json:"fuel_type" validate:"omitempty,oneof=petrol diesel"`
}

// input leaves IsAvailable unset; availability is not editable.
func (r updateCarRequest) input() services.CarInput {
	return services.CarInput{
		BrandID:             r.BrandID,
		Name:                r.Name,
		RentalPrice:         r.RentalPrice,
		MinimumRentalPeriod: r.MinimumRentalPeriod,
		PickupLocationID:    r.PickupLocationID,
		DropoffLocationID:   r.DropoffLocationID,
		Transmission:        r.Transmission,
		NumberOfSeats:       r.NumberOfSeats,
		EngineSize:          r.EngineSize,
		MaxSpeed:            r.MaxSpeed,
		DieselCapacity:      r.DieselCapacity,
		BodyType:            r.BodyType,
		Year:                r.Year,
		FuelType:            r.FuelType,
	}
}

func checkPrice(price *decimal.Decimal) error {
	if price != nil && !price.IsPositive() {
		return apperrors.BadRequest("rental_price must be a positive number")
	}
	return nil
}

func (h *CarHandler) Create(c *fiber.Ctx) error {
	var req createCarRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := checkPrice(req.RentalPrice); err != nil {
		return err
	}

	car, err := h.cars.Create(c.UserContext(), services.CarInput(req))
	if err != nil {
		return err
	}
	return middleware.Created(c, "Car added successfully.", car)
}

func (h *CarHandler) FindAll(c *fiber.Ctx) error {
	page, err := h.cars.FindAll(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Cars retrieved successfully.", page)
}

func (h *CarHandler) FindAvailable(c *fiber.Ctx) error {
	page, err := h.cars.FindAvailable(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Cars retrieved successfully.", page)
}

func (h *CarHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	car, err := h.cars.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Car retrieved successfully.", car)
}

func (h *CarHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateCarRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := checkPrice(req.RentalPrice); err != nil {
		return err
	}

	car, err := h.cars.Update(c.UserContext(), id, req.input())
	if err != nil {
		return err
	}
	return middleware.OK(c, "Car updated successfully.", car)
}

// UpdateImages appends the uploaded car_images files to the car.
func (h *CarHandler) UpdateImages(c *fiber.Ctx) error {
	id, err := paramID(c, "car_id")
	if err != nil {
		return err
	}

	files, err := formImages(c, h.uploads, "car_images")
	if err != nil {
		return err
	}

	car, err := h.cars.AddImages(c.UserContext(), id, files)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Car images updated successfully.", car)
}

type updatePoliciesRequest struct {
	Policies string `json:"policies" validate:"required"`
}

func (h *CarHandler) UpdatePolicies(c *fiber.Ctx) error {
	id, err := paramID(c, "car_id")
	if err != nil {
		return err
	}
	var req updatePoliciesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	car, err := h.cars.UpdatePolicies(c.UserContext(), id, req.Policies)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Car policies updated successfully.", car)
}

func (h *CarHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.cars.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "This car is now unavailable.", nil)
}
