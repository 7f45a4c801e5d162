package services

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const (
	msgCarNotFound        = "Car Not Found."
	msgBrandNotFoundFK    = "Brand Not Found."
	msgLocationNotFoundFK = "Location Not Found."
)

// CarInput is a full or partial car payload. Nil fields are left untouched
// on update.
type CarInput struct {
	BrandID             *uint
	Name                *string
	RentalPrice         *decimal.Decimal
	MinimumRentalPeriod *int
	PickupLocationID    *uint
	DropoffLocationID   *uint
	Transmission        *models.Transmission
	NumberOfSeats       *int
	IsAvailable         *bool
	EngineSize          *int
	MaxSpeed            *int
	DieselCapacity      *int
	BodyType            *string
	Year                *int
	FuelType            *models.FuelType
}

type CarSummary struct {
	ID                 uint             `json:"id"`
	Name               string           `json:"name"`
	RentalPrice        decimal.Decimal  `json:"rental_price"`
	NumberOfSeats      int              `json:"number_of_seats"`
	IsAvailable        bool             `json:"is_available"`
	Brand              *BrandView       `json:"brand,omitempty"`
	PickupLocation     *models.Location `json:"pickup_location,omitempty"`
	DropoffLocation    *models.Location `json:"dropoff_location,omitempty"`
	Image              *string          `json:"image"`
	DiscountPercentage int              `json:"discount_percentage"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type CarDetails struct {
	CarSummary
	MinimumRentalPeriod int                 `json:"minimum_rental_period"`
	Transmission        models.Transmission `json:"transmission"`
	EngineSize          int                 `json:"engine_size"`
	MaxSpeed            int                 `json:"max_speed"`
	DieselCapacity      int                 `json:"diesel_capacity"`
	BodyType            string              `json:"body_type"`
	Year                int                 `json:"year"`
	FuelType            models.FuelType     `json:"fuel_type"`
	Images              []string            `json:"images"`
	Policies            *string             `json:"policies"`
}

type CarService struct {
	cars      repository.CarRepository
	brands    repository.BrandRepository
	locations repository.LocationRepository
	cache     catalogCache[models.Car]
	uploads   Uploads
	urls      URLBuilder
	log       logger.ILogger
	now       func() time.Time
}

func NewCarService(
	cars repository.CarRepository,
	brands repository.BrandRepository,
	locations repository.LocationRepository,
	store cache.Store,
	uploads Uploads,
	urls URLBuilder,
	log logger.ILogger,
) *CarService {
	return &CarService{
		cars:      cars,
		brands:    brands,
		locations: locations,
		cache:     newCatalogCache[models.Car](store, cache.SetCars, log),
		uploads:   uploads,
		urls:      urls,
		log:       log,
		now:       time.Now,
	}
}

func (s *CarService) Create(ctx context.Context, in CarInput) (*CarDetails, error) {
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	car := &models.Car{IsAvailable: true}
	applyCar(car, in)

	if err := s.cars.Create(ctx, car); err != nil {
		s.log.Error("create car failed", logger.Error(err))
		return nil, mapRepoErr(err, msgCarNotFound)
	}

	details, err := s.load(ctx, car.ID)
	if err != nil {
		return nil, err
	}
	s.cache.add(ctx, details.ID, details)

	view := s.details(details)
	return &view, nil
}

func (s *CarService) FindAll(ctx context.Context, p utils.Pagination) (Page[CarSummary], error) {
	cars, total, err := s.cache.page(ctx, p, s.cars.All, func(c *models.Car) uint { return c.ID })
	if err != nil {
		s.log.Error("list cars failed", logger.Error(err))
		return Page[CarSummary]{}, apperrors.Internal(err)
	}
	return newPage(s.summaries(cars), total, p), nil
}

// FindAvailable lists only rentable cars straight from the database.
func (s *CarService) FindAvailable(ctx context.Context, p utils.Pagination) (Page[CarSummary], error) {
	cars, total, err := s.cars.List(ctx, p.Offset, p.Limit, true)
	if err != nil {
		s.log.Error("list available cars failed", logger.Error(err))
		return Page[CarSummary]{}, apperrors.Internal(err)
	}
	return newPage(s.summaries(cars), total, p), nil
}

func (s *CarService) FindOne(ctx context.Context, id uint) (*CarDetails, error) {
	car, ok := s.cache.get(ctx, id)
	if !ok {
		var err error
		if car, err = s.load(ctx, id); err != nil {
			return nil, err
		}
		s.cache.add(ctx, car.ID, car)
	}

	view := s.details(car)
	return &view, nil
}

func (s *CarService) Update(ctx context.Context, id uint, in CarInput) (*CarDetails, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgCarNotFound)
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	// Availability follows orders and Remove only.
	in.IsAvailable = nil
	applyCar(car, in)
	if err := s.cars.Save(ctx, car); err != nil {
		s.log.Error("update car failed", logger.Uint("car_id", id), logger.Error(err))
		return nil, mapRepoErr(err, msgCarNotFound)
	}

	details, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.replace(ctx, id, details)

	view := s.details(details)
	return &view, nil
}

// AddImages attaches stored image files to a car. Files are removed again
// when the car does not exist.
func (s *CarService) AddImages(ctx context.Context, carID uint, files []string) (*CarDetails, error) {
	if _, err := s.cars.FindByID(ctx, carID); err != nil {
		for _, f := range files {
			s.uploads.Remove(f)
		}
		return nil, mapRepoErr(err, msgCarNotFound)
	}

	if _, err := s.cars.AddImages(ctx, carID, files); err != nil {
		for _, f := range files {
			s.uploads.Remove(f)
		}
		s.log.Error("add car images failed", logger.Uint("car_id", carID), logger.Error(err))
		return nil, apperrors.Internal(err)
	}

	return s.refreshView(ctx, carID)
}

func (s *CarService) UpdatePolicies(ctx context.Context, carID uint, text string) (*CarDetails, error) {
	if _, err := s.cars.FindByID(ctx, carID); err != nil {
		return nil, mapRepoErr(err, msgCarNotFound)
	}

	if _, err := s.cars.UpsertPolicy(ctx, carID, text); err != nil {
		s.log.Error("upsert car policy failed", logger.Uint("car_id", carID), logger.Error(err))
		return nil, mapRepoErr(err, msgCarNotFound)
	}

	return s.refreshView(ctx, carID)
}

// Remove withdraws a car from rental. Rows are kept for order history.
func (s *CarService) Remove(ctx context.Context, id uint) error {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, msgCarNotFound)
	}

	car.IsAvailable = false
	car.Withdrawn = true
	if err := s.cars.Save(ctx, car); err != nil {
		s.log.Error("remove car failed", logger.Uint("car_id", id), logger.Error(err))
		return apperrors.Internal(err)
	}

	s.Refresh(ctx, id)
	return nil
}

// Refresh reloads a car into the cache after a change made elsewhere, such
// as an order or a discount.
func (s *CarService) Refresh(ctx context.Context, id uint) {
	car, err := s.load(ctx, id)
	if err != nil {
		if apperrors.Is(err, http.StatusNotFound) {
			s.cache.remove(ctx, id)
			return
		}
		s.log.Warning("car cache refresh failed", logger.Uint("car_id", id), logger.Error(err))
		s.cache.invalidate(ctx)
		return
	}
	s.cache.replace(ctx, id, car)
}

func (s *CarService) refreshView(ctx context.Context, id uint) (*CarDetails, error) {
	car, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.replace(ctx, id, car)
	view := s.details(car)
	return &view, nil
}

func (s *CarService) load(ctx context.Context, id uint) (*models.Car, error) {
	car, err := s.cars.FindDetails(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgCarNotFound)
	}
	return car, nil
}

func (s *CarService) checkReferences(ctx context.Context, in CarInput) error {
	if in.BrandID != nil {
		if _, err := s.brands.FindByID(ctx, *in.BrandID); err != nil {
			return mapRepoErr(err, msgBrandNotFoundFK)
		}
	}
	for _, id := range []*uint{in.PickupLocationID, in.DropoffLocationID} {
		if id == nil {
			continue
		}
		if _, err := s.locations.FindByID(ctx, *id); err != nil {
			return mapRepoErr(err, msgLocationNotFoundFK)
		}
	}
	return nil
}

func (s *CarService) summaries(cars []models.Car) []CarSummary {
	out := make([]CarSummary, 0, len(cars))
	for i := range cars {
		out = append(out, s.summary(&cars[i]))
	}
	return out
}

func (s *CarService) summary(car *models.Car) CarSummary {
	view := CarSummary{
		ID:                 car.ID,
		Name:               car.Name,
		RentalPrice:        car.RentalPrice,
		NumberOfSeats:      car.NumberOfSeats,
		IsAvailable:        car.IsAvailable,
		PickupLocation:     car.PickupLocation,
		DropoffLocation:    car.DropoffLocation,
		DiscountPercentage: activeDiscount(car.Discounts, s.now()),
		CreatedAt:          car.CreatedAt,
		UpdatedAt:          car.UpdatedAt,
	}
	if car.Brand != nil {
		view.Brand = &BrandView{
			ID:        car.Brand.ID,
			Name:      ucFirst(car.Brand.Name),
			Logo:      s.urls(car.Brand.Logo),
			CreatedAt: car.Brand.CreatedAt,
			UpdatedAt: car.Brand.UpdatedAt,
		}
	}
	if len(car.Images) > 0 {
		url := s.urls(car.Images[0].ImagePath)
		view.Image = &url
	}
	return view
}

func (s *CarService) details(car *models.Car) CarDetails {
	view := CarDetails{
		CarSummary:          s.summary(car),
		MinimumRentalPeriod: car.MinimumRentalPeriod,
		Transmission:        car.Transmission,
		EngineSize:          car.EngineSize,
		MaxSpeed:            car.MaxSpeed,
		DieselCapacity:      car.DieselCapacity,
		BodyType:            car.BodyType,
		Year:                car.Year,
		FuelType:            car.FuelType,
		Images:              make([]string, 0, len(car.Images)),
	}
	for _, img := range car.Images {
		view.Images = append(view.Images, s.urls(img.ImagePath))
	}
	if car.Policy != nil {
		text := car.Policy.PoliciesText
		view.Policies = &text
	}
	return view
}

// activeDiscount picks the highest percentage among discounts that have not
// ended at now.
func activeDiscount(discounts []models.Discount, now time.Time) int {
	best := 0
	for _, d := range discounts {
		if d.EndDate.After(now) && d.Percentage > best {
			best = d.Percentage
		}
	}
	return best
}

func applyCar(car *models.Car, in CarInput) {
	if in.BrandID != nil {
		car.BrandID = *in.BrandID
	}
	if in.Name != nil {
		car.Name = *in.Name
	}
	if in.RentalPrice != nil {
		car.RentalPrice = in.RentalPrice.Truncate(2)
	}
	if in.MinimumRentalPeriod != nil {
		car.MinimumRentalPeriod = *in.MinimumRentalPeriod
	}
	if in.PickupLocationID != nil {
		car.PickupLocationID = *in.PickupLocationID
	}
	if in.DropoffLocationID != nil {
		car.DropoffLocationID = *in.DropoffLocationID
	}
	if in.Transmission != nil {
		car.Transmission = *in.Transmission
	}
	if in.NumberOfSeats != nil {
		car.NumberOfSeats = *in.NumberOfSeats
	}
	if in.IsAvailable != nil {
		car.IsAvailable = *in.IsAvailable
	}
	if in.EngineSize != nil {
		car.EngineSize = *in.EngineSize
	}
	if in.MaxSpeed != nil {
		car.MaxSpeed = *in.MaxSpeed
	}
	if in.DieselCapacity != nil {
		car.DieselCapacity = *in.DieselCapacity
	}
	if in.BodyType != nil {
		car.BodyType = *in.BodyType
	}
	if in.Year != nil {
		car.Year = *in.Year
	}
	if in.FuelType != nil {
		car.FuelType = *in.FuelType
	}
}
