package models

import (
	"github.com/shopspring/decimal"
)

type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

type FuelType string

const (
	FuelPetrol FuelType = "petrol"
	FuelDiesel FuelType = "diesel"
)

type LocationType string

const (
	LocationPickup  LocationType = "pickup"
	LocationDropOff LocationType = "drop_off"
)

type Brand struct {
	BaseModel
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Logo string `json:"logo"`
}

type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type Location struct {
	BaseModel
	Address      string       `gorm:"size:255;not null" json:"address"`
	Coordinates  Coordinates  `gorm:"embedded;embeddedPrefix:coordinates_" json:"coordinates"`
	LocationType LocationType `gorm:"size:16;not null" json:"location_type"`
}

// Car is a rentable vehicle. IsAvailable is false while an active order holds it.
type Car struct {
	BaseModel
	BrandID             uint            `gorm:"index;not null" json:"brand_id"`
	Brand               *Brand          `json:"brand,omitempty"`
	Name                string          `gorm:"size:100;not null" json:"name"`
	RentalPrice         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"rental_price"`
	MinimumRentalPeriod int             `gorm:"not null;default:1" json:"minimum_rental_period"`
	PickupLocationID    uint            `gorm:"index;not null" json:"pickup_location_id"`
	PickupLocation      *Location       `gorm:"foreignKey:PickupLocationID" json:"pickup_location,omitempty"`
	DropoffLocationID   uint            `gorm:"index;not null" json:"dropoff_location_id"`
	DropoffLocation     *Location       `gorm:"foreignKey:DropoffLocationID" json:"dropoff_location,omitempty"`
	Transmission        Transmission    `gorm:"size:16;not null" json:"transmission"`
	NumberOfSeats       int             `gorm:"not null" json:"number_of_seats"`
	IsAvailable         bool            `gorm:"default:true;index" json:"is_available"`
	Withdrawn           bool            `gorm:"not null;default:false" json:"withdrawn"`
	EngineSize          int             `json:"engine_size"`
	MaxSpeed            int             `json:"max_speed"`
	DieselCapacity      int             `json:"diesel_capacity"`
	BodyType            string          `gorm:"size:50" json:"body_type"`
	Year                int             `json:"year"`
	FuelType            FuelType        `gorm:"size:16;not null" json:"fuel_type"`
	Images              []CarImage      `json:"images,omitempty"`
	Policy              *CarPolicy      `json:"policy,omitempty"`
	Discounts           []Discount      `json:"discounts,omitempty"`
}

type CarImage struct {
	BaseModel
	CarID     uint   `gorm:"index;not null" json:"car_id"`
	ImagePath string `gorm:"not null" json:"image_path"`
}

type CarPolicy struct {
	BaseModel
	CarID        uint   `gorm:"uniqueIndex;not null" json:"car_id"`
	PoliciesText string `gorm:"type:text" json:"policies_text"`
}

type CarReview struct {
	BaseModel
	CarID      uint   `gorm:"index;not null" json:"car_id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	User       *User  `json:"user,omitempty"`
	ReviewRate int    `gorm:"not null" json:"review_rate"`
	ReviewText string `gorm:"size:900" json:"review_text"`
}
