package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderCompleted  OrderStatus = "completed"
	OrderCanceled   OrderStatus = "canceled"
)

// Active reports whether an order in this status still holds its car.
func (s OrderStatus) Active() bool {
	return s != OrderCanceled && s != OrderCompleted
}

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentFailed    PaymentState = "failed"
	PaymentCompleted PaymentState = "completed"
)

type Order struct {
	BaseModel
	UserID       uint            `gorm:"index;not null" json:"user_id"`
	User         *User           `json:"user,omitempty"`
	CarID        uint            `gorm:"index;not null" json:"car_id"`
	Car          *Car            `json:"car,omitempty"`
	OrderStatus  OrderStatus     `gorm:"size:16;not null;default:pending" json:"order_status"`
	PickupDate   time.Time       `gorm:"not null" json:"pickup_date"`
	DropoffDate  time.Time       `gorm:"not null" json:"dropoff_date"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_price"`
	PaymentState PaymentState    `gorm:"size:16;not null;default:pending" json:"payment_state"`
}

// Discount lowers a car's daily price while EndDate is in the future.
type Discount struct {
	BaseModel
	CarID      uint      `gorm:"index;not null" json:"car_id"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null;index" json:"end_date"`
	Percentage int       `gorm:"not null" json:"percentage"`
}

type ContactStatus int

const (
	ContactPending  ContactStatus = 0
	ContactResolved ContactStatus = 1
)

func (s ContactStatus) String() string {
	if s == ContactResolved {
		return "Resolved"
	}
	return "Pending"
}

type ContactUs struct {
	BaseModel
	UserID  uint          `gorm:"index;not null" json:"user_id"`
	User    *User         `json:"user,omitempty"`
	Subject string        `gorm:"size:200;not null" json:"subject"`
	Message string        `gorm:"size:800;not null" json:"message"`
	Status  ContactStatus `gorm:"default:0" json:"status"`
}

func (ContactUs) TableName() string {
	return "contact_us"
}
