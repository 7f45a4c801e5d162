package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEGP Currency = "EGP"
)

// User represents a registered customer or administrator.
type User struct {
	BaseModel
	Email              string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName           string   `gorm:"size:200;not null" json:"full_name"`
	PasswordHash       string   `gorm:"not null" json:"-"`
	PhoneNumber        string   `gorm:"size:32" json:"phone_number"`
	Image              string   `json:"image"`
	VerificationStatus bool     `gorm:"default:false" json:"verification_status"`
	IsAdmin            bool     `gorm:"default:false" json:"is_admin"`
	IsBlocked          bool     `gorm:"default:false" json:"is_blocked"`
	AccountDisabled    bool     `gorm:"default:false" json:"account_disabled"`
	OTPSecret          string   `json:"-"`
	PreferredCurrency  Currency `gorm:"size:3;default:USD" json:"preferred_currency"`
}

// BeforeSave keeps e-mails case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.PreferredCurrency == "" {
		u.PreferredCurrency = CurrencyUSD
	}
	return nil
}

// Role returns the claim role for the user.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenBlacklist stores access tokens revoked by logout until they expire.
type TokenBlacklist struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
