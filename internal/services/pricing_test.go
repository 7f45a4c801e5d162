package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/models"
)

func TestRentalInterval(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dropoff time.Time
		want    int
	}{
		{name: "exact days", dropoff: base.Add(10 * day), want: 10},
		{name: "partial day rounds up", dropoff: base.Add(2*day + time.Hour), want: 3},
		{name: "one minute", dropoff: base.Add(time.Minute), want: 1},
		{name: "same instant", dropoff: base, want: 0},
		{name: "reversed", dropoff: base.Add(-day), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RentalInterval(base, tt.dropoff); got != tt.want {
				t.Errorf("RentalInterval() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		interval int
		discount int
		want     string
	}{
		{name: "no discount", price: "50.00", interval: 10, discount: 0, want: "500.00"},
		{name: "twenty percent", price: "50.00", interval: 10, discount: 20, want: "400.00"},
		{name: "odd cents", price: "33.33", interval: 3, discount: 15, want: "84.99"},
		{name: "max discount", price: "100.00", interval: 1, discount: 99, want: "1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPrice(decimal.RequireFromString(tt.price), tt.interval, tt.discount)
			if got.StringFixed(2) != tt.want {
				t.Errorf("TotalPrice() = %s, want %s", got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestCurrencyConverter(t *testing.T) {
	c := NewCurrencyConverter(48.5)
	amount := decimal.RequireFromString("10.00")

	if got := c.Format(amount, models.CurrencyEGP); got != "485.00 EGP" {
		t.Errorf("EGP = %q", got)
	}
	if got := c.Format(amount, models.CurrencyUSD); got != "10.00 USD" {
		t.Errorf("USD = %q", got)
	}
	if got := c.Format(amount, "JPY"); got != "10.00 USD" {
		t.Errorf("unknown currency should fall back to USD, got %q", got)
	}
}
