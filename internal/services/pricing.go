package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/models"
)

const day = 24 * time.Hour

// RentalInterval returns the number of started days between pickup and
// dropoff.
func RentalInterval(pickup, dropoff time.Time) int {
	d := dropoff.Sub(pickup)
	if d <= 0 {
		return 0
	}
	days := d / day
	if d%day != 0 {
		days++
	}
	return int(days)
}

// TotalPrice computes interval * (price - price*discount/100) rounded to
// cents.
func TotalPrice(dailyPrice decimal.Decimal, interval, discountPct int) decimal.Decimal {
	discount := dailyPrice.Mul(decimal.NewFromInt(int64(discountPct))).Div(decimal.NewFromInt(100))
	return dailyPrice.Sub(discount).Mul(decimal.NewFromInt(int64(interval))).Round(2)
}

// CurrencyConverter converts USD amounts into a user's preferred currency
// using a static rate table.
type CurrencyConverter struct {
	rates map[models.Currency]decimal.Decimal
}

func NewCurrencyConverter(usdToEGP float64) *CurrencyConverter {
	return &CurrencyConverter{
		rates: map[models.Currency]decimal.Decimal{
			models.CurrencyUSD: decimal.NewFromInt(1),
			models.CurrencyEGP: decimal.NewFromFloat(usdToEGP),
		},
	}
}

// FromUSD converts amount into currency. Unknown currencies fall back to USD.
func (c *CurrencyConverter) FromUSD(amount decimal.Decimal, currency models.Currency) (decimal.Decimal, models.Currency) {
	rate, ok := c.rates[currency]
	if !ok {
		return amount.Round(2), models.CurrencyUSD
	}
	return amount.Mul(rate).Round(2), currency
}

// Format renders amount with its currency code, e.g. "250.00 USD".
func (c *CurrencyConverter) Format(amount decimal.Decimal, currency models.Currency) string {
	converted, code := c.FromUSD(amount, currency)
	return converted.StringFixed(2) + " " + string(code)
}
