// Package currency converts between the store's settlement currency (VND,
// which has no fractional unit) and the USD amounts quoted to PayPal, using
// a single configured exchange rate.
package currency

import (
	"fmt"
	"math"
)

type Converter struct {
	vndPerUSD float64
}

// NewConverter builds a converter from the configured rate. The rate must be
// positive; a zero rate would quote every order at $0.
func NewConverter(vndPerUSD float64) (*Converter, error) {
	if vndPerUSD <= 0 {
		return nil, fmt.Errorf("exchange rate must be positive, got %v", vndPerUSD)
	}
	return &Converter{vndPerUSD: vndPerUSD}, nil
}

// ToUSD converts a VND amount to USD rounded to cents.
func (c *Converter) ToUSD(vnd int64) float64 {
	return math.Round(float64(vnd)/c.vndPerUSD*100) / 100
}

// USDString formats a VND amount as the two-decimal string PayPal's order
// API expects.
func (c *Converter) USDString(vnd int64) string {
	return fmt.Sprintf("%.2f", c.ToUSD(vnd))
}

// FromUSD converts a USD amount back to whole VND.
func (c *Converter) FromUSD(usd float64) int64 {
	return int64(math.Round(usd * c.vndPerUSD))
}
