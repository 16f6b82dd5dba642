package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultSafeRate es el margen que se suma al precio base en SafePrice.
var DefaultSafeRate = decimal.RequireFromString("0.05")

var (
	minPrice = decimal.RequireFromString("0.001")
	maxPrice = decimal.RequireFromString("0.999")
)

const priceDecimals = 3

// SafePrice aplica el margen al precio base, lo acota a [0.001, 0.999]
// y lo redondea al tick de 0.001.
func SafePrice(base, rate decimal.Decimal) string {
	p := base.Mul(decimal.NewFromInt(1).Add(rate))
	if p.GreaterThan(maxPrice) {
		p = maxPrice
	} else if p.LessThan(minPrice) {
		p = minPrice
	}
	return p.Round(priceDecimals).StringFixed(priceDecimals)
}

// SafePriceString es SafePrice para precios que vienen como string de la API.
func SafePriceString(base string, rate decimal.Decimal) (string, error) {
	d, err := decimal.NewFromString(base)
	if err != nil {
		return "", fmt.Errorf("domain.SafePriceString: parse %q: %w", base, err)
	}
	return SafePrice(d, rate), nil
}
