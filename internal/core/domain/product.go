package domain

import "github.com/shopspring/decimal"

type (
	Product struct {
		ID          int
		Title       string
		Price       decimal.Decimal
		Category    string
		Image       string
		Description string
		Rating      ProductRating
	}

	ProductRating struct {
		Rate  float64
		Count int
	}
)
