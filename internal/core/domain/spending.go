package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Spending aggregates the confirmed checkouts of one user.
type Spending struct {
	UserID         string
	TotalSpent     decimal.Decimal
	Checkouts      int64
	LastCheckoutAt time.Time
}
