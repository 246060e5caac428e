package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// A Receipt is the outcome of a confirmed checkout.
type Receipt struct {
	UserID         string
	Lines          []BasketLine
	TotalItems     int
	TotalPrice     decimal.Decimal
	PreviousBudget decimal.Decimal
	NewBudget      decimal.Decimal
	CheckedOutAt   time.Time
}

// A Quote is the affordability view of a basket for display.
type Quote struct {
	Budget     decimal.Decimal
	TotalPrice decimal.Decimal
	Remaining  decimal.Decimal
	Affordable bool
}

func RemainingBudget(budget, totalPrice decimal.Decimal) decimal.Decimal {
	return budget.Sub(totalPrice)
}

// IsAffordable reports whether budget covers totalPrice.
// Exhausting the budget to exactly zero is affordable.
func IsAffordable(budget, totalPrice decimal.Decimal) bool {
	return !RemainingBudget(budget, totalPrice).IsNegative()
}

func NewQuote(budget, totalPrice decimal.Decimal) Quote {
	return Quote{
		Budget:     budget,
		TotalPrice: totalPrice,
		Remaining:  RemainingBudget(budget, totalPrice),
		Affordable: IsAffordable(budget, totalPrice),
	}
}

// EvaluateCheckout decides whether user may check out b.
//
// It has no side effects. The returned receipt carries the budget the
// user will have once the debit is applied.
func EvaluateCheckout(user *User, b Basket, at time.Time) (Receipt, error) {
	if user == nil {
		return Receipt{}, ErrUnauthenticated
	}

	if b.IsEmpty() {
		return Receipt{}, ErrEmptyBasket
	}

	if !IsAffordable(user.Budget, b.TotalPrice) {
		return Receipt{}, &InsufficientBudgetError{
			Budget:   user.Budget,
			Required: b.TotalPrice,
		}
	}

	snapshot := b.Clone()
	return Receipt{
		UserID:         user.ID,
		Lines:          snapshot.Lines,
		TotalItems:     snapshot.TotalItems,
		TotalPrice:     snapshot.TotalPrice,
		PreviousBudget: user.Budget,
		NewBudget:      RemainingBudget(user.Budget, snapshot.TotalPrice),
		CheckedOutAt:   at,
	}, nil
}
