package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsAffordable(t *testing.T) {
	assert.True(t, domain.IsAffordable(dec("100"), dec("100")))
	assert.False(t, domain.IsAffordable(dec("99.99"), dec("100")))
	assert.True(t, domain.IsAffordable(dec("100"), dec("0")))
	assert.Equal(t, "-0.01", domain.RemainingBudget(dec("99.99"), dec("100")).String())
}

func TestEvaluateCheckout(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	basket, _ := domain.Basket{}.Add(product(1, "15"), 2)

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := domain.EvaluateCheckout(nil, basket, at)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("EmptyBasket", func(t *testing.T) {
		u := &domain.User{ID: "u1", Budget: dec("50")}
		_, err := domain.EvaluateCheckout(u, domain.Basket{}, at)
		assert.ErrorIs(t, err, domain.ErrEmptyBasket)
	})

	t.Run("InsufficientBudget", func(t *testing.T) {
		u := &domain.User{ID: "u1", Budget: dec("20")}
		_, err := domain.EvaluateCheckout(u, basket, at)
		require.ErrorIs(t, err, domain.ErrInsufficientBudget)

		var budgetErr *domain.InsufficientBudgetError
		require.True(t, errors.As(err, &budgetErr))
		assert.Equal(t, "20.00", budgetErr.Budget.StringFixed(2))
		assert.Equal(t, "30.00", budgetErr.Required.StringFixed(2))
		assert.Equal(t, "20", u.Budget.String())
	})

	t.Run("Affordable", func(t *testing.T) {
		u := &domain.User{ID: "u1", Budget: dec("50")}
		r, err := domain.EvaluateCheckout(u, basket, at)
		require.NoError(t, err)

		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, "20", r.NewBudget.String())
		assert.Equal(t, "50", r.PreviousBudget.String())
		assert.Equal(t, 2, r.TotalItems)
		assert.Equal(t, at, r.CheckedOutAt)
		require.Len(t, r.Lines, 1)
	})

	t.Run("ExactBudget", func(t *testing.T) {
		u := &domain.User{ID: "u1", Budget: dec("30")}
		r, err := domain.EvaluateCheckout(u, basket, at)
		require.NoError(t, err)
		assert.True(t, r.NewBudget.IsZero())
	})
}

func TestNewQuote(t *testing.T) {
	q := domain.NewQuote(dec("10"), dec("12.5"))
	assert.False(t, q.Affordable)
	assert.Equal(t, "-2.5", q.Remaining.String())
}
