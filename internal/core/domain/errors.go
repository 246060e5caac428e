package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnauthenticated    = errors.New("no active session")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrStoragePersistence = errors.New("failed to persist state")
	ErrEmptyBasket        = errors.New("basket is empty")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPhoneTaken         = errors.New("phone is already registered")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidForm        = errors.New("invalid form")
	ErrUpstream           = errors.New("upstream service failure")
)

// An InsufficientBudgetError reports how far the budget is short.
type InsufficientBudgetError struct {
	Budget   decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientBudgetError) Error() string {
	return fmt.Sprintf(
		"%s: budget %s, required %s",
		ErrInsufficientBudget, e.Budget.StringFixed(2), e.Required.StringFixed(2),
	)
}

func (e *InsufficientBudgetError) Is(target error) bool {
	return target == ErrInsufficientBudget
}

// A ValidationError maps form field names to failed rules.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidForm, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}
