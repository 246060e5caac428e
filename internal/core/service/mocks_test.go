package service_test

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) LoadBasket(ctx context.Context) (domain.Basket, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Basket), args.Error(1)
}

func (m *MockBasketRepository) SaveBasket(ctx context.Context, b domain.Basket) error {
	return m.Called(ctx, b).Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) LoadSession(ctx context.Context) (domain.Session, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Session), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) SaveSession(ctx context.Context, s domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) ClearSession(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *MockUserDirectory) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProductCatalog) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductCatalog) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]string)
	return cs, args.Error(1)
}

func (m *MockProductCatalog) ListProductsByCategory(
	ctx context.Context, category string,
) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProductCatalog) ListLimitedProducts(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockCheckoutProducer struct {
	mock.Mock
}

func (m *MockCheckoutProducer) ProduceCheckout(ctx context.Context, r domain.Receipt) error {
	return m.Called(ctx, r).Error(0)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.BasketEvent
}

func (r *eventRecorder) BasketChanged(evt domain.BasketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) kinds() []domain.BasketEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BasketEventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func product(id int, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    "product",
		Price:    decimal.RequireFromString(price),
		Category: "electronics",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
