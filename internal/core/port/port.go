package port

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A KVStore is the synchronous key-value store the client state lives in.
// Get reports ok=false for an absent key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type BasketRepository interface {
	LoadBasket(context.Context) (domain.Basket, error)
	SaveBasket(context.Context, domain.Basket) error
}

type SessionRepository interface {
	LoadSession(context.Context) (domain.Session, bool, error)
	SaveSession(context.Context, domain.Session) error
	ClearSession(context.Context) error
}

// A BasketObserver is notified after every applied basket mutation.
// It runs while the ledger is locked and must not call back into it.
type BasketObserver interface {
	BasketChanged(domain.BasketEvent)
}

type ProductCatalog interface {
	ListProducts(context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (domain.Product, error)
	ListCategories(context.Context) ([]string, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListLimitedProducts(ctx context.Context, limit int) ([]domain.Product, error)
}

type UserDirectory interface {
	ListUsers(context.Context) ([]domain.User, error)
	CreateUser(context.Context, domain.User) (domain.User, error)
}

type CheckoutProducer interface {
	ProduceCheckout(context.Context, domain.Receipt) error
}

type CheckoutRecorder interface {
	CheckoutSucceeded(domain.Receipt)
	CheckoutFailed(error)
}

// A SpendingReader reports what a user has spent across all sessions.
// A user without checkouts gets a zero Spending.
type SpendingReader interface {
	Spending(ctx context.Context, userID string) (domain.Spending, error)
}

type SpendingProcessor interface {
	runnerContextWg
	closer
}

// Inbound ports used by the HTTP adapter.

type BasketManager interface {
	Add(ctx context.Context, p domain.Product, quantity int) domain.Basket
	Remove(ctx context.Context, productID int) domain.Basket
	SetQuantity(ctx context.Context, productID, quantity int) domain.Basket
	Increment(ctx context.Context, productID int) domain.Basket
	Decrement(ctx context.Context, productID int) domain.Basket
	Clear(ctx context.Context) domain.Basket
	Snapshot() domain.Basket
}

type Checkouter interface {
	Quote(context.Context) (domain.Quote, error)
	Checkout(context.Context) (domain.Receipt, error)
}

type Authenticator interface {
	Login(context.Context, domain.LoginForm) (domain.User, error)
	Register(context.Context, domain.RegisterForm) (domain.User, error)
	Logout(context.Context)
	Current() (domain.User, bool)
	SetBudget(context.Context, decimal.Decimal) (domain.User, error)
	IncreaseBudget(context.Context, decimal.Decimal) (domain.User, error)
}

type CatalogBrowser interface {
	Products(ctx context.Context, f domain.ProductFilter, limit int) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	Categories(context.Context) ([]string, error)
}
