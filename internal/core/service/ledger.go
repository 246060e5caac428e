package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.BasketManager = (*Ledger)(nil)

// A Ledger owns the basket of the current client.
//
// Mutations are serialized. Each applied mutation persists the full
// basket through the repository and then notifies observers. A failed
// write is logged and the in-memory basket stays authoritative.
type Ledger struct {
	mu        sync.Mutex
	basket    domain.Basket
	repo      port.BasketRepository
	observers []port.BasketObserver
}

// NewLedger returns an empty ledger. A nil repo keeps the basket in memory only.
func NewLedger(
	repo port.BasketRepository, observers ...port.BasketObserver,
) *Ledger {
	return &Ledger{
		basket:    domain.Basket{}.Clear(),
		repo:      repo,
		observers: observers,
	}
}

func (l *Ledger) Subscribe(o port.BasketObserver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Load rehydrates the basket from the repository.
// Any load failure leaves the ledger with an empty basket.
func (l *Ledger) Load(ctx context.Context) domain.Basket {
	const op = "Ledger.Load"
	log := slog.With("op", op)

	b := domain.Basket{}.Clear()
	if l.repo != nil {
		loaded, err := l.repo.LoadBasket(ctx)
		if err != nil {
			log.Warn("starting with empty basket", "err", err)
		} else {
			b = loaded
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.basket = b
	l.notify(domain.EventLoaded, 0)

	log.Info("basket loaded", "lines", len(b.Lines), "totalItems", b.TotalItems)
	return l.basket.Clone()
}

func (l *Ledger) Snapshot() domain.Basket {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.basket.Clone()
}

func (l *Ledger) Add(
	ctx context.Context, p domain.Product, quantity int,
) domain.Basket {
	return l.apply(ctx, domain.EventAdded, p.ID,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.Add(p, quantity)
		},
	)
}

func (l *Ledger) Remove(ctx context.Context, productID int) domain.Basket {
	return l.apply(ctx, domain.EventRemoved, productID,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.Remove(productID)
		},
	)
}

func (l *Ledger) SetQuantity(
	ctx context.Context, productID, quantity int,
) domain.Basket {
	kind := domain.EventQuantitySet
	if quantity <= 0 {
		kind = domain.EventRemoved
	}
	return l.apply(ctx, kind, productID,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.SetQuantity(productID, quantity)
		},
	)
}

func (l *Ledger) Increment(ctx context.Context, productID int) domain.Basket {
	return l.apply(ctx, domain.EventIncremented, productID,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.Increment(productID)
		},
	)
}

func (l *Ledger) Decrement(ctx context.Context, productID int) domain.Basket {
	return l.apply(ctx, domain.EventDecremented, productID,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.Decrement(productID)
		},
	)
}

func (l *Ledger) Clear(ctx context.Context) domain.Basket {
	return l.apply(ctx, domain.EventCleared, 0,
		func(b domain.Basket) (domain.Basket, bool) {
			return b.Clear(), true
		},
	)
}

// Settle runs settle against the current basket while holding the ledger.
// When settle succeeds the basket is cleared before the ledger is released,
// so no caller sees the settlement without the clear. On error the basket
// is left untouched.
func (l *Ledger) Settle(
	ctx context.Context, settle func(domain.Basket) error,
) (domain.Basket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := settle(l.basket.Clone()); err != nil {
		return l.basket.Clone(), err
	}

	l.commit(ctx, domain.EventCheckedOut, 0, l.basket.Clear())
	return l.basket.Clone(), nil
}

func (l *Ledger) apply(
	ctx context.Context,
	kind domain.BasketEventKind,
	productID int,
	transition func(domain.Basket) (domain.Basket, bool),
) domain.Basket {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, changed := transition(l.basket)
	if changed {
		l.commit(ctx, kind, productID, next)
	}
	return l.basket.Clone()
}

func (l *Ledger) commit(
	ctx context.Context,
	kind domain.BasketEventKind,
	productID int,
	next domain.Basket,
) {
	l.basket = next
	l.persist(ctx)
	l.notify(kind, productID)

	slog.Debug("basket changed",
		"op", "Ledger.commit",
		"event", kind,
		"productID", productID,
		"totalItems", next.TotalItems,
		"totalPrice", next.TotalPrice.StringFixed(2),
	)
}

func (l *Ledger) persist(ctx context.Context) {
	const op = "Ledger.persist"

	if l.repo == nil {
		return
	}

	err := l.repo.SaveBasket(ctx, l.basket.Clone())
	if err != nil {
		err = fmt.Errorf("%s: %w: %w", op, domain.ErrStoragePersistence, err)
		slog.Error("basket kept in memory only", "op", op, "err", err)
	}
}

func (l *Ledger) notify(kind domain.BasketEventKind, productID int) {
	if len(l.observers) == 0 {
		return
	}
	evt := domain.BasketEvent{
		Kind:      kind,
		ProductID: productID,
		Basket:    l.basket.Clone(),
	}
	for _, o := range l.observers {
		o.BasketChanged(evt)
	}
}
