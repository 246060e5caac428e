package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.Checkouter = (*Checkout)(nil)

type CheckoutOpt func(*Checkout)

func CheckoutProducerOpt(p port.CheckoutProducer) CheckoutOpt {
	return func(c *Checkout) {
		c.producer = p
	}
}

func CheckoutRecorderOpt(r port.CheckoutRecorder) CheckoutOpt {
	return func(c *Checkout) {
		c.recorder = r
	}
}

func CheckoutClockOpt(fn func() time.Time) CheckoutOpt {
	return func(c *Checkout) {
		c.now = fn
	}
}

// Checkout pairs the budget debit with the basket clear.
type Checkout struct {
	ledger   *Ledger
	sessions *Sessions
	producer port.CheckoutProducer
	recorder port.CheckoutRecorder
	now      func() time.Time
}

func NewCheckout(ledger *Ledger, sessions *Sessions, opts ...CheckoutOpt) *Checkout {
	c := &Checkout{
		ledger:   ledger,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote reports what checking out the current basket would leave.
func (c *Checkout) Quote(ctx context.Context) (domain.Quote, error) {
	const op = "Checkout.Quote"

	if err := ctx.Err(); err != nil {
		return domain.Quote{}, fmt.Errorf("%s: %w", op, err)
	}

	user, ok := c.sessions.Current()
	if !ok {
		return domain.Quote{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	b := c.ledger.Snapshot()
	return domain.NewQuote(user.Budget, b.TotalPrice), nil
}

// Checkout debits the user budget by the basket total and clears the
// basket as one transition. On failure neither is changed.
func (c *Checkout) Checkout(ctx context.Context) (domain.Receipt, error) {
	const op = "Checkout.Checkout"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	var receipt domain.Receipt
	_, err := c.ledger.Settle(ctx, func(b domain.Basket) error {
		return c.sessions.debit(ctx,
			func(u *domain.User) (decimal.Decimal, error) {
				r, err := domain.EvaluateCheckout(u, b, c.now().UTC())
				if err != nil {
					return decimal.Decimal{}, err
				}
				receipt = r
				return r.NewBudget, nil
			},
		)
	})
	if err != nil {
		c.recordFailure(err)
		log.Warn("checkout rejected", "err", err)
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checkout completed",
		"userID", receipt.UserID,
		"totalItems", receipt.TotalItems,
		"totalPrice", receipt.TotalPrice.StringFixed(2),
		"previousBudget", receipt.PreviousBudget.StringFixed(2),
		"newBudget", receipt.NewBudget.StringFixed(2),
	)

	if c.recorder != nil {
		c.recorder.CheckoutSucceeded(receipt)
	}
	c.publish(ctx, receipt)

	return receipt, nil
}

func (c *Checkout) recordFailure(err error) {
	if c.recorder != nil {
		c.recorder.CheckoutFailed(err)
	}
}

func (c *Checkout) publish(ctx context.Context, r domain.Receipt) {
	const op = "Checkout.publish"

	if c.producer == nil {
		return
	}
	if err := c.producer.ProduceCheckout(ctx, r); err != nil {
		slog.Error("failed to publish receipt", "op", op, "userID", r.UserID, "err", err)
	}
}
