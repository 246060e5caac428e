package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// ApplyGokaTLS makes every goka processor and view created afterwards
// connect over TLS. A nil config is ignored.
func ApplyGokaTLS(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func receiptToSchemaV1(r domain.Receipt) (s schema.CheckoutV1) {
	s.UserID = r.UserID
	s.TotalItems = r.TotalItems
	s.TotalPrice = r.TotalPrice.InexactFloat64()
	s.PreviousBudget = r.PreviousBudget.InexactFloat64()
	s.NewBudget = r.NewBudget.InexactFloat64()
	s.CheckedOutAt = r.CheckedOutAt.UTC()

	s.Items = make([]schema.CheckoutItemV1, len(r.Lines))
	for i, l := range r.Lines {
		s.Items[i].ProductID = int64(l.Product.ID)
		s.Items[i].Title = l.Product.Title
		s.Items[i].Category = l.Product.Category
		s.Items[i].Price = l.Product.Price.InexactFloat64()
		s.Items[i].Quantity = l.Quantity
	}
	return
}

func spendingFromSchemaV1(s schema.SpendingV1) domain.Spending {
	return domain.Spending{
		UserID:         s.UserID,
		TotalSpent:     decimal.NewFromFloat(s.TotalSpent),
		Checkouts:      s.Checkouts,
		LastCheckoutAt: s.LastCheckoutAt,
	}
}

// accumulateSpending folds one checkout into the user's running total.
// Sums are taken in decimal so repeated float additions do not drift.
func accumulateSpending(
	prev schema.SpendingV1, event schema.CheckoutV1,
) schema.SpendingV1 {
	total := decimal.NewFromFloat(prev.TotalSpent).
		Add(decimal.NewFromFloat(event.TotalPrice))

	next := schema.SpendingV1{
		UserID:         event.UserID,
		TotalSpent:     total.InexactFloat64(),
		Checkouts:      prev.Checkouts + 1,
		LastCheckoutAt: prev.LastCheckoutAt,
	}
	if event.CheckedOutAt.After(next.LastCheckoutAt) {
		next.LastCheckoutAt = event.CheckedOutAt
	}
	return next
}
