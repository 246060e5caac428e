package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
)

var _ port.SpendingReader = (*SpendingView)(nil)

type viewGetter interface {
	Get(key string) (any, error)
}

// A SpendingView serves the spending group table.
type SpendingView struct {
	gv     *goka.View
	getter viewGetter
}

func NewSpendingView(
	seedBrokers []string, spendingGroup string,
) (*SpendingView, error) {
	const op = "NewSpendingView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(spendingGroup)),
		newSpendingCodec(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &SpendingView{gv: gv, getter: gv}, nil
}

func (v *SpendingView) Run(ctx context.Context) {
	const op = "SpendingView.Run"
	log := slog.With("op", op)

	log.Info("running")
	if err := v.gv.Run(ctx); err != nil {
		log.Error("unexpected fail on run", "err", err)
		return
	}
	log.Info("stopped")
}

func (v *SpendingView) Spending(
	ctx context.Context, userID string,
) (domain.Spending, error) {
	const op = "SpendingView.Spending"

	if err := ctx.Err(); err != nil {
		return domain.Spending{}, opErr(err, op)
	}

	value, err := v.getter.Get(userID)
	if err != nil {
		return domain.Spending{}, opErr(err, op)
	}

	if value == nil {
		return domain.Spending{UserID: userID, TotalSpent: decimal.Zero}, nil
	}

	s, ok := value.(schema.SpendingV1)
	if !ok {
		err := fmt.Errorf("%w: %T", ErrInvalidValueType, value)
		return domain.Spending{}, opErr(err, op)
	}
	return spendingFromSchemaV1(s), nil
}
