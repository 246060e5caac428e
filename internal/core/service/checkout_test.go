package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorderStub struct {
	succeeded []domain.Receipt
	failed    []error
}

func (r *recorderStub) CheckoutSucceeded(rc domain.Receipt) {
	r.succeeded = append(r.succeeded, rc)
}

func (r *recorderStub) CheckoutFailed(err error) {
	r.failed = append(r.failed, err)
}

type budgetProbe struct {
	sessions *service.Sessions
	budgets  []string
}

func (p *budgetProbe) BasketChanged(evt domain.BasketEvent) {
	if evt.Kind != domain.EventCheckedOut {
		return
	}
	u, _ := p.sessions.Current()
	p.budgets = append(p.budgets, u.Budget.String())
}

type checkoutFixture struct {
	ledger   *service.Ledger
	sessions *service.Sessions
	producer *MockCheckoutProducer
	recorder *recorderStub
	checkout *service.Checkout
}

var checkedOutAt = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newCheckoutFixture(t *testing.T, email, password string) checkoutFixture {
	t.Helper()

	users := new(MockUserDirectory)
	users.On("ListUsers", mock.Anything).Return(knownUsers(), nil)

	f := checkoutFixture{
		ledger:   service.NewLedger(nil),
		sessions: service.NewSessions(nil, users),
		producer: new(MockCheckoutProducer),
		recorder: new(recorderStub),
	}
	if email != "" {
		loginAs(t, f.sessions, email, password)
	}
	f.checkout = service.NewCheckout(f.ledger, f.sessions,
		service.CheckoutProducerOpt(f.producer),
		service.CheckoutRecorderOpt(f.recorder),
		service.CheckoutClockOpt(func() time.Time { return checkedOutAt }),
	)
	return f
}

func TestCheckoutSuccess(t *testing.T) {
	f := newCheckoutFixture(t, "john@gmail.com", "Secret1")
	probe := &budgetProbe{sessions: f.sessions}
	f.ledger.Subscribe(probe)

	ctx := t.Context()
	f.ledger.Add(ctx, product(1, "10"), 2)
	f.ledger.Add(ctx, product(2, "5"), 2)

	f.producer.On("ProduceCheckout", mock.Anything, mock.MatchedBy(
		func(r domain.Receipt) bool { return r.UserID == "u-1" },
	)).Return(nil).Once()

	r, err := f.checkout.Checkout(ctx)
	require.NoError(t, err)

	assert.Equal(t, "u-1", r.UserID)
	assert.Equal(t, 4, r.TotalItems)
	assert.Equal(t, "30", r.TotalPrice.String())
	assert.Equal(t, "50", r.PreviousBudget.String())
	assert.Equal(t, "20", r.NewBudget.String())
	assert.Equal(t, checkedOutAt, r.CheckedOutAt)
	assert.Len(t, r.Lines, 2)

	u, ok := f.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "20", u.Budget.String())
	assert.True(t, f.ledger.Snapshot().IsEmpty())

	assert.Equal(t, []string{"20"}, probe.budgets)
	require.Len(t, f.recorder.succeeded, 1)
	assert.Empty(t, f.recorder.failed)
	f.producer.AssertExpectations(t)
}

func TestCheckoutExactBudget(t *testing.T) {
	f := newCheckoutFixture(t, "jane@gmail.com", "Secret2")
	f.producer.On("ProduceCheckout", mock.Anything, mock.Anything).Return(nil)

	f.ledger.Add(t.Context(), product(1, "20"), 1)

	r, err := f.checkout.Checkout(t.Context())
	require.NoError(t, err)
	assert.True(t, r.NewBudget.IsZero())
}

func TestCheckoutInsufficientBudget(t *testing.T) {
	f := newCheckoutFixture(t, "jane@gmail.com", "Secret2")
	ctx := t.Context()
	f.ledger.Add(ctx, product(1, "10"), 2)
	f.ledger.Add(ctx, product(2, "5"), 2)

	_, err := f.checkout.Checkout(ctx)
	require.ErrorIs(t, err, domain.ErrInsufficientBudget)

	var berr *domain.InsufficientBudgetError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "20", berr.Budget.String())
	assert.Equal(t, "30", berr.Required.String())

	u, _ := f.sessions.Current()
	assert.Equal(t, "20", u.Budget.String())
	b := f.ledger.Snapshot()
	assert.Equal(t, 4, b.TotalItems)
	assert.Equal(t, "30", b.TotalPrice.String())

	require.Len(t, f.recorder.failed, 1)
	f.producer.AssertNotCalled(t, "ProduceCheckout", mock.Anything, mock.Anything)
}

func TestCheckoutUnauthenticated(t *testing.T) {
	f := newCheckoutFixture(t, "", "")
	f.ledger.Add(t.Context(), product(1, "10"), 1)

	_, err := f.checkout.Checkout(t.Context())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 1, f.ledger.Snapshot().TotalItems)
}

func TestCheckoutEmptyBasket(t *testing.T) {
	f := newCheckoutFixture(t, "john@gmail.com", "Secret1")

	_, err := f.checkout.Checkout(t.Context())
	require.ErrorIs(t, err, domain.ErrEmptyBasket)

	u, _ := f.sessions.Current()
	assert.Equal(t, "50", u.Budget.String())
}

func TestCheckoutPublishFailureIsNotFatal(t *testing.T) {
	f := newCheckoutFixture(t, "john@gmail.com", "Secret1")
	f.producer.On("ProduceCheckout", mock.Anything, mock.Anything).
		Return(errors.New("broker unavailable"))

	f.ledger.Add(t.Context(), product(1, "10"), 1)

	r, err := f.checkout.Checkout(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "40", r.NewBudget.String())
}

func TestCheckoutCanceledContext(t *testing.T) {
	f := newCheckoutFixture(t, "john@gmail.com", "Secret1")
	f.ledger.Add(t.Context(), product(1, "10"), 1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := f.checkout.Checkout(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.ledger.Snapshot().TotalItems)
}

func TestQuote(t *testing.T) {
	t.Run("Affordable", func(t *testing.T) {
		f := newCheckoutFixture(t, "john@gmail.com", "Secret1")
		f.ledger.Add(t.Context(), product(1, "12.5"), 2)

		q, err := f.checkout.Quote(t.Context())
		require.NoError(t, err)
		assert.True(t, q.Affordable)
		assert.Equal(t, "25", q.Remaining.String())
		assert.Equal(t, "25", q.TotalPrice.String())
		assert.Equal(t, "50", q.Budget.String())
	})

	t.Run("NotAffordable", func(t *testing.T) {
		f := newCheckoutFixture(t, "jane@gmail.com", "Secret2")
		f.ledger.Add(t.Context(), product(1, "20.01"), 1)

		q, err := f.checkout.Quote(t.Context())
		require.NoError(t, err)
		assert.False(t, q.Affordable)
		assert.Equal(t, "-0.01", q.Remaining.String())
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		f := newCheckoutFixture(t, "", "")
		_, err := f.checkout.Quote(t.Context())
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
