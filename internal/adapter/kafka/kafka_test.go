package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockSerde struct {
	mock.Mock
}

func (m *MockSerde) Encode(v any) ([]byte, error) {
	args := m.Called(v)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockSerde) Decode(data []byte, v any) error {
	return m.Called(data, v).Error(0)
}

type fakeProducerClient struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (c *fakeProducerClient) ProduceSync(
	_ context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	c.records = append(c.records, rs...)
	res := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		res[i] = kgo.ProduceResult{Record: r, Err: c.err}
	}
	return res
}

func (c *fakeProducerClient) Close() {
	c.closed = true
}

type fakeViewGetter map[string]any

func (g fakeViewGetter) Get(key string) (any, error) {
	if v, ok := g[key]; ok {
		if err, ok := v.(error); ok {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

var checkedOutAt = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func testReceipt() domain.Receipt {
	b, _ := domain.Basket{}.Add(domain.Product{
		ID:       3,
		Title:    "Mens Cotton Jacket",
		Category: "men's clothing",
		Price:    decimal.RequireFromString("55.99"),
	}, 2)
	return domain.Receipt{
		UserID:         "u-1",
		Lines:          b.Lines,
		TotalItems:     b.TotalItems,
		TotalPrice:     b.TotalPrice,
		PreviousBudget: decimal.NewFromInt(200),
		NewBudget:      decimal.RequireFromString("88.02"),
		CheckedOutAt:   checkedOutAt,
	}
}

func TestReceiptToSchemaV1(t *testing.T) {
	s := receiptToSchemaV1(testReceipt())

	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, 2, s.TotalItems)
	assert.Equal(t, 111.98, s.TotalPrice)
	assert.Equal(t, 88.02, s.NewBudget)
	assert.Equal(t, checkedOutAt, s.CheckedOutAt)
	require.Len(t, s.Items, 1)
	assert.Equal(t, schema.CheckoutItemV1{
		ProductID: 3,
		Title:     "Mens Cotton Jacket",
		Category:  "men's clothing",
		Price:     55.99,
		Quantity:  2,
	}, s.Items[0])
}

func TestAccumulateSpending(t *testing.T) {
	first := accumulateSpending(schema.SpendingV1{}, schema.CheckoutV1{
		UserID: "u-1", TotalPrice: 0.1, CheckedOutAt: checkedOutAt,
	})
	assert.Equal(t, "u-1", first.UserID)
	assert.Equal(t, int64(1), first.Checkouts)
	assert.Equal(t, 0.1, first.TotalSpent)
	assert.Equal(t, checkedOutAt, first.LastCheckoutAt)

	second := accumulateSpending(first, schema.CheckoutV1{
		UserID: "u-1", TotalPrice: 0.2, CheckedOutAt: checkedOutAt.Add(-time.Hour),
	})
	assert.Equal(t, int64(2), second.Checkouts)
	assert.Equal(t, 0.3, second.TotalSpent)
	assert.Equal(t, checkedOutAt, second.LastCheckoutAt, "older event keeps latest time")
}

func TestSpendingCodec(t *testing.T) {
	c := newSpendingCodec()

	in := schema.SpendingV1{
		UserID:         "u-1",
		TotalSpent:     320.5,
		Checkouts:      4,
		LastCheckoutAt: checkedOutAt,
	}
	data, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(data)
	require.NoError(t, err)
	s, ok := out.(schema.SpendingV1)
	require.True(t, ok)
	assert.Equal(t, in.UserID, s.UserID)
	assert.Equal(t, in.TotalSpent, s.TotalSpent)
	assert.Equal(t, in.Checkouts, s.Checkouts)
	assert.True(t, in.LastCheckoutAt.Equal(s.LastCheckoutAt))

	_, err = c.Encode("not spending")
	require.ErrorIs(t, err, ErrInvalidValueType)
}

func TestCheckoutEventCodec(t *testing.T) {
	t.Run("Encode", func(t *testing.T) {
		serde := new(MockSerde)
		v := schema.CheckoutV1{UserID: "u-1"}
		serde.On("Encode", v).Return([]byte{0, 1}, nil)

		c := newCheckoutEventCodec(serde)
		data, err := c.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1}, data)

		_, err = c.Encode(42)
		require.ErrorIs(t, err, ErrInvalidValueType)
	})

	t.Run("Decode", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Decode", []byte{0, 1}, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(1).(*schema.CheckoutV1).UserID = "u-1"
			}).
			Return(nil)
		serde.On("Decode", []byte{9}, mock.Anything).Return(errors.New("unknown schema id"))

		c := newCheckoutEventCodec(serde)
		v, err := c.Decode([]byte{0, 1})
		require.NoError(t, err)
		assert.Equal(t, "u-1", v.(schema.CheckoutV1).UserID)

		_, err = c.Decode([]byte{9})
		require.Error(t, err)
	})
}

func TestCheckoutProducer(t *testing.T) {
	t.Run("TooFewOpts", func(t *testing.T) {
		_, err := NewCheckoutProducer(ProducerEncoderOpt(new(MockSerde)))
		require.ErrorIs(t, err, ErrTooFewOpts)
	})

	t.Run("Produce", func(t *testing.T) {
		cl := new(fakeProducerClient)
		serde := new(MockSerde)
		serde.On("Encode", mock.AnythingOfType("schema.CheckoutV1")).
			Return([]byte("encoded"), nil)

		p, err := NewCheckoutProducer(
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(serde),
		)
		require.NoError(t, err)

		require.NoError(t, p.ProduceCheckout(t.Context(), testReceipt()))
		require.Len(t, cl.records, 1)
		assert.Equal(t, []byte("u-1"), cl.records[0].Key)
		assert.Equal(t, []byte("encoded"), cl.records[0].Value)
		assert.Equal(t, checkedOutAt, cl.records[0].Timestamp)

		p.Close()
		assert.True(t, cl.closed)
	})

	t.Run("BrokerFailure", func(t *testing.T) {
		errBroker := errors.New("not enough replicas")
		cl := &fakeProducerClient{err: errBroker}
		serde := new(MockSerde)
		serde.On("Encode", mock.Anything).Return([]byte("encoded"), nil)

		p, err := NewCheckoutProducer(
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(serde),
		)
		require.NoError(t, err)

		err = p.ProduceCheckout(t.Context(), testReceipt())
		require.ErrorIs(t, err, errBroker)
	})
}

func TestSpendingView(t *testing.T) {
	v := &SpendingView{getter: fakeViewGetter{
		"u-1": schema.SpendingV1{
			UserID:         "u-1",
			TotalSpent:     150.25,
			Checkouts:      2,
			LastCheckoutAt: checkedOutAt,
		},
		"u-2":   "garbage",
		"u-err": errors.New("view not running"),
	}}

	s, err := v.Spending(t.Context(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "150.25", s.TotalSpent.String())
	assert.Equal(t, int64(2), s.Checkouts)

	s, err = v.Spending(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", s.UserID)
	assert.True(t, s.TotalSpent.IsZero())

	_, err = v.Spending(t.Context(), "u-2")
	require.ErrorIs(t, err, ErrInvalidValueType)

	_, err = v.Spending(t.Context(), "u-err")
	require.Error(t, err)
}
