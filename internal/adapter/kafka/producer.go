package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.CheckoutProducer = (*CheckoutProducer)(nil)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to seedBrokers and produces to topic.
// A nil tlsConfig means plaintext.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerWithClientOpt uses an existing client.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A CheckoutProducer publishes confirmed checkouts keyed by user ID.
type CheckoutProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewCheckoutProducer(opts ...ProducerOpt) (CheckoutProducer, error) {
	const op = "NewCheckoutProducer"

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CheckoutProducer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.encoder == nil {
		return CheckoutProducer{}, opErr(ErrTooFewOpts, op)
	}

	opPrefix := "CheckoutProducer"
	return CheckoutProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p CheckoutProducer) Close() {
	p.producer.close()
}

func (p CheckoutProducer) ProduceCheckout(
	ctx context.Context, r domain.Receipt,
) error {
	const op = "ProduceCheckout"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	rec, err := p.createRecord(r)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, rec); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	slog.Debug("checkout produced",
		"op", makeOp(p.opPrefix, op),
		"userID", r.UserID,
		"totalPrice", r.TotalPrice.StringFixed(2),
	)
	return nil
}

func (p CheckoutProducer) createRecord(r domain.Receipt) (*kgo.Record, error) {
	const op = "createRecord"

	s := receiptToSchemaV1(r)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{
		Key:       []byte(s.UserID),
		Value:     b,
		Timestamp: s.CheckedOutAt,
	}, nil
}
