package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hamba/avro/v2"
	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.SpendingProcessor = (*SpendingProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A checkoutEventCodec used for serde [schema.CheckoutV1]
type checkoutEventCodec struct {
	serde Serde
}

func newCheckoutEventCodec(s Serde) checkoutEventCodec {
	return checkoutEventCodec{s}
}

func (c checkoutEventCodec) Encode(v any) ([]byte, error) {
	const op = "checkoutEventCodec.Encode"
	if _, ok := v.(schema.CheckoutV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c checkoutEventCodec) Decode(data []byte) (any, error) {
	const op = "checkoutEventCodec.Decode"
	var s schema.CheckoutV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A spendingCodec stores [schema.SpendingV1] in the group table as
// plain avro. The table is private to the group, so no registry ID.
type spendingCodec struct {
	avroSchema avro.Schema
}

func newSpendingCodec() spendingCodec {
	return spendingCodec{schema.SpendingV1Avro()}
}

func (c spendingCodec) Encode(v any) ([]byte, error) {
	const op = "spendingCodec.Encode"
	s, ok := v.(schema.SpendingV1)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	data, err := avro.Marshal(c.avroSchema, s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return data, nil
}

func (c spendingCodec) Decode(data []byte) (any, error) {
	const op = "spendingCodec.Decode"
	var s schema.SpendingV1
	if err := avro.Unmarshal(c.avroSchema, data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A SpendingProcessor folds the checkouts stream into a per-user
// spending group table.
type SpendingProcessor struct {
	opPrefix string
	proc     processor
}

func NewSpendingProcessor(
	seedBrokers []string,
	checkoutsStream string,
	spendingGroup string,
	checkoutSerde Serde,
) (*SpendingProcessor, error) {
	const op = "NewSpendingProcessor"

	p := SpendingProcessor{opPrefix: "SpendingProcessor"}

	gg := goka.DefineGroup(goka.Group(spendingGroup),
		goka.Input(
			goka.Stream(checkoutsStream),
			newCheckoutEventCodec(checkoutSerde),
			p.processFn,
		),
		goka.Persist(newSpendingCodec()),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *SpendingProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *SpendingProcessor) Close() {
	p.proc.close()
}

func (p *SpendingProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	event, ok := msg.(schema.CheckoutV1)
	if !ok {
		log.Error("unexpected message", "key", ctx.Key())
		return
	}

	prev, _ := ctx.Value().(schema.SpendingV1)
	next := accumulateSpending(prev, event)
	ctx.SetValue(next)

	log.Info("spending updated",
		"userID", next.UserID,
		"checkouts", next.Checkouts,
		"totalSpent", next.TotalSpent,
	)
}
