package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/pkg/schema"
)

var _ port.PopularityProcessor = (*PopularityProcessor)(nil)
var _ port.PopularityIndex = (*PopularityView)(nil)

// A signalEventCodec used for serde [schema.SignalEventV1]
type signalEventCodec struct {
	serde Serde
}

func newSignalEventCodec(s Serde) signalEventCodec {
	return signalEventCodec{s}
}

func (c signalEventCodec) Encode(v any) ([]byte, error) {
	const op = "signalEventCodec.Encode"
	if _, ok := v.(schema.SignalEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c signalEventCodec) Decode(data []byte) (any, error) {
	const op = "signalEventCodec.Decode"
	var s schema.SignalEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

type CountValue int64

type countValueCodec struct{}

func (countValueCodec) Encode(v any) ([]byte, error) {
	const op = "countValueCodec.Encode"
	cv, ok := v.(CountValue)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt([]byte(nil), int64(cv), 10), nil
}

func (countValueCodec) Decode(data []byte) (any, error) {
	const op = "countValueCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return CountValue(n), nil
}

// A PopularityProcessor accumulates the cumulative purchased quantity
// per sweet from the purchase signal stream. Inbound records are keyed
// by user, so they are rerouted through the loopback keyed by sweet
// before the counter update.
type PopularityProcessor struct {
	gp *goka.Processor
}

func NewPopularityProcessor(
	seedBrokers []string, purchaseStream, group string, signalSerde Serde,
) (*PopularityProcessor, error) {
	const op = "NewPopularityProcessor"

	p := &PopularityProcessor{}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(purchaseStream),
			newSignalEventCodec(signalSerde),
			p.rerouteFn,
		),
		goka.Loop(newSignalEventCodec(signalSerde), p.accumulateFn),
		goka.Persist(countValueCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.gp = gp
	return p, nil
}

func (p *PopularityProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "PopularityProcessor.Run"
	log := slog.With("op", op)

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	wg.Done()
	log.Info("running")
}

func (p *PopularityProcessor) runProc(
	ctx context.Context, stopFn context.CancelFunc,
) {
	const op = "PopularityProcessor.runProc"
	log := slog.With("op", op)

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *PopularityProcessor) waitForReady(ctx context.Context) {
	const op = "PopularityProcessor.waitForReady"
	log := slog.With("op", op)

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *PopularityProcessor) Close() {
	const op = "PopularityProcessor.Close"
	log := slog.With("op", op)

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

func (p *PopularityProcessor) rerouteFn(ctx goka.Context, msg any) {
	s, ok := msg.(schema.SignalEventV1)
	if !ok {
		return
	}
	ctx.Loopback(s.SweetID, s)
}

func (p *PopularityProcessor) accumulateFn(ctx goka.Context, msg any) {
	s, ok := msg.(schema.SignalEventV1)
	if !ok {
		return
	}

	var count CountValue
	if v := ctx.Value(); v != nil {
		count, _ = v.(CountValue)
	}
	ctx.SetValue(count + CountValue(s.Quantity))
}

// A PopularityView serves the processor's group table as the
// popularity index consumed by the recommendation scorer.
type PopularityView struct {
	gv *goka.View
}

func NewPopularityView(
	seedBrokers []string, group string,
) (*PopularityView, error) {
	const op = "NewPopularityView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		countValueCodec{},
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &PopularityView{gv}, nil
}

func (v *PopularityView) Run(ctx context.Context) {
	const op = "PopularityView.Run"
	log := slog.With("op", op)

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

func (v *PopularityView) PurchaseCount(sweetID string) (int, bool) {
	const op = "PopularityView.PurchaseCount"
	log := slog.With("op", op)

	val, err := v.gv.Get(sweetID)
	if err != nil {
		log.Error("failed to get view data", "err", err)
		return 0, false
	}
	if val == nil {
		return 0, false
	}

	count, ok := val.(CountValue)
	if !ok {
		return 0, false
	}
	return int(count), true
}
