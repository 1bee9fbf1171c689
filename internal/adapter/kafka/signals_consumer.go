package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

var _ port.SignalsConsumer = (*SignalsConsumer)(nil)

type ConsumerOpt func(*consumerOpts) error

type consumerOpts struct {
	cl      ConsumerClient
	decoder Decoder
	saver   port.SignalsSaver
}

func ConsumerClientOpt(
	seedBrokers []string, tlsConfig *tls.Config, group string, topics ...string,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kgoOpts := append(maybeTLSOpt(tlsConfig),
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topics...),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)
		cl, err := kgo.NewClient(kgoOpts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerSaverOpt(saver port.SignalsSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if saver == nil {
			return errors.New("signals saver is nil")
		}
		co.saver = saver
		return nil
	}
}

// A SignalsConsumer feeds consumed view/purchase events into the
// per-user signal store. Delivery is at-least-once: offsets commit
// only after the fetched batch is stored.
type SignalsConsumer struct {
	cl            ConsumerClient
	decoder       Decoder
	saver         port.SignalsSaver
	slowDownTimer *time.Timer
}

func NewSignalsConsumer(opts ...ConsumerOpt) (*SignalsConsumer, error) {
	const op = "NewSignalsConsumer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options consumerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	return &SignalsConsumer{
		cl:            options.cl,
		decoder:       options.decoder,
		saver:         options.saver,
		slowDownTimer: time.NewTimer(0),
	}, nil
}

func (c *SignalsConsumer) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "SignalsConsumer.Run"
	log := slog.With("op", op)

	wg.Done()
	defer stopFn()

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c *SignalsConsumer) Close() {
	const op = "SignalsConsumer.Close"
	log := slog.With("op", op)

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

func (c *SignalsConsumer) consume(ctx context.Context) error {
	const op = "SignalsConsumer.consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, op)
	}

	if fetches.Empty() {
		return nil
	}

	c.processFetches(fetches)

	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, op)
	}
	return nil
}

func (c *SignalsConsumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "SignalsConsumer.pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, op)
	}

	if err := c.handleFetchesErrs(fetches); err != nil {
		return nil, opErr(err, op)
	}
	return fetches, nil
}

func (c *SignalsConsumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errsMessages = append(errsMessages,
				fmt.Sprintf("topic %q partition %d: %q", t, p, err))
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

// processFetches stores each decodable event. A record that fails to
// decode is logged and skipped, never blocking the partition.
func (c *SignalsConsumer) processFetches(fetches kgo.Fetches) {
	const op = "SignalsConsumer.processFetches"
	log := slog.With("op", op)

	fetches.EachRecord(func(r *kgo.Record) {
		var s schema.SignalEventV1
		if err := c.decoder.Decode(r.Value, &s); err != nil {
			log.Warn("failed to decode record",
				"topic", r.Topic, "offset", r.Offset, "err", err)
			return
		}
		c.saver.SaveSignal(signalFromSchemaV1(s))
	})
}

func (c *SignalsConsumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownDelay)
	select {
	case <-ctx.Done():
	case <-c.slowDownTimer.C:
	}
}
