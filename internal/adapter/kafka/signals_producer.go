package kafka

import (
	"context"
	"crypto/tls"
	"log/slog"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.SignalsProducer = (*SignalsProducer)(nil)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kgoOpts := append(maybeTLSOpt(tlsConfig),
			kgo.SeedBrokers(seedBrokers...),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)
		cl, err := kgo.NewClient(kgoOpts...)
		if err != nil {
			return err
		}
		if err := cl.Ping(ctx); err != nil {
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return opErr(ErrInvalidValueType, "ProducerEncoderOpt")
		}
		opts.encoder = encoder
		return nil
	}
}

// A SignalsProducer publishes view and purchase signal events, keyed
// by user so one user's activity stays ordered within a partition.
type SignalsProducer struct {
	cl            ProducerClient
	encoder       Encoder
	viewTopic     string
	purchaseTopic string
}

func NewSignalsProducer(
	viewTopic, purchaseTopic string, opts ...ProducerOpt,
) (SignalsProducer, error) {
	const op = "NewSignalsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return SignalsProducer{}, opErr(err, op)
		}
	}

	return SignalsProducer{
		cl:            options.cl,
		encoder:       options.encoder,
		viewTopic:     viewTopic,
		purchaseTopic: purchaseTopic,
	}, nil
}

func (p SignalsProducer) Close() {
	const op = "SignalsProducer.Close"
	log := slog.With("op", op)

	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p SignalsProducer) ProduceSignal(
	ctx context.Context, evt domain.SignalEvent,
) error {
	const op = "SignalsProducer.ProduceSignal"

	if err := ctx.Err(); err != nil {
		return opErr(err, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, op)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return opErr(err, op)
	}
	return nil
}

func (p SignalsProducer) createRecord(
	evt domain.SignalEvent,
) (*kgo.Record, error) {
	const op = "SignalsProducer.createRecord"

	b, err := p.encoder.Encode(signalToSchemaV1(evt))
	if err != nil {
		return nil, opErr(err, op)
	}

	topic := p.viewTopic
	if evt.Kind == domain.SignalPurchase {
		topic = p.purchaseTopic
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(evt.UserID),
		Value: b,
	}, nil
}
