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
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/pkg/schema"
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

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
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

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func maybeTLSOpt(tlsConfig *tls.Config) []kgo.Opt {
	if tlsConfig == nil {
		return nil
	}
	return []kgo.Opt{kgo.DialTLSConfig(tlsConfig)}
}

func signalToSchemaV1(v domain.SignalEvent) (s schema.SignalEventV1) {
	s.Kind = string(v.Kind)
	s.UserID = v.UserID
	s.SweetID = v.SweetID
	s.Category = string(v.Category)
	s.Price = v.Price
	s.Quantity = v.Quantity
	s.UnixMs = v.UnixMs
	return
}

func signalFromSchemaV1(s schema.SignalEventV1) (v domain.SignalEvent) {
	v.Kind = domain.SignalKind(s.Kind)
	v.UserID = s.UserID
	v.SweetID = s.SweetID
	v.Category = domain.Category(s.Category)
	v.Price = s.Price
	v.Quantity = s.Quantity
	v.UnixMs = s.UnixMs
	return
}
