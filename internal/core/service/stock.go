package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/pkg/hexid"
)

var _ port.StockPurchaser = (*StockService)(nil)
var _ port.Restocker = (*StockService)(nil)

// StockService owns the stock/purchased_count pair. Correctness under
// concurrent purchases comes from the repository's conditional update,
// never from an in-process lock.
type StockService struct {
	sweets  port.SweetsRepository
	signals port.SignalsProducer
}

func NewStockService(
	sweets port.SweetsRepository, signals port.SignalsProducer,
) StockService {
	return StockService{sweets, signals}
}

func (s StockService) Purchase(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "StockService.Purchase"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateStockArgs(sweetID, quantity); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	sweet, err := s.sweets.ReserveStock(ctx, sweetID, quantity)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	s.emitPurchaseSignal(ctx, sweet, quantity)
	return sweet, nil
}

func (s StockService) Restock(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "StockService.Restock"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateStockArgs(sweetID, quantity); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	sweet, err := s.sweets.AddStock(ctx, sweetID, quantity)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return sweet, nil
}

// emitPurchaseSignal reports the purchase to the signal pipeline.
// The decrement already committed, so a produce failure is logged
// and never propagated.
func (s StockService) emitPurchaseSignal(
	ctx context.Context, sweet domain.Sweet, quantity int,
) {
	const op = "StockService.emitPurchaseSignal"
	log := slog.With("op", op)

	if s.signals == nil {
		return
	}

	evt := domain.SignalEvent{
		Kind:     domain.SignalPurchase,
		UserID:   userIDFromContext(ctx),
		SweetID:  sweet.ID,
		Category: sweet.Category,
		Price:    sweet.Price,
		Quantity: quantity,
		UnixMs:   nowUnixMs(),
	}
	if err := s.signals.ProduceSignal(ctx, evt); err != nil {
		log.Error("failed to produce purchase signal",
			"sweetID", sweet.ID, "err", err)
	}
}

// nowUnixMs is swappable in tests.
var nowUnixMs = func() int64 { return time.Now().UnixMilli() }

func validateStockArgs(sweetID string, quantity int) error {
	if !hexid.Valid(sweetID) {
		return domain.ErrInvalidSweetID
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

type principalCtxKey struct{}

// WithPrincipal binds the authenticated caller to the request context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p, ok
}

func userIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}
