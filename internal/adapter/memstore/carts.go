package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.CartsRepository = (*CartsRepository)(nil)

type CartsRepository struct {
	mu sync.RWMutex
	m  map[string][]domain.CartLine
}

func NewCartsRepository() *CartsRepository {
	return &CartsRepository{m: make(map[string][]domain.CartLine)}
}

func (r *CartsRepository) ReplaceCart(
	ctx context.Context, userID string, lines []domain.CartLine,
) error {
	const op = "memstore.CartsRepository.ReplaceCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stored := make([]domain.CartLine, len(lines))
	copy(stored, lines)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[userID] = stored
	return nil
}

func (r *CartsRepository) GetCart(
	ctx context.Context, userID string,
) (domain.Cart, error) {
	const op = "memstore.CartsRepository.GetCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cart := domain.Cart{UserID: userID}
	cart.Lines = append(cart.Lines, r.m[userID]...)
	return cart, nil
}
