package memstore

import (
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.CartArchive = (*CartArchive)(nil)

// CartArchive is an in-memory [port.CartArchive] for tests and
// ephemeral sessions.
type CartArchive struct {
	mu   sync.Mutex
	cart domain.Cart
}

func NewCartArchive() *CartArchive {
	return &CartArchive{}
}

func (a *CartArchive) Load() (domain.Cart, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := domain.Cart{UserID: a.cart.UserID}
	out.Lines = append(out.Lines, a.cart.Lines...)
	return out, nil
}

func (a *CartArchive) Save(cart domain.Cart) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cart = domain.Cart{UserID: cart.UserID}
	a.cart.Lines = append(a.cart.Lines, cart.Lines...)
	return nil
}
