package service

import (
	"fmt"
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

// LocalCart is the client-held (unauthenticated) cart with an explicit
// lifecycle: load on construction, save on every mutation through the
// injected [port.CartArchive]. Subscribers registered at the time of a
// mutation are notified once; there is no replay for late subscribers.
type LocalCart struct {
	mu      sync.Mutex
	cart    domain.Cart
	archive port.CartArchive

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

func NewLocalCart(archive port.CartArchive) (*LocalCart, error) {
	const op = "NewLocalCart"

	cart, err := archive.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LocalCart{
		cart:    cart,
		archive: archive,
		subs:    make(map[int]func()),
	}, nil
}

// Subscribe registers fn for change notification and returns an
// unsubscribe func.
func (c *LocalCart) Subscribe(fn func()) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *LocalCart) AddItem(line domain.CartLine) error {
	const op = "LocalCart.AddItem"

	if err := c.mutate(func() { c.cart.AddItem(line) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *LocalCart) RemoveItem(sweetID string) error {
	const op = "LocalCart.RemoveItem"

	if err := c.mutate(func() { c.cart.RemoveItem(sweetID) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *LocalCart) SetQuantity(sweetID string, quantity int) error {
	const op = "LocalCart.SetQuantity"

	if err := c.mutate(func() { c.cart.SetQuantity(sweetID, quantity) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *LocalCart) Clear() error {
	const op = "LocalCart.Clear"

	if err := c.mutate(func() { c.cart.Clear() }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *LocalCart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Subtotal()
}

// Snapshot returns a copy of the current lines for syncing to the
// server-of-record cart on login.
func (c *LocalCart) Snapshot() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := domain.Cart{UserID: c.cart.UserID}
	out.Lines = append(out.Lines, c.cart.Lines...)
	return out
}

func (c *LocalCart) mutate(apply func()) error {
	c.mu.Lock()
	apply()
	err := c.archive.Save(c.cart)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	c.notify()
	return nil
}

func (c *LocalCart) notify() {
	c.subMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
