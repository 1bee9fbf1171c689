package service_test

import (
	"errors"
	"testing"

	"github.com/niksmo/sweet-shop/internal/adapter/memstore"
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingArchive struct {
	saveErr error
}

func (a failingArchive) Load() (domain.Cart, error) { return domain.Cart{}, nil }
func (a failingArchive) Save(domain.Cart) error     { return a.saveErr }

func TestLocalCart(t *testing.T) {
	t.Run("LoadsArchivedCartOnConstruction", func(t *testing.T) {
		archive := memstore.NewCartArchive()
		require.NoError(t, archive.Save(domain.Cart{Lines: []domain.CartLine{
			{SweetID: testSweetID("a1"), Quantity: 2, Price: 1.5},
		}}))

		cart, err := service.NewLocalCart(archive)
		require.NoError(t, err)

		snap := cart.Snapshot()
		require.Len(t, snap.Lines, 1)
		assert.Equal(t, 2, snap.Lines[0].Quantity)
	})

	t.Run("MutationsPersistToArchive", func(t *testing.T) {
		archive := memstore.NewCartArchive()
		cart, err := service.NewLocalCart(archive)
		require.NoError(t, err)

		require.NoError(t, cart.AddItem(domain.CartLine{
			SweetID: testSweetID("a1"), Quantity: 1, Price: 2.0,
		}))
		require.NoError(t, cart.SetQuantity(testSweetID("a1"), 4))

		// a second instance over the same archive sees the saved state
		reloaded, err := service.NewLocalCart(archive)
		require.NoError(t, err)
		snap := reloaded.Snapshot()
		require.Len(t, snap.Lines, 1)
		assert.Equal(t, 4, snap.Lines[0].Quantity)
		assert.InDelta(t, 8.0, reloaded.Subtotal(), 1e-9)
	})

	t.Run("SubscribersNotifiedOnEveryMutation", func(t *testing.T) {
		cart, err := service.NewLocalCart(memstore.NewCartArchive())
		require.NoError(t, err)

		var calls int
		unsubscribe := cart.Subscribe(func() { calls++ })

		require.NoError(t, cart.AddItem(domain.CartLine{
			SweetID: testSweetID("a1"), Quantity: 1,
		}))
		require.NoError(t, cart.RemoveItem(testSweetID("a1")))
		assert.Equal(t, 2, calls)

		unsubscribe()
		require.NoError(t, cart.Clear())
		assert.Equal(t, 2, calls)
	})

	t.Run("NoReplayForLateSubscribers", func(t *testing.T) {
		cart, err := service.NewLocalCart(memstore.NewCartArchive())
		require.NoError(t, err)

		require.NoError(t, cart.AddItem(domain.CartLine{
			SweetID: testSweetID("a1"), Quantity: 1,
		}))

		var calls int
		cart.Subscribe(func() { calls++ })
		assert.Zero(t, calls)
	})

	t.Run("SaveFailurePropagates", func(t *testing.T) {
		saveErr := errors.New("disk full")
		cart, err := service.NewLocalCart(failingArchive{saveErr: saveErr})
		require.NoError(t, err)

		err = cart.AddItem(domain.CartLine{SweetID: testSweetID("a1"), Quantity: 1})
		assert.ErrorIs(t, err, saveErr)
	})
}
