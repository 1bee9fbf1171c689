package service_test

import (
	"testing"
	"time"

	"github.com/niksmo/sweet-shop/internal/adapter/memstore"
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sweetIDs(sweets []domain.Sweet) []string {
	ids := make([]string, len(sweets))
	for i, sw := range sweets {
		ids[i] = sw.ID
	}
	return ids
}

func rankCatalog() []domain.Sweet {
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Sweet{
		{ID: testSweetID("01"), Name: "Truffle", Price: 5.0,
			Category: domain.CategoryChocolate, CreatedAt: createdAt},
		{ID: testSweetID("02"), Name: "Gumdrop", Price: 1.0,
			Category: domain.CategoryCandy, CreatedAt: createdAt},
		{ID: testSweetID("03"), Name: "Eclair", Price: 4.0,
			Category: domain.CategoryPastry, CreatedAt: createdAt},
		{ID: testSweetID("04"), Name: "Bonbon", Price: 4.8,
			Category: domain.CategoryChocolate, CreatedAt: createdAt},
	}
}

func TestRank(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		catalog := rankCatalog()
		bundle := domain.SignalBundle{
			Purchases: []domain.SignalEvent{
				{SweetID: testSweetID("01"), Category: domain.CategoryChocolate,
					Price: 5.0, Quantity: 1},
			},
			Views: []domain.SignalEvent{
				{SweetID: testSweetID("03"), Category: domain.CategoryPastry},
			},
		}

		first := service.Rank(catalog, bundle, nil, 0)
		for range 10 {
			again := service.Rank(rankCatalog(), bundle, nil, 0)
			assert.Equal(t, sweetIDs(first), sweetIDs(again))
		}
	})

	t.Run("TieBreakBySweetID", func(t *testing.T) {
		// identical sweets except id: order must be id ascending
		catalog := []domain.Sweet{
			{ID: testSweetID("0b"), Name: "B", Price: 1.0, Category: domain.CategoryCandy},
			{ID: testSweetID("0a"), Name: "A", Price: 1.0, Category: domain.CategoryCandy},
		}
		got := service.Rank(catalog, domain.SignalBundle{}, nil, 0)
		assert.Equal(t,
			[]string{testSweetID("0a"), testSweetID("0b")}, sweetIDs(got))
	})

	t.Run("ExcludesCartSweets", func(t *testing.T) {
		catalog := rankCatalog()
		exclude := map[string]struct{}{
			testSweetID("01"): {},
			testSweetID("04"): {},
		}
		got := service.Rank(catalog, domain.SignalBundle{}, exclude, 0)
		assert.NotContains(t, sweetIDs(got), testSweetID("01"))
		assert.NotContains(t, sweetIDs(got), testSweetID("04"))
		assert.Len(t, got, 2)
	})

	t.Run("PurchasedCategoryOutranksOthers", func(t *testing.T) {
		catalog := rankCatalog()
		bundle := domain.SignalBundle{
			Purchases: []domain.SignalEvent{
				{SweetID: testSweetID("01"), Category: domain.CategoryChocolate,
					Price: 5.0, Quantity: 1},
			},
		}
		got := service.Rank(catalog, bundle, nil, 0)
		require.NotEmpty(t, got)
		assert.Equal(t, domain.CategoryChocolate, got[0].Category)
	})

	t.Run("ViewedSweetGetsFamiliarityBoost", func(t *testing.T) {
		catalog := []domain.Sweet{
			{ID: testSweetID("0a"), Name: "A", Price: 1.0, Category: domain.CategoryCandy},
			{ID: testSweetID("0b"), Name: "B", Price: 1.0, Category: domain.CategoryCandy},
		}
		bundle := domain.SignalBundle{
			Views: []domain.SignalEvent{
				{SweetID: testSweetID("0b"), Category: domain.CategoryCandy},
			},
		}
		got := service.Rank(catalog, bundle, nil, 0)
		require.Len(t, got, 2)
		assert.Equal(t, testSweetID("0b"), got[0].ID)
	})

	t.Run("CartCategoryWeighsIn", func(t *testing.T) {
		catalog := rankCatalog()
		bundle := domain.SignalBundle{
			CartCategories: []domain.Category{domain.CategoryPastry},
		}
		got := service.Rank(catalog, bundle, nil, 0)
		require.NotEmpty(t, got)
		assert.Equal(t, domain.CategoryPastry, got[0].Category)
	})

	t.Run("PriceProximityBonus", func(t *testing.T) {
		// avg purchase price 5.0: 4.8 is within 20%, 1.0 is far outside
		catalog := []domain.Sweet{
			{ID: testSweetID("0a"), Name: "Cheap", Price: 1.0, Category: domain.CategoryOther},
			{ID: testSweetID("0b"), Name: "Close", Price: 4.8, Category: domain.CategoryOther},
		}
		bundle := domain.SignalBundle{
			Purchases: []domain.SignalEvent{
				{SweetID: testSweetID("ff"), Category: domain.CategoryChocolate,
					Price: 5.0, Quantity: 1},
			},
		}
		got := service.Rank(catalog, bundle, nil, 0)
		require.Len(t, got, 2)
		assert.Equal(t, testSweetID("0b"), got[0].ID)
	})

	t.Run("PopularityLiftsScore", func(t *testing.T) {
		catalog := []domain.Sweet{
			{ID: testSweetID("0a"), Name: "A", Price: 1.0,
				Category: domain.CategoryOther, PurchasedCount: 0},
			{ID: testSweetID("0b"), Name: "B", Price: 1.0,
				Category: domain.CategoryOther, PurchasedCount: 500},
		}
		got := service.Rank(catalog, domain.SignalBundle{}, nil, 0)
		require.Len(t, got, 2)
		assert.Equal(t, testSweetID("0b"), got[0].ID)
	})

	t.Run("LimitTruncates", func(t *testing.T) {
		got := service.Rank(rankCatalog(), domain.SignalBundle{}, nil, 2)
		assert.Len(t, got, 2)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		got := service.Rank(nil, domain.SignalBundle{}, nil, 6)
		assert.Empty(t, got)
	})

	t.Run("NoSignalsStillRanks", func(t *testing.T) {
		got := service.Rank(rankCatalog(), domain.SignalBundle{}, nil, 0)
		assert.Len(t, got, 4)
	})
}

type stubPopularity struct {
	counts map[string]int
}

func (s stubPopularity) PurchaseCount(sweetID string) (int, bool) {
	n, ok := s.counts[sweetID]
	return n, ok
}

func TestRecommendService(t *testing.T) {
	const userID = "user-1"

	newFixture := func(t *testing.T) (
		*memstore.SweetsRepository, *memstore.CartsRepository, *memstore.SignalStore,
	) {
		t.Helper()
		return memstore.NewSweetsRepository(),
			memstore.NewCartsRepository(),
			memstore.NewSignalStore()
	}

	t.Run("ExcludesCartAndUsesSignals", func(t *testing.T) {
		sweets, carts, signals := newFixture(t)
		idA := testSweetID("0a")
		idB := testSweetID("0b")
		idC := testSweetID("0c")
		seedSweet(t, sweets, domain.Sweet{ID: idA, Name: "Truffle", Price: 5.0,
			Category: domain.CategoryChocolate, Stock: 9})
		seedSweet(t, sweets, domain.Sweet{ID: idB, Name: "Bonbon", Price: 4.8,
			Category: domain.CategoryChocolate, Stock: 9})
		seedSweet(t, sweets, domain.Sweet{ID: idC, Name: "Gumdrop", Price: 1.0,
			Category: domain.CategoryCandy, Stock: 9})

		require.NoError(t, carts.ReplaceCart(t.Context(), userID, []domain.CartLine{
			{SweetID: idA, Quantity: 1, Price: 5.0, Category: domain.CategoryChocolate},
		}))
		signals.SaveSignal(domain.SignalEvent{
			Kind: domain.SignalPurchase, UserID: userID, SweetID: idA,
			Category: domain.CategoryChocolate, Price: 5.0, Quantity: 1,
		})

		svc := service.NewRecommendService(sweets, carts, signals, nil, nil)
		got, err := svc.Recommend(t.Context(), userID, 6)
		require.NoError(t, err)

		assert.NotContains(t, sweetIDs(got), idA)
		require.NotEmpty(t, got)
		assert.Equal(t, idB, got[0].ID)
	})

	t.Run("OverlaysStreamedPopularity", func(t *testing.T) {
		sweets, carts, signals := newFixture(t)
		idA := testSweetID("0a")
		idB := testSweetID("0b")
		seedSweet(t, sweets, domain.Sweet{ID: idA, Name: "A", Price: 1.0,
			Category: domain.CategoryOther, Stock: 9})
		seedSweet(t, sweets, domain.Sweet{ID: idB, Name: "B", Price: 1.0,
			Category: domain.CategoryOther, Stock: 9})

		pop := stubPopularity{counts: map[string]int{idB: 900}}
		svc := service.NewRecommendService(sweets, carts, signals, pop, nil)

		got, err := svc.Recommend(t.Context(), userID, 6)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, idB, got[0].ID)
		assert.Equal(t, 900, got[0].PurchasedCount)
	})

	t.Run("RecordViewProducesSignal", func(t *testing.T) {
		sweets, carts, signals := newFixture(t)
		idA := testSweetID("0a")
		seedSweet(t, sweets, domain.Sweet{ID: idA, Name: "Truffle", Price: 5.0,
			Category: domain.CategoryChocolate, Stock: 9})

		producer := new(MockSignalsProducer)
		producer.On("ProduceSignal", mock.Anything, mock.Anything).Return(nil)
		svc := service.NewRecommendService(sweets, carts, signals, nil, producer)

		require.NoError(t, svc.RecordView(t.Context(), userID, idA))

		producer.AssertCalled(t, "ProduceSignal", mock.Anything,
			mock.MatchedBy(func(evt domain.SignalEvent) bool {
				return evt.Kind == domain.SignalView &&
					evt.UserID == userID && evt.SweetID == idA
			}))
	})

	t.Run("RecordViewUnknownSweet", func(t *testing.T) {
		sweets, carts, signals := newFixture(t)
		producer := new(MockSignalsProducer)
		svc := service.NewRecommendService(sweets, carts, signals, nil, producer)

		err := svc.RecordView(t.Context(), userID, testSweetID("ff"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		producer.AssertNotCalled(t, "ProduceSignal", mock.Anything, mock.Anything)
	})
}
