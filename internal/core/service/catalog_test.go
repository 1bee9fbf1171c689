package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/niksmo/sweet-shop/internal/adapter/memstore"
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/service"
	"github.com/niksmo/sweet-shop/pkg/hexid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	creator = domain.Principal{UserID: "creator-1"}
	admin   = domain.Principal{UserID: "admin-1", Admin: true}
	someone = domain.Principal{UserID: "someone-else"}
)

func newCatalogService(t *testing.T) (service.CatalogService, *memstore.SweetsRepository) {
	t.Helper()
	sweets := memstore.NewSweetsRepository()
	return service.NewCatalogService(sweets), sweets
}

func TestCatalogServiceCreate(t *testing.T) {
	t.Run("AssignsIDAndDefaults", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet, err := svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Fudge", Price: 2.5, Category: "Chocolate", Stock: 10,
			PurchasedCount: 99, // must be ignored
		})
		require.NoError(t, err)
		assert.True(t, hexid.Valid(sweet.ID))
		assert.Equal(t, domain.CategoryChocolate, sweet.Category)
		assert.Zero(t, sweet.PurchasedCount)
		assert.Equal(t, creator.UserID, sweet.CreatedBy)
		assert.False(t, sweet.CreatedAt.IsZero())
	})

	t.Run("NormalizesUnknownCategory", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet, err := svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Mystery", Price: 1.0, Category: "Gummies",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryOther, sweet.Category)
	})

	t.Run("AllowsZeroPrice", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet, err := svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Free Sample", Price: 0,
		})
		require.NoError(t, err)
		assert.Zero(t, sweet.Price)

		got, err := svc.Get(t.Context(), sweet.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Price)
	})

	t.Run("RequiresPrincipal", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		_, err := svc.Create(t.Context(), domain.Principal{}, domain.Sweet{
			Name: "Fudge", Price: 2.5,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("RejectsInvalidPayload", func(t *testing.T) {
		svc, _ := newCatalogService(t)

		_, err := svc.Create(t.Context(), creator, domain.Sweet{Price: 2.5})
		assert.ErrorIs(t, err, domain.ErrInvalidSweet)

		_, err = svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Fudge", Price: -1,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidSweet)
	})
}

func TestCatalogServiceUpdate(t *testing.T) {
	create := func(t *testing.T, svc service.CatalogService) domain.Sweet {
		t.Helper()
		sweet, err := svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Fudge", Price: 2.5, Category: "Chocolate",
		})
		require.NoError(t, err)
		return sweet
	}

	t.Run("CreatorMayEdit", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet := create(t, svc)

		updated, err := svc.Update(t.Context(), creator, sweet.ID, domain.SweetUpdate{
			Name: "Dark Fudge", Price: 3.0, Category: "Chocolate",
		})
		require.NoError(t, err)
		assert.Equal(t, "Dark Fudge", updated.Name)
		assert.InDelta(t, 3.0, updated.Price, 1e-9)
	})

	t.Run("AdminMayEdit", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet := create(t, svc)

		_, err := svc.Update(t.Context(), admin, sweet.ID, domain.SweetUpdate{
			Name: "Fudge", Price: 2.5, Category: "Chocolate",
		})
		assert.NoError(t, err)
	})

	t.Run("OthersForbidden", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet := create(t, svc)

		_, err := svc.Update(t.Context(), someone, sweet.ID, domain.SweetUpdate{
			Name: "Hijacked", Price: 0.1,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("UnknownSweet", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		_, err := svc.Update(t.Context(), admin, testSweetID("ff"), domain.SweetUpdate{
			Name: "X", Price: 1.0,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogServiceDelete(t *testing.T) {
	t.Run("AdminOnly", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		sweet, err := svc.Create(t.Context(), creator, domain.Sweet{
			Name: "Fudge", Price: 2.5,
		})
		require.NoError(t, err)

		err = svc.Delete(t.Context(), creator, sweet.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		err = svc.Delete(t.Context(), admin, sweet.ID)
		require.NoError(t, err)

		_, err = svc.Get(t.Context(), sweet.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogServiceSearch(t *testing.T) {
	seed := func(t *testing.T, svc service.CatalogService) {
		t.Helper()
		for _, sw := range []domain.Sweet{
			{Name: "Dark Truffle", Price: 5.0, Category: "Chocolate"},
			{Name: "Milk Truffle", Price: 4.0, Category: "Chocolate"},
			{Name: "Gumdrop", Price: 1.0, Category: "Candy"},
		} {
			_, err := svc.Create(t.Context(), creator, sw)
			require.NoError(t, err)
		}
	}

	t.Run("ByQuery", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		seed(t, svc)

		got, err := svc.Search(t.Context(), domain.SearchFilter{Query: "truffle"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("ByCategory", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		seed(t, svc)

		got, err := svc.Search(t.Context(), domain.SearchFilter{
			Category: domain.CategoryCandy,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Gumdrop", got[0].Name)
	})

	t.Run("ByPriceRange", func(t *testing.T) {
		svc, _ := newCatalogService(t)
		seed(t, svc)

		got, err := svc.Search(t.Context(), domain.SearchFilter{
			MinPrice: 3.5, MaxPrice: 4.5, HasMin: true, HasMax: true,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Milk Truffle", got[0].Name)
	})
}

func TestCatalogServicePopular(t *testing.T) {
	t.Run("OrderedAndCapped", func(t *testing.T) {
		svc, sweets := newCatalogService(t)
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		for i := range 15 {
			seedSweet(t, sweets, domain.Sweet{
				ID:             testSweetID(fmt.Sprintf("%02d", i)),
				Name:           "Sweet",
				Price:          1.0,
				PurchasedCount: i,
				CreatedAt:      base.Add(time.Duration(i) * time.Hour),
			})
		}

		got, err := svc.Popular(t.Context())
		require.NoError(t, err)
		require.Len(t, got, service.PopularityCap)

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t,
				got[i-1].PurchasedCount, got[i].PurchasedCount)
		}
	})
}
