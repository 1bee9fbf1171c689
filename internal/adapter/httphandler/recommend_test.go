package httphandler_test

import (
	"net/http"
	"testing"

	"github.com/niksmo/sweet-shop/internal/adapter/httphandler"
	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationsEndpoint(t *testing.T) {
	idA := testSweetID("0a")
	idB := testSweetID("0b")
	idC := testSweetID("0c")

	seedCatalog := func(t *testing.T, f fixture) {
		f.seed(t, domain.Sweet{ID: idA, Name: "Truffle", Price: 5.0,
			Category: domain.CategoryChocolate, Stock: 9})
		f.seed(t, domain.Sweet{ID: idB, Name: "Bonbon", Price: 4.8,
			Category: domain.CategoryChocolate, Stock: 9})
		f.seed(t, domain.Sweet{ID: idC, Name: "Gumdrop", Price: 1.0,
			Category: domain.CategoryCandy, Stock: 9})
	}

	t.Run("ExcludesCartSweets", func(t *testing.T) {
		f := newFixture(t)
		seedCatalog(t, f)

		res := f.do(t, http.MethodPost, "/v1/cart/sync", buyerToken,
			`{"items": [{"item": "`+idA+`", "quantity": 1}]}`)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = f.do(t, http.MethodGet, "/v1/recommendations", buyerToken, "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody[httphandler.SweetsResponse](t, res)
		for _, sw := range body.Sweets {
			assert.NotEqual(t, idA, sw.ID)
		}
	})

	t.Run("CartCategoryShapesOrder", func(t *testing.T) {
		f := newFixture(t)
		seedCatalog(t, f)

		// chocolate in the cart: the other chocolate sweet ranks first
		res := f.do(t, http.MethodPost, "/v1/cart/sync", buyerToken,
			`{"items": [{"item": "`+idA+`", "quantity": 1}]}`)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = f.do(t, http.MethodGet, "/v1/recommendations", buyerToken, "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody[httphandler.SweetsResponse](t, res)
		require.NotEmpty(t, body.Sweets)
		assert.Equal(t, idB, body.Sweets[0].ID)
	})

	t.Run("LimitApplies", func(t *testing.T) {
		f := newFixture(t)
		seedCatalog(t, f)

		res := f.do(t, http.MethodGet, "/v1/recommendations?limit=2",
			buyerToken, "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody[httphandler.SweetsResponse](t, res)
		assert.Len(t, body.Sweets, 2)
	})

	t.Run("RejectsBadLimit", func(t *testing.T) {
		f := newFixture(t)
		for _, limit := range []string{"0", "-1", "abc"} {
			res := f.do(t, http.MethodGet, "/v1/recommendations?limit="+limit,
				buyerToken, "")
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		}
	})

	t.Run("RequiresAuth", func(t *testing.T) {
		f := newFixture(t)
		res := f.do(t, http.MethodGet, "/v1/recommendations", "", "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}
