package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/internal/core/service"
)

// POST /v1/cart/sync {items: [{item, quantity}, ...]} — the payload
// replaces the account's server cart in full.
// GET  /v1/cart — lines resolved against the live catalog.

type CartHandler struct {
	syncer  port.CartSyncer
	fetcher port.CartFetcher
}

func RegisterCart(
	mux *http.ServeMux,
	auth port.Authenticator,
	syncer port.CartSyncer,
	fetcher port.CartFetcher,
) {
	h := CartHandler{syncer, fetcher}

	mux.Handle("POST /v1/cart/sync",
		RequireAuth(auth, http.HandlerFunc(h.Sync)))
	mux.Handle("GET /v1/cart",
		RequireAuth(auth, http.HandlerFunc(h.Get)))
}

func (h CartHandler) Sync(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Sync"
	log := slog.With("op", op)

	var payload struct {
		Items []struct {
			Item     string `json:"item"`
			Quantity *int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	lines := make([]domain.CartLine, 0, len(payload.Items))
	for _, it := range payload.Items {
		// absent quantity means one item, matching the client payloads
		quantity := 1
		if it.Quantity != nil {
			quantity = *it.Quantity
		}
		lines = append(lines, domain.CartLine{
			SweetID:  it.Item,
			Quantity: quantity,
		})
	}

	p, _ := service.PrincipalFromContext(r.Context())
	cart, err := h.syncer.Sync(r.Context(), p.UserID, lines)
	if err != nil {
		log.Warn("cart sync rejected", "userID", p.UserID, "err", err)
		writeDomainErr(w, err)
		return
	}

	log.Info("cart synced", "userID", p.UserID, "nLines", len(cart.Items))
	writeJSON(w, http.StatusOK, CartResponse{toCart(cart)})
}

func (h CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Get"
	log := slog.With("op", op)

	p, _ := service.PrincipalFromContext(r.Context())
	cart, err := h.fetcher.Fetch(r.Context(), p.UserID)
	if err != nil {
		log.Error("failed to fetch cart", "userID", p.UserID, "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{toCart(cart)})
}
