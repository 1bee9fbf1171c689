package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/internal/core/service"
)

// GET  /v1/sweets                     (stock redacted for non-admins)
// GET  /v1/sweets/search?q=&category=&min_price=&max_price=
// GET  /v1/sweets/popularity          ({"sweets": [...]}, capped)
// POST /v1/sweets                     (authenticated)
// PUT  /v1/sweets/{id}                (creator or admin)
// DELETE /v1/sweets/{id}              (admin)
// POST /v1/sweets/{id}/purchase       {quantity}
// POST /v1/sweets/{id}/restock        {quantity} (admin)
// POST /v1/sweets/{id}/view           (records a view signal)

type SweetsHandler struct {
	catalogR  port.CatalogReader
	catalogW  port.CatalogWriter
	purchaser port.StockPurchaser
	restocker port.Restocker
	views     port.ViewRecorder
}

func RegisterSweets(
	mux *http.ServeMux,
	auth port.Authenticator,
	catalogR port.CatalogReader,
	catalogW port.CatalogWriter,
	purchaser port.StockPurchaser,
	restocker port.Restocker,
	views port.ViewRecorder,
) {
	h := SweetsHandler{catalogR, catalogW, purchaser, restocker, views}

	mux.Handle("GET /v1/sweets",
		OptionalAuth(auth, http.HandlerFunc(h.List)))
	mux.Handle("GET /v1/sweets/search",
		OptionalAuth(auth, http.HandlerFunc(h.Search)))
	mux.Handle("GET /v1/sweets/popularity",
		OptionalAuth(auth, http.HandlerFunc(h.Popularity)))
	mux.Handle("POST /v1/sweets",
		RequireAuth(auth, http.HandlerFunc(h.Create)))
	mux.Handle("PUT /v1/sweets/{id}",
		RequireAuth(auth, http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /v1/sweets/{id}",
		RequireAuth(auth, http.HandlerFunc(h.Delete)))
	mux.Handle("POST /v1/sweets/{id}/purchase",
		RequireAuth(auth, http.HandlerFunc(h.Purchase)))
	mux.Handle("POST /v1/sweets/{id}/restock",
		RequireAuth(auth, http.HandlerFunc(h.Restock)))
	mux.Handle("POST /v1/sweets/{id}/view",
		RequireAuth(auth, http.HandlerFunc(h.View)))
}

func (h SweetsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.List"
	log := slog.With("op", op)

	sweets, err := h.catalogR.List(r.Context())
	if err != nil {
		log.Error("failed to list sweets", "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSweets(sweets, isAdmin(r)))
}

func (h SweetsHandler) Search(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Search"
	log := slog.With("op", op)

	f, err := searchFilter(r)
	if err != nil {
		http.Error(w, "invalid price bound", http.StatusBadRequest)
		return
	}

	sweets, err := h.catalogR.Search(r.Context(), f)
	if err != nil {
		log.Error("failed to search sweets", "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSweets(sweets, isAdmin(r)))
}

func (h SweetsHandler) Popularity(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Popularity"
	log := slog.With("op", op)

	sweets, err := h.catalogR.Popular(r.Context())
	if err != nil {
		log.Error("failed to fetch popular sweets", "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SweetsResponse{
		Sweets: toSweets(sweets, isAdmin(r)),
	})
}

func (h SweetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Create"
	log := slog.With("op", op)

	var payload SweetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	p, _ := service.PrincipalFromContext(r.Context())
	sweet, err := h.catalogW.Create(r.Context(), p, domain.Sweet{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Category:    domain.Category(payload.Category),
		Image:       payload.Image,
		Stock:       payload.Stock,
	})
	if err != nil {
		log.Warn("failed to create sweet", "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SweetResponse{toSweet(sweet, p.Admin)})
}

func (h SweetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Update"
	log := slog.With("op", op)

	var payload SweetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	p, _ := service.PrincipalFromContext(r.Context())
	sweet, err := h.catalogW.Update(r.Context(), p, r.PathValue("id"),
		domain.SweetUpdate{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			Category:    domain.Category(payload.Category),
			Image:       payload.Image,
		})
	if err != nil {
		log.Warn("failed to update sweet", "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SweetResponse{toSweet(sweet, p.Admin)})
}

func (h SweetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Delete"
	log := slog.With("op", op)

	p, _ := service.PrincipalFromContext(r.Context())
	err := h.catalogW.Delete(r.Context(), p, r.PathValue("id"))
	if err != nil {
		log.Warn("failed to delete sweet", "err", err)
		writeDomainErr(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h SweetsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Purchase"
	log := slog.With("op", op)

	var payload QuantityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	sweet, err := h.purchaser.Purchase(
		r.Context(), r.PathValue("id"), payload.Quantity)
	if err != nil {
		log.Warn("purchase rejected",
			"sweetID", r.PathValue("id"), "err", err)
		writeDomainErr(w, err)
		return
	}

	log.Info("purchase successful",
		"sweetID", sweet.ID, "quantity", payload.Quantity)
	writeJSON(w, http.StatusOK, PurchaseResponse{
		Sweet:             toSweet(sweet, isAdmin(r)),
		PurchasedQuantity: payload.Quantity,
	})
}

func (h SweetsHandler) Restock(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.Restock"
	log := slog.With("op", op)

	if !isAdmin(r) {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}

	var payload QuantityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	sweet, err := h.restocker.Restock(
		r.Context(), r.PathValue("id"), payload.Quantity)
	if err != nil {
		log.Warn("restock rejected",
			"sweetID", r.PathValue("id"), "err", err)
		writeDomainErr(w, err)
		return
	}

	log.Info("restock successful",
		"sweetID", sweet.ID, "quantity", payload.Quantity)
	writeJSON(w, http.StatusOK, SweetResponse{toSweet(sweet, true)})
}

func (h SweetsHandler) View(w http.ResponseWriter, r *http.Request) {
	const op = "SweetsHandler.View"
	log := slog.With("op", op)

	p, _ := service.PrincipalFromContext(r.Context())
	err := h.views.RecordView(r.Context(), p.UserID, r.PathValue("id"))
	if err != nil {
		log.Warn("failed to record view",
			"sweetID", r.PathValue("id"), "err", err)
		writeDomainErr(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func isAdmin(r *http.Request) bool {
	p, ok := service.PrincipalFromContext(r.Context())
	return ok && p.Admin
}

func searchFilter(r *http.Request) (domain.SearchFilter, error) {
	q := r.URL.Query()

	f := domain.SearchFilter{
		Query:    q.Get("q"),
		Category: domain.Category(q.Get("category")),
	}

	if s := q.Get("min_price"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.SearchFilter{}, err
		}
		f.MinPrice, f.HasMin = v, true
	}
	if s := q.Get("max_price"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.SearchFilter{}, err
		}
		f.MaxPrice, f.HasMax = v, true
	}
	return f, nil
}
