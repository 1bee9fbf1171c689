package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/internal/core/service"
)

const defaultRecommendLimit = 6

// GET /v1/recommendations?limit= — catalog ranked against the caller's
// recent activity, excluding sweets already in the server cart.

type RecommendHandler struct {
	recommender port.Recommender
}

func RegisterRecommendations(
	mux *http.ServeMux, auth port.Authenticator, recommender port.Recommender,
) {
	h := RecommendHandler{recommender}

	mux.Handle("GET /v1/recommendations",
		RequireAuth(auth, http.HandlerFunc(h.Get)))
}

func (h RecommendHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "RecommendHandler.Get"
	log := slog.With("op", op)

	limit := defaultRecommendLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	p, _ := service.PrincipalFromContext(r.Context())
	sweets, err := h.recommender.Recommend(r.Context(), p.UserID, limit)
	if err != nil {
		log.Error("failed to rank sweets", "userID", p.UserID, "err", err)
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SweetsResponse{
		Sweets: toSweets(sweets, p.Admin),
	})
}
