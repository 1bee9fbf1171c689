package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/niksmo/sweet-shop/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"
	log := slog.With("op", op)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeDomainErr maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a generic server error, never conflated with
// the domain failures.
func writeDomainErr(w http.ResponseWriter, err error) {
	var insufficient domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		msg := fmt.Sprintf("Insufficient stock. Only %d item(s) available.",
			insufficient.Available)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	var cartErr domain.CartValidationError
	if errors.As(err, &cartErr) {
		http.Error(w, cartErr.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		http.Error(w, "Quantity must be >= 1", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidSweetID):
		http.Error(w, "Invalid sweet id", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidSweet):
		http.Error(w, "Invalid sweet payload", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Sweet not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Not authorized", http.StatusForbidden)
	case errors.Is(err, domain.ErrUnauthenticated):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	default:
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
