package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/payment"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError translates store and gateway errors into HTTP
// statuses at the handler boundary. Nothing below this layer knows about
// HTTP.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrVariantNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrDuplicateEntry),
		errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrOrderNotDeletable):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrCartEmpty),
		errors.Is(err, database.ErrInvalidCursor):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("Unhandled store error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
