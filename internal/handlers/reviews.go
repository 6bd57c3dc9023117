package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

type ReviewHandler struct {
	DB *sql.DB
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req struct {
		ProductID int64  `json:"product_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	review, err := store.CreateReview(r.Context(), h.DB, user.ID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
