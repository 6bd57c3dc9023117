package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

type WishlistHandler struct {
	DB *sql.DB
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request, user *models.User) {
	items, err := store.ListWishlist(r.Context(), h.DB, user.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	if err := store.AddWishlistProduct(r.Context(), h.DB, user.ID, req.ProductID); err != nil {
		respondStoreError(w, err)
		return
	}

	items, err := store.ListWishlist(r.Context(), h.DB, user.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request, user *models.User) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.RemoveWishlistProduct(r.Context(), h.DB, user.ID, productID); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "removed from wishlist"})
}
