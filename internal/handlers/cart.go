package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/safar/storefront/internal/store"
)

type CartHandler struct {
	DB       *sql.DB
	Sessions *Sessions
	CartTTL  time.Duration
}

// Get returns the caller's cart, joined with live product data. A caller
// without a cart gets an empty cart, not an error.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := h.Sessions.cartOwner(w, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	cart, err := store.GetCart(r.Context(), h.DB, owner)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// Add consolidates an item into the cart: same (product, variant) pair
// increments the existing line.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  int64  `json:"product_id"`
		VariantSKU string `json:"variant_sku"`
		Quantity   int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	owner, err := h.Sessions.cartOwner(w, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	cart, err := store.AddCartItem(r.Context(), h.DB, owner, req.ProductID, req.VariantSKU, req.Quantity, h.CartTTL)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// Remove pulls every line matching the (product, variant) pair.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	variantSKU := r.URL.Query().Get("sku")

	owner, err := h.Sessions.cartOwner(w, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	cart, err := store.RemoveCartItem(r.Context(), h.DB, owner, productID, variantSKU)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
