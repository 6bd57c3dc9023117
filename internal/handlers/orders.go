package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	DB *sql.DB
}

// Create checks out the user's cart into an order snapshot.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req struct {
		ShippingAddress  string     `json:"shipping_address"`
		BillingAddress   *string    `json:"billing_address"`
		PaymentMethod    string     `json:"payment_method"`
		ExpectedDelivery *time.Time `json:"expected_delivery"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ShippingAddress == "" {
		respondError(w, http.StatusBadRequest, "shipping_address is required")
		return
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		respondError(w, http.StatusBadRequest, "invalid payment_method")
		return
	}

	// Discounts are applied server-side; the checkout body carries no
	// authority over pricing.
	order, err := store.CreateOrderFromCart(r.Context(), h.DB, store.CreateOrderRequest{
		UserID:           user.ID,
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   req.BillingAddress,
		PaymentMethod:    req.PaymentMethod,
		Discount:         decimal.Zero,
		ExpectedDelivery: req.ExpectedDelivery,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// List returns the user's own order history, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request, user *models.User) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := store.ListOrdersCursor(r.Context(), h.DB, user.ID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get returns one order; owners only.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := store.GetOrder(r.Context(), h.DB, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if order.UserID != user.ID {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Delete removes the user's own order while payment is outstanding. The
// payment-status page calls this to clean up failed or abandoned
// attempts.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := store.DeleteOrderIfUnpaid(r.Context(), h.DB, id, user.ID); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
