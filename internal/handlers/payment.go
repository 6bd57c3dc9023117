package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/payment"
	"github.com/safar/storefront/internal/store"
)

type PaymentHandler struct {
	DB      *sql.DB
	Gateway *payment.Client
}

// Initiate registers the order with the gateway and stores the returned
// reference as the order's transaction id.
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := store.GetOrder(r.Context(), h.DB, req.OrderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if order.UserID != user.ID {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	gatewayOrder, err := h.Gateway.CreateOrder(r.Context(), order.OrderNumber, order.TotalAmount)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	order, err = store.SetPaymentStatus(r.Context(), h.DB, order.ID, models.PaymentStatusPending, &gatewayOrder.Reference)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order":     order,
		"reference": gatewayOrder.Reference,
	})
}

// Status is the polling endpoint. It asks the gateway for the payment's
// current state, persists the mapped payment status and returns it. A
// gateway or transport failure returns 502 without touching the order:
// only a definitive gateway answer may move the payment status, so a
// transient outage is never mistaken for a failed payment.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request, user *models.User) {
	orderNumber := r.URL.Query().Get("order")
	if orderNumber == "" {
		respondError(w, http.StatusBadRequest, "order query parameter is required")
		return
	}

	order, err := store.GetOrderByNumber(r.Context(), h.DB, orderNumber)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if order.UserID != user.ID {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	if order.TransactionID == nil {
		respondError(w, http.StatusBadRequest, "payment has not been initiated for this order")
		return
	}

	state, err := h.Gateway.FetchStatus(r.Context(), *order.TransactionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	mapped := payment.MapStatus(state)
	if mapped != order.PaymentStatus {
		order, err = store.SetPaymentStatus(r.Context(), h.DB, order.ID, mapped, nil)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"order_number":   order.OrderNumber,
		"payment_status": order.PaymentStatus,
	})
}
