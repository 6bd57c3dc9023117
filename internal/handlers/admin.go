package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

// AdminHandler groups the admin-only operations. Routes using it are
// registered behind Auth.RequireAdmin.
type AdminHandler struct {
	DB *sql.DB
}

type productRequest struct {
	Code        string                `json:"code"`
	Name        string                `json:"name"`
	Brand       string                `json:"brand"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Subcategory string                `json:"subcategory"`
	BasePrice   float64               `json:"base_price"`
	Images      []string              `json:"images"`
	Specs       models.Specifications `json:"specifications"`
	IsActive    *bool                 `json:"is_active"`
	IsFeatured  bool                  `json:"is_featured"`
	Stock       int                   `json:"stock"`
	Variants    []struct {
		SKU             string  `json:"sku"`
		PageType        string  `json:"page_type"`
		PageCount       int     `json:"page_count"`
		Color           string  `json:"color"`
		AdditionalPrice float64 `json:"additional_price"`
		Stock           int     `json:"stock"`
	} `json:"variants"`
}

func (req *productRequest) toInput() (store.ProductInput, string) {
	if req.Code == "" || req.Name == "" {
		return store.ProductInput{}, "code and name are required"
	}
	if req.BasePrice <= 0 {
		return store.ProductInput{}, "base_price must be positive"
	}

	in := store.ProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		BasePrice:   decimal.NewFromFloat(req.BasePrice),
		Images:      req.Images,
		Specs:       req.Specs,
		IsActive:    req.IsActive == nil || *req.IsActive,
		IsFeatured:  req.IsFeatured,
		Stock:       req.Stock,
	}

	for _, v := range req.Variants {
		if v.SKU == "" {
			return store.ProductInput{}, "every variant needs a sku"
		}
		if v.Stock < 0 {
			return store.ProductInput{}, "variant stock cannot be negative"
		}
		in.Variants = append(in.Variants, models.Variant{
			SKU:             v.SKU,
			PageType:        v.PageType,
			PageCount:       v.PageCount,
			Color:           v.Color,
			AdditionalPrice: decimal.NewFromFloat(v.AdditionalPrice),
			Stock:           v.Stock,
		})
	}

	return in, ""
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request, _ *models.User) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, msg := req.toInput()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, in)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, msg := req.toInput()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := store.UpdateProduct(r.Context(), h.DB, id, in)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ListProducts shows the full catalog, inactive products included.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request, _ *models.User) {
	page, pageSize := parsePaging(r)

	result, err := store.ListProducts(r.Context(), h.DB, store.ProductFilter{
		Category: r.URL.Query().Get("category"),
	}, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request, _ *models.User) {
	page, pageSize := parsePaging(r)

	result, err := store.ListAllOrders(r.Context(), h.DB, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status      string     `json:"status"`
		DeliveredAt *time.Time `json:"delivered_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	order, err := store.SetOrderStatus(r.Context(), h.DB, id, req.Status, req.DeliveredAt)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		PaymentStatus string  `json:"payment_status"`
		TransactionID *string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidPaymentStatus(req.PaymentStatus) {
		respondError(w, http.StatusBadRequest, "invalid payment_status")
		return
	}

	order, err := store.SetPaymentStatus(r.Context(), h.DB, id, req.PaymentStatus, req.TransactionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := store.CancelOrder(r.Context(), h.DB, id, req.Reason)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) RefundOrder(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := store.RefundOrder(r.Context(), h.DB, id, req.Reason)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ *models.User) {
	page, pageSize := parsePaging(r)

	result, err := store.ListUsers(r.Context(), h.DB, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := store.UpdateUserRole(r.Context(), h.DB, id, req.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request, _ *models.User) {
	page, pageSize := parsePaging(r)

	result, err := store.ListContacts(r.Context(), h.DB, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
