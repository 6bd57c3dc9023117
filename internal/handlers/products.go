package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/safar/storefront/internal/store"
)

type ProductHandler struct {
	DB *sql.DB
}

func parsePaging(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

// List exposes the public catalog: only active products, optionally
// filtered by category or featured flag.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)

	filter := store.ProductFilter{
		Category:     r.URL.Query().Get("category"),
		ActiveOnly:   true,
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
	}

	result, err := store.ListProducts(r.Context(), h.DB, filter, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Reviews lists a product's reviews with the average rating.
func (h *ProductHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	reviews, err := store.ListReviewsByProduct(r.Context(), h.DB, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	avg, count, err := store.AverageRating(r.Context(), h.DB, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reviews":        reviews,
		"average_rating": avg,
		"review_count":   count,
	})
}
