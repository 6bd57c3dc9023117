package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
	"github.com/shopspring/decimal"
)

func notebookInput(code string) store.ProductInput {
	return store.ProductInput{
		Code:        code,
		Name:        "Dotted Notebook",
		Brand:       "Safar",
		Description: "A5 dotted notebook",
		Category:    "notebooks",
		BasePrice:   decimal.NewFromInt(299),
		Images:      []string{"https://cdn.example.com/notebooks/dotted.jpg"},
		Specs: models.Specifications{
			Size:    "A5",
			Binding: "spiral",
		},
		IsActive: true,
	}
}

func TestCreateProductDerivesTotalStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	code := "NB-" + uuid.NewString()[:8]
	in := notebookInput(code)
	in.Variants = []models.Variant{
		{SKU: code + "-RULED", PageType: "ruled", PageCount: 120, Stock: 10},
		{SKU: code + "-DOT", PageType: "dotted", PageCount: 120, Stock: 15, AdditionalPrice: decimal.NewFromInt(20)},
	}

	product, err := store.CreateProduct(ctx, db, in)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if product.TotalStock != 25 {
		t.Errorf("Expected total stock 25, got %d", product.TotalStock)
	}
	if len(product.Variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(product.Variants))
	}

	// And the persisted row agrees.
	reloaded, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if reloaded.TotalStock != 25 {
		t.Errorf("Expected persisted total stock 25, got %d", reloaded.TotalStock)
	}
}

func TestCreateProductWithoutVariantsUsesStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	in := notebookInput("NB-" + uuid.NewString()[:8])
	in.Stock = 40

	product, err := store.CreateProduct(context.Background(), db, in)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if product.TotalStock != 40 {
		t.Errorf("Expected total stock 40, got %d", product.TotalStock)
	}
}

func TestCreateProductDuplicateCode(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	code := "NB-" + uuid.NewString()[:8]

	if _, err := store.CreateProduct(ctx, db, notebookInput(code)); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	_, err := store.CreateProduct(ctx, db, notebookInput(code))
	if err != database.ErrDuplicateEntry {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sku := "NB-VAR-" + uuid.NewString()[:8]

	first := notebookInput("NB-" + uuid.NewString()[:8])
	first.Variants = []models.Variant{{SKU: sku, PageType: "ruled", PageCount: 120, Stock: 5}}
	if _, err := store.CreateProduct(ctx, db, first); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	second := notebookInput("NB-" + uuid.NewString()[:8])
	second.Variants = []models.Variant{{SKU: sku, PageType: "plain", PageCount: 100, Stock: 5}}
	_, err := store.CreateProduct(ctx, db, second)
	if err != database.ErrDuplicateEntry {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
}

func TestUpdateProductRewritesVariants(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	code := "NB-" + uuid.NewString()[:8]
	in := notebookInput(code)
	in.Variants = []models.Variant{
		{SKU: code + "-RULED", PageType: "ruled", PageCount: 120, Stock: 10},
		{SKU: code + "-DOT", PageType: "dotted", PageCount: 120, Stock: 15},
	}

	product, err := store.CreateProduct(ctx, db, in)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	in.Variants = []models.Variant{
		{SKU: code + "-PLAIN", PageType: "plain", PageCount: 200, Stock: 7},
	}
	updated, err := store.UpdateProduct(ctx, db, product.ID, in)
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}

	if len(updated.Variants) != 1 || updated.Variants[0].SKU != code+"-PLAIN" {
		t.Errorf("Expected variants replaced wholesale, got %+v", updated.Variants)
	}
	if updated.TotalStock != 7 {
		t.Errorf("Expected total stock 7 after rewrite, got %d", updated.TotalStock)
	}
	if updated.Version != product.Version+1 {
		t.Errorf("Expected version bump from %d, got %d", product.Version, updated.Version)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.UpdateProduct(context.Background(), db, 99999, notebookInput("NB-MISSING"))
	if err != database.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestListProductsFiltersInactive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	active := notebookInput("NB-" + uuid.NewString()[:8])
	if _, err := store.CreateProduct(ctx, db, active); err != nil {
		t.Fatalf("Create active: %v", err)
	}

	inactive := notebookInput("NB-" + uuid.NewString()[:8])
	inactive.IsActive = false
	if _, err := store.CreateProduct(ctx, db, inactive); err != nil {
		t.Fatalf("Create inactive: %v", err)
	}

	page, err := store.ListProducts(ctx, db, store.ProductFilter{ActiveOnly: true}, 1, 20)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}

	products := page.Items.([]models.Product)
	for _, p := range products {
		if !p.IsActive {
			t.Errorf("Inactive product %s leaked into active listing", p.Code)
		}
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 active product, got %d", page.Total)
	}
}

func TestDeleteProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product, err := store.CreateProduct(ctx, db, notebookInput("NB-"+uuid.NewString()[:8]))
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}

	if _, err := store.GetProduct(ctx, db, product.ID); err != database.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound after delete, got %v", err)
	}

	if err := store.DeleteProduct(ctx, db, product.ID); err != database.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound on second delete, got %v", err)
	}
}
