package integration

import (
	"context"
	"testing"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/store"
)

func TestWishlistHoldsProductAtMostOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)
	product := createTestProduct(t, db, 300, 10)

	if err := store.AddWishlistProduct(ctx, db, user.ID, product.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// A second add is a no-op, not an error.
	if err := store.AddWishlistProduct(ctx, db, user.ID, product.ID); err != nil {
		t.Fatalf("Re-add: %v", err)
	}

	items, err := store.ListWishlist(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 wishlist entry, got %d", len(items))
	}
	if items[0].ProductID != product.ID {
		t.Errorf("Expected product %d, got %d", product.ID, items[0].ProductID)
	}

	if err := store.RemoveWishlistProduct(ctx, db, user.ID, product.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	items, err = store.ListWishlist(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("List after remove: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty wishlist, got %d entries", len(items))
	}
}

func TestAddWishlistUnknownProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db)

	err := store.AddWishlistProduct(context.Background(), db, user.ID, 99999)
	if err != database.ErrProductNotFound {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestReviewAverageRating(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, 300, 10)
	alice := createTestUser(t, db)
	bob := createTestUser(t, db)

	if _, err := store.CreateReview(ctx, db, alice.ID, product.ID, 5, "lovely paper"); err != nil {
		t.Fatalf("Create review: %v", err)
	}
	if _, err := store.CreateReview(ctx, db, bob.ID, product.ID, 2, "cover tore"); err != nil {
		t.Fatalf("Create review: %v", err)
	}

	avg, count, err := store.AverageRating(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Average rating: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 reviews, got %d", count)
	}
	if avg != 3.5 {
		t.Errorf("Expected average 3.5, got %g", avg)
	}

	reviews, err := store.ListReviewsByProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("List reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("Expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].UserName == "" {
		t.Error("Review should carry the reviewer's name")
	}
}
