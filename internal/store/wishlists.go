package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

// AddWishlistProduct inserts the product into the user's wishlist. A
// product already present is left alone: the wishlist holds each product
// at most once.
func AddWishlistProduct(ctx context.Context, db *sql.DB, userID, productID int64) error {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`,
		productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return database.ErrProductNotFound
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, product_id, added_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("add wishlist product: %w", err)
	}

	return nil
}

func RemoveWishlistProduct(ctx context.Context, db *sql.DB, userID, productID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListWishlist(ctx context.Context, db *sql.DB, userID int64) ([]models.WishlistItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT w.id, w.user_id, w.product_id, w.added_at,
		        p.name, COALESCE(p.images[1], ''), p.base_price
		 FROM wishlist_items w
		 JOIN products p ON p.id = w.product_id
		 WHERE w.user_id = $1
		 ORDER BY w.added_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var item models.WishlistItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.AddedAt,
			&item.ProductName,
			&item.ProductImage,
			&item.CurrentPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
