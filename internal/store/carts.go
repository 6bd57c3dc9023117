package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// CartOwner identifies the cart holder: a signed-in user or an anonymous
// session. Exactly one field is set.
type CartOwner struct {
	UserID    *int64
	SessionID *string
}

func (o CartOwner) clause() (string, any) {
	if o.UserID != nil {
		return "user_id = $1", *o.UserID
	}
	return "session_id = $1", *o.SessionID
}

// AddCartItem consolidates the (product, variant) pair into the owner's
// cart: an existing line has its quantity incremented and its captured
// price refreshed to the product's current price; otherwise a new line is
// appended. The whole operation is a single upsert inside a serializable
// retry transaction, so concurrent adds for the same pair cannot produce
// duplicate lines or lost increments. Totals are recomputed before commit.
func AddCartItem(ctx context.Context, db *sql.DB, owner CartOwner, productID int64, variantSKU string, quantity int, ttl time.Duration) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive: %d", quantity)
	}

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var basePrice decimal.Decimal
		var isActive bool
		err := tx.QueryRowContext(ctx,
			`SELECT base_price, is_active FROM products WHERE id = $1`,
			productID).Scan(&basePrice, &isActive)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("get product: %w", err)
		}
		if !isActive {
			return database.ErrProductNotFound
		}

		unitPrice := basePrice
		if variantSKU != "" {
			var additional decimal.Decimal
			err := tx.QueryRowContext(ctx,
				`SELECT additional_price FROM product_variants WHERE sku = $1 AND product_id = $2`,
				variantSKU, productID).Scan(&additional)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrVariantNotFound
				}
				return fmt.Errorf("get variant: %w", err)
			}
			unitPrice = basePrice.Add(additional)
		}

		cartID, err := ensureCart(ctx, tx, owner, time.Now().Add(ttl))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, variant_sku, quantity, price_at_add, added_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 ON CONFLICT (cart_id, product_id, variant_sku)
			 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
			               price_at_add = EXCLUDED.price_at_add`,
			cartID, productID, variantSKU, quantity, unitPrice)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		return recomputeCartTotals(ctx, tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return GetCart(ctx, db, owner)
}

// ensureCart returns the owner's cart id, creating the cart row if needed.
// The expiry is pushed out on every touch so active carts never expire.
func ensureCart(ctx context.Context, tx *sql.Tx, owner CartOwner, expiresAt time.Time) (int64, error) {
	var cartID int64
	var err error

	if owner.UserID != nil {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO carts (user_id, expires_at, created_at, updated_at)
			 VALUES ($1, $2, NOW(), NOW())
			 ON CONFLICT (user_id) WHERE user_id IS NOT NULL
			 DO UPDATE SET expires_at = EXCLUDED.expires_at, updated_at = NOW()
			 RETURNING id`,
			*owner.UserID, expiresAt).Scan(&cartID)
	} else {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO carts (session_id, expires_at, created_at, updated_at)
			 VALUES ($1, $2, NOW(), NOW())
			 ON CONFLICT (session_id) WHERE session_id IS NOT NULL
			 DO UPDATE SET expires_at = EXCLUDED.expires_at, updated_at = NOW()
			 RETURNING id`,
			*owner.SessionID, expiresAt).Scan(&cartID)
	}
	if err != nil {
		return 0, fmt.Errorf("ensure cart: %w", err)
	}

	return cartID, nil
}

// recomputeCartTotals re-derives total_amount from the line items:
// sum(quantity * price_at_add) + shipping + tax. The shipping rule lives
// in the pricing package so cart display and checkout agree.
func recomputeCartTotals(ctx context.Context, tx *sql.Tx, cartID int64) error {
	var subtotal decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity * price_at_add), 0) FROM cart_items WHERE cart_id = $1`,
		cartID).Scan(&subtotal)
	if err != nil {
		return fmt.Errorf("sum cart items: %w", err)
	}

	shipping := pricing.ShippingFor(subtotal)

	_, err = tx.ExecContext(ctx,
		`UPDATE carts
		 SET shipping_cost = $2,
		     total_amount = $3 + $2 + tax_amount,
		     updated_at = NOW()
		 WHERE id = $1`,
		cartID, shipping, subtotal)
	if err != nil {
		return fmt.Errorf("update cart totals: %w", err)
	}

	return nil
}

// RemoveCartItem deletes every line matching the (product, variant) pair.
// Pull semantics: the whole line goes, not a decrement.
func RemoveCartItem(ctx context.Context, db *sql.DB, owner CartOwner, productID int64, variantSKU string) (*models.Cart, error) {
	clause, arg := owner.clause()

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE `+clause, arg).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND variant_sku = $3`,
			cartID, productID, variantSKU)
		if err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}

		return recomputeCartTotals(ctx, tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return GetCart(ctx, db, owner)
}

// GetCart returns the owner's cart with a live product snapshot per line
// (current name, image, base price) alongside the captured price. A
// missing cart document is not an error: an empty cart value is returned.
func GetCart(ctx context.Context, db *sql.DB, owner CartOwner) (*models.Cart, error) {
	clause, arg := owner.clause()

	cart := &models.Cart{
		UserID:       owner.UserID,
		SessionID:    owner.SessionID,
		Items:        []models.CartItem{},
		ShippingCost: decimal.Zero,
		TaxAmount:    decimal.Zero,
		TotalAmount:  decimal.Zero,
	}

	err := db.QueryRowContext(ctx,
		`SELECT id, shipping_cost, tax_amount, total_amount, expires_at, created_at, updated_at
		 FROM carts WHERE `+clause, arg).Scan(
		&cart.ID,
		&cart.ShippingCost,
		&cart.TaxAmount,
		&cart.TotalAmount,
		&cart.ExpiresAt,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return cart, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_sku, ci.quantity, ci.price_at_add, ci.added_at,
		        p.name, COALESCE(p.images[1], ''), p.base_price
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.added_at, ci.id`,
		cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.VariantSKU,
			&item.Quantity,
			&item.PriceAtAdd,
			&item.AddedAt,
			&item.ProductName,
			&item.ProductImage,
			&item.CurrentPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Subtotal = item.PriceAtAdd.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return cart, nil
}

// clearCartTx empties the cart after a successful checkout.
func clearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE carts
		 SET shipping_cost = 0, total_amount = tax_amount, updated_at = NOW()
		 WHERE id = $1`,
		cartID)
	if err != nil {
		return fmt.Errorf("reset cart totals: %w", err)
	}

	return nil
}

// SweepExpired removes carts past their expiry. The document store the
// original design leaned on did this with a TTL index; here a background
// loop calls this on an interval.
func SweepExpired(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM carts WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("sweep expired carts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}
