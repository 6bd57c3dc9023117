package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	UserID           int64
	ShippingAddress  string
	BillingAddress   *string
	PaymentMethod    string
	Discount         decimal.Decimal
	ExpectedDelivery *time.Time
}

// GenerateOrderNumber builds the human-readable order id. The timestamp
// plus random suffix makes collisions astronomically rare; the unique
// constraint catches the rest.
func GenerateOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method, transaction_id,
	subtotal, shipping_cost, tax_amount, discount, total_amount,
	shipping_address, billing_address, expected_delivery, delivered_at, cancellation_reason,
	created_at, updated_at, version`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.TransactionID,
		&order.Subtotal,
		&order.ShippingCost,
		&order.TaxAmount,
		&order.Discount,
		&order.TotalAmount,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.ExpectedDelivery,
		&order.DeliveredAt,
		&order.CancellationReason,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrderFromCart freezes the user's cart into an order: line items
// capture the product name and the price-at-add, totals come from the
// pricing package, stock is decremented conditionally and the cart is
// cleared, all in one serializable retry transaction. The order starts at
// status=pending, payment_status=pending.
func CreateOrderFromCart(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		var taxAmount decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT id, tax_amount FROM carts WHERE user_id = $1`,
			req.UserID).Scan(&cartID, &taxAmount)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}

		type frozenLine struct {
			productID   int64
			productName string
			variantSKU  string
			quantity    int
			unitPrice   decimal.Decimal
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT ci.product_id, p.name, ci.variant_sku, ci.quantity, ci.price_at_add
			 FROM cart_items ci
			 JOIN products p ON p.id = ci.product_id
			 WHERE ci.cart_id = $1
			 ORDER BY ci.id`,
			cartID)
		if err != nil {
			return fmt.Errorf("get cart items: %w", err)
		}

		var frozen []frozenLine
		var lines []pricing.Line
		for rows.Next() {
			var line frozenLine
			if err := rows.Scan(&line.productID, &line.productName, &line.variantSKU, &line.quantity, &line.unitPrice); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart item: %w", err)
			}
			frozen = append(frozen, line)
			lines = append(lines, pricing.Line{Quantity: line.quantity, UnitPrice: line.unitPrice})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		if len(frozen) == 0 {
			return database.ErrCartEmpty
		}

		totals := pricing.Compute(lines, taxAmount, req.Discount)

		for _, line := range frozen {
			if err := decrementStock(ctx, tx, line.productID, line.variantSKU, line.quantity); err != nil {
				return err
			}
		}

		orderNumber := GenerateOrderNumber()
		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_number, user_id, status, payment_status, payment_method,
			     subtotal, shipping_cost, tax_amount, discount, total_amount,
			     shipping_address, billing_address, expected_delivery,
			     created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), 1)
			 RETURNING id`,
			orderNumber, req.UserID, models.OrderStatusPending, models.PaymentStatusPending,
			req.PaymentMethod,
			totals.Subtotal, totals.ShippingCost, totals.TaxAmount, totals.Discount, totals.GrandTotal,
			req.ShippingAddress, req.BillingAddress, req.ExpectedDelivery,
		).Scan(&orderID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return database.ErrDuplicateEntry
			}
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range frozen {
			subtotal := line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity)))
			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_name, variant_sku, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
				orderID, line.productID, line.productName, line.variantSKU, line.quantity, line.unitPrice, subtotal)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		if err := clearCartTx(ctx, tx, cartID); err != nil {
			return err
		}

		order, err = scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Items, err = listOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func listOrderItems(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, variant_sku, quantity, unit_price, subtotal, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.VariantSKU,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	order.Items, err = listOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func GetOrderByNumber(ctx context.Context, db *sql.DB, orderNumber string) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by number: %w", err)
	}

	order.Items, err = listOrderItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func ListAllOrders(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

// SetOrderStatus overwrites the shipping status. No transition table is
// enforced. Setting delivered without an explicit timestamp stamps the
// current time; an explicit timestamp is preserved.
func SetOrderStatus(ctx context.Context, db *sql.DB, id int64, status string, deliveredAt *time.Time) (*models.Order, error) {
	if status == models.OrderStatusDelivered && deliveredAt == nil {
		now := time.Now()
		deliveredAt = &now
	}

	query := `
		UPDATE orders
		SET status = $1,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN $2 ELSE delivered_at END,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(db.QueryRowContext(ctx, query, status, deliveredAt, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("set order status: %w", err)
	}

	return order, nil
}

// SetPaymentStatus overwrites the payment axis independently of the
// shipping status. The transaction id is recorded when supplied.
func SetPaymentStatus(ctx context.Context, db *sql.DB, id int64, status string, transactionID *string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $1,
		    transaction_id = COALESCE($2, transaction_id),
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(db.QueryRowContext(ctx, query, status, transactionID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("set payment status: %w", err)
	}

	return order, nil
}

// CancelOrder sets status=cancelled and records the reason.
func CancelOrder(ctx context.Context, db *sql.DB, id int64, reason string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, cancellation_reason = NULLIF($2, ''), updated_at = NOW(), version = version + 1
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(db.QueryRowContext(ctx, query, models.OrderStatusCancelled, reason, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	return order, nil
}

// RefundOrder sets payment_status=refunded and records the reason. The
// shipping status is left untouched.
func RefundOrder(ctx context.Context, db *sql.DB, id int64, reason string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $1, cancellation_reason = NULLIF($2, ''), updated_at = NOW(), version = version + 1
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(db.QueryRowContext(ctx, query, models.PaymentStatusRefunded, reason, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("refund order: %w", err)
	}

	return order, nil
}

// DeleteOrderIfUnpaid removes the caller's own order while payment is
// still outstanding. Used by clients to clean up abandoned or failed
// payment attempts.
func DeleteOrderIfUnpaid(ctx context.Context, db *sql.DB, id, userID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM orders
		 WHERE id = $1 AND user_id = $2 AND payment_status IN ($3, $4)`,
		id, userID, models.PaymentStatusPending, models.PaymentStatusFailed)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1 AND user_id = $2)`,
		id, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return database.ErrOrderNotFound
	}

	return database.ErrOrderNotDeletable
}
