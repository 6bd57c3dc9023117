package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

type Product struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Images      []string        `json:"images"`
	Specs       Specifications  `json:"specifications"`
	// TotalStock is derived: the sum of the variants' stock, or the
	// product's own stock when it has no variants.
	TotalStock int       `json:"total_stock"`
	IsActive   bool      `json:"is_active"`
	IsFeatured bool      `json:"is_featured"`
	Variants   []Variant `json:"variants,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

type Specifications struct {
	Size        string `json:"size,omitempty"`
	Binding     string `json:"binding,omitempty"`
	PaperWeight string `json:"paper_weight,omitempty"`
	CoverType   string `json:"cover_type,omitempty"`
}

type Variant struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	SKU             string          `json:"sku"`
	PageType        string          `json:"page_type,omitempty"`
	PageCount       int             `json:"page_count,omitempty"`
	Color           string          `json:"color,omitempty"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	Stock           int             `json:"stock"`
}

type Cart struct {
	ID           int64           `json:"id"`
	UserID       *int64          `json:"user_id,omitempty"`
	SessionID    *string         `json:"session_id,omitempty"`
	Items        []CartItem      `json:"items"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpiresAt    time.Time       `json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CartItem is one consolidated line: at most one per (product, variant)
// pair. VariantSKU is empty for the no-variant case.
type CartItem struct {
	ID         int64           `json:"id"`
	CartID     int64           `json:"cart_id"`
	ProductID  int64           `json:"product_id"`
	VariantSKU string          `json:"variant_sku,omitempty"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"price_at_add"`
	AddedAt    time.Time       `json:"added_at"`

	// Live product snapshot filled in by cart reads.
	ProductName  string          `json:"product_name,omitempty"`
	ProductImage string          `json:"product_image,omitempty"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	PaymentMethodCOD        = "cod"
	PaymentMethodUPI        = "upi"
	PaymentMethodOnline     = "online"
	PaymentMethodNetbanking = "netbanking"
	PaymentMethodWallet     = "wallet"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCOD, PaymentMethodUPI, PaymentMethodOnline,
		PaymentMethodNetbanking, PaymentMethodWallet:
		return true
	}
	return false
}

type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"order_number"`
	UserID             int64           `json:"user_id"`
	Status             string          `json:"status"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentMethod      string          `json:"payment_method"`
	TransactionID      *string         `json:"transaction_id,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Discount           decimal.Decimal `json:"discount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ShippingAddress    string          `json:"shipping_address"`
	BillingAddress     *string         `json:"billing_address,omitempty"`
	ExpectedDelivery   *time.Time      `json:"expected_delivery,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
	Items              []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a point-in-time copy of the purchased line. Name and price
// are frozen at checkout and do not follow later product edits.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	VariantSKU  string          `json:"variant_sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

type WishlistItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`

	ProductName  string          `json:"product_name,omitempty"`
	ProductImage string          `json:"product_image,omitempty"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	UserName string `json:"user_name,omitempty"`
}

type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
