package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item with one or more size variants
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	NameAr        string           `json:"name_ar"`
	Description   string           `json:"description"`
	DescriptionAr string           `json:"description_ar"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	ImageURL      string           `json:"image_url"`
	IsActive      bool             `json:"is_active"`
	Variants      []ProductVariant `json:"variants"`
}

// ProductVariant is one purchasable size of a product, identified by its SKU
type ProductVariant struct {
	SKU   string          `json:"sku"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Variant returns the variant with the given SKU
func (p *Product) Variant(sku string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// Order represents a customer purchase. Orders are immutable once created
// except for Status and UpdatedAt.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Customer        CustomerInfo    `json:"customer"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemCount returns the number of units across all items
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// CustomerInfo holds the contact details captured at checkout
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName returns "First Last" trimmed
func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DeliveryAddress is where the order ships to
type DeliveryAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Emirate string `json:"emirate"`
}

// OrderItem represents a single line of an order
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderStatus represents the state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod represents the payment method chosen at checkout
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Label returns the human readable payment method name used in exports
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCOD:
		return "Cash on Delivery"
	case PaymentMethodCard:
		return "Card"
	case PaymentMethodBankTransfer:
		return "Bank Transfer"
	}
	return string(m)
}

// Emirates lists the valid delivery regions
var Emirates = []string{
	"Abu Dhabi",
	"Dubai",
	"Sharjah",
	"Ajman",
	"Umm Al Quwain",
	"Ras Al Khaimah",
	"Fujairah",
}

// IsEmirate reports whether name is one of Emirates (case-insensitive)
func IsEmirate(name string) bool {
	for _, e := range Emirates {
		if strings.EqualFold(e, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Cart is a shopper's pending selection, keyed by an opaque session ID
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents one SKU in the cart
type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"` // Denormalized at add time
}

// CartSummary is a cart with its computed totals
type CartSummary struct {
	Cart
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

// AdminUser represents a back-office account
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	AdminRoleAdmin = "admin"
	AdminRoleStaff = "staff"
)
