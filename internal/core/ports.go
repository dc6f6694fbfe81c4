package core

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantNotFound      = errors.New("product variant not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrAdminUserNotFound    = errors.New("admin user not found")
	ErrSnapshotNotFound     = errors.New("snapshot not found")
	ErrValidation           = errors.New("validation failed")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetAll(ctx context.Context, category string) ([]*Product, error)
	UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error
	UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error
	// AdjustVariantStock adds delta to a variant's stock and returns the new
	// level. A negative delta larger than the current stock fails with
	// ErrInsufficientStock and leaves the stock unchanged.
	AdjustVariantStock(ctx context.Context, productID, sku string, delta int) (int, error)
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetAll returns orders newest first, optionally filtered by status
	GetAll(ctx context.Context, status OrderStatus) ([]*Order, error)
	// GetByDateRange returns orders whose CreatedAt is within [start, end]
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}

// OrderPlacer is implemented by order repositories that can reserve item
// stock and insert the order in one transaction. PlaceOrder returns the
// remaining stock of each order item, in item order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *Order) ([]int, error)
}

// CartRepository defines the interface for cart session storage
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Set(ctx context.Context, cart *Cart, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// AdminUserRepository defines the interface for back-office accounts
type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	Create(ctx context.Context, user *AdminUser) error
}

// SnapshotStore persists opaque key-value snapshots
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
