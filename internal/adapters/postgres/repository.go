package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// Repository implements ProductRepository, OrderRepository, and AdminUserRepository using GORM with pgx driver
type Repository struct {
	db                  *gorm.DB
	productRepository   *productRepository
	orderRepository     *orderRepository
	adminUserRepository *adminUserRepository
}

// productRepository implements ProductRepository methods
type productRepository struct {
	*Repository
}

// orderRepository implements OrderRepository methods
type orderRepository struct {
	*Repository
}

// adminUserRepository implements AdminUserRepository methods
type adminUserRepository struct {
	*Repository
}

// NewRepository creates a new Postgres repository instance
func NewRepository(dbURL string) (*Repository, error) {
	// GORM with pgx driver (postgres driver uses pgx under the hood)
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newRepository(db), nil
}

func newRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	repo.productRepository = &productRepository{Repository: repo}
	repo.orderRepository = &orderRepository{Repository: repo}
	repo.adminUserRepository = &adminUserRepository{Repository: repo}
	return repo
}

// ProductRepository returns the ProductRepository interface implementation
func (r *Repository) ProductRepository() core.ProductRepository {
	return r.productRepository
}

// OrderRepository returns the OrderRepository interface implementation
func (r *Repository) OrderRepository() core.OrderRepository {
	return r.orderRepository
}

// AdminUserRepository returns the AdminUserRepository interface implementation
func (r *Repository) AdminUserRepository() core.AdminUserRepository {
	return r.adminUserRepository
}

// Close releases the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func preloadVariants(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ProductRepository implementation

// GetByID retrieves a product with its variants
func (r *productRepository) GetByID(ctx context.Context, id string) (*core.Product, error) {
	var productModel ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("id = ?", id).
		First(&productModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return productModel.ToDomain(), nil
}

// GetAll retrieves all active products, optionally restricted to a category
func (r *productRepository) GetAll(ctx context.Context, category string) ([]*core.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("is_active = ?", true).
		Order("category, name")
	if category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", category)
	}

	var productModels []ProductModel
	if err := query.Find(&productModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := make([]*core.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// UpdateVariantPrice updates the price of one variant
func (r *productRepository) UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error {
	return r.updateVariant(ctx, productID, sku, map[string]interface{}{"price": price})
}

// UpdateVariantStock updates the stock of one variant
func (r *productRepository) UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error {
	return r.updateVariant(ctx, productID, sku, map[string]interface{}{"stock": stock})
}

// AdjustVariantStock adds delta to a variant's stock in a single conditional
// UPDATE, so concurrent reservations can never drive stock below zero
func (r *productRepository) AdjustVariantStock(ctx context.Context, productID, sku string, delta int) (int, error) {
	var stock int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stock, err = adjustStock(tx, productID, sku, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func adjustStock(tx *gorm.DB, productID, sku string, delta int) (int, error) {
	query := tx.Table("product_variants").Where("product_id = ? AND sku = ?", productID, sku)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}

	result := query.Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Table("product_variants").
			Where("product_id = ? AND sku = ?", productID, sku).
			Count(&count).Error; err != nil {
			return 0, fmt.Errorf("failed to check variant: %w", err)
		}
		if count == 0 {
			return 0, core.ErrVariantNotFound
		}
		return 0, core.ErrInsufficientStock
	}

	var stock int
	if err := tx.Table("product_variants").
		Select("stock").
		Where("product_id = ? AND sku = ?", productID, sku).
		Scan(&stock).Error; err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	if err := tx.Table("products").
		Where("id = ?", productID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return 0, fmt.Errorf("failed to touch product: %w", err)
	}
	return stock, nil
}

func (r *productRepository) updateVariant(ctx context.Context, productID, sku string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Table("product_variants").
			Where("product_id = ? AND sku = ?", productID, sku).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update variant: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return core.ErrVariantNotFound
		}

		if err := tx.Table("products").
			Where("id = ?", productID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
			return fmt.Errorf("failed to touch product: %w", err)
		}
		return nil
	})
}

// UpsertProduct inserts or replaces a product and its variants
func (r *Repository) UpsertProduct(ctx context.Context, product *core.Product) error {
	return r.productRepository.upsert(ctx, product)
}

func (r *productRepository) upsert(ctx context.Context, product *core.Product) error {
	model := ProductModelFromDomain(product)
	variants := model.Variants
	model.Variants = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return fmt.Errorf("failed to upsert product: %w", err)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&ProductVariantModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear variants: %w", err)
		}
		if len(variants) == 0 {
			return nil
		}
		if err := tx.Create(&variants).Error; err != nil {
			return fmt.Errorf("failed to create variants: %w", err)
		}
		return nil
	})
}

// OrderRepository implementation

// CreateOrder creates a new order with its items in a transaction
func (r *orderRepository) CreateOrder(ctx context.Context, order *core.Order) error {
	orderModel := OrderModelFromDomain(order)

	// Items are inserted through the association in the same transaction
	return orderCreateError(r.db.WithContext(ctx).Create(orderModel).Error)
}

// PlaceOrder reserves stock for every item and inserts the order in one
// transaction. Nothing is written when any item is short.
func (r *orderRepository) PlaceOrder(ctx context.Context, order *core.Order) ([]int, error) {
	remaining := make([]int, len(order.Items))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range order.Items {
			stock, err := adjustStock(tx, item.ProductID, item.SKU, -item.Quantity)
			if err != nil {
				if errors.Is(err, core.ErrInsufficientStock) {
					return fmt.Errorf("%w: not enough %s left", core.ErrInsufficientStock, item.SKU)
				}
				return err
			}
			remaining[i] = stock
		}
		return orderCreateError(tx.Create(OrderModelFromDomain(order)).Error)
	})
	if err != nil {
		return nil, err
	}
	return remaining, nil
}

func orderCreateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "order_number") {
		return core.ErrDuplicateOrderNumber
	}
	return fmt.Errorf("failed to create order: %w", err)
}

// GetByID retrieves an order by its ID with all items
func (r *orderRepository) GetByID(ctx context.Context, id string) (*core.Order, error) {
	var orderModel OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("id = ?", id).
		First(&orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return orderModel.ToDomain(), nil
}

// GetAll retrieves orders newest first with an optional status filter
func (r *orderRepository) GetAll(ctx context.Context, status core.OrderStatus) ([]*core.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	return r.find(query)
}

// GetByDateRange retrieves orders created within [start, end]
func (r *orderRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*core.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC")
	return r.find(query)
}

func (r *orderRepository) find(query *gorm.DB) ([]*core.Order, error) {
	var orderModels []OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	orders := make([]*core.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// UpdateStatus updates the status of an order
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status core.OrderStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}

	result := r.db.WithContext(ctx).Table("orders").
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrOrderNotFound
	}
	return nil
}

// AdminUserRepository implementation

// GetByEmail retrieves an admin user by email (case-insensitive)
func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*core.AdminUser, error) {
	var adminModel AdminUserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		First(&adminModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return adminModel.ToDomain(), nil
}

// Create creates a new admin user
func (r *adminUserRepository) Create(ctx context.Context, user *core.AdminUser) error {
	adminModel := &AdminUserModel{
		ID:           user.ID,
		Email:        strings.ToLower(strings.TrimSpace(user.Email)),
		Name:         user.Name,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(adminModel).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
