package service

import (
	"context"
	"sync"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var gst = time.FixedZone("GST", 4*60*60)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*core.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context, category string) ([]*core.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*core.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error {
	args := m.Called(ctx, productID, sku, price)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error {
	args := m.Called(ctx, productID, sku, stock)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustVariantStock(ctx context.Context, productID, sku string, delta int) (int, error) {
	args := m.Called(ctx, productID, sku, delta)
	return args.Int(0), args.Error(1)
}

type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) GetByEmail(ctx context.Context, email string) (*core.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *core.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// catalog is an in-memory ProductRepository
type catalog struct {
	mu       sync.Mutex
	products map[string]*core.Product
}

func newCatalog(products ...core.Product) *catalog {
	c := &catalog{products: make(map[string]*core.Product)}
	for i := range products {
		p := products[i]
		p.Variants = append([]core.ProductVariant(nil), p.Variants...)
		c.products[p.ID] = &p
	}
	return c
}

func (c *catalog) GetByID(ctx context.Context, id string) (*core.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, core.ErrProductNotFound
	}
	cp := *p
	cp.Variants = append([]core.ProductVariant(nil), p.Variants...)
	return &cp, nil
}

func (c *catalog) GetAll(ctx context.Context, category string) ([]*core.Product, error) {
	out := []*core.Product{}
	for id := range c.products {
		p, _ := c.GetByID(ctx, id)
		if p.IsActive && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *catalog) UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error {
	return c.update(productID, sku, func(v *core.ProductVariant) { v.Price = price })
}

func (c *catalog) UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error {
	return c.update(productID, sku, func(v *core.ProductVariant) { v.Stock = stock })
}

func (c *catalog) AdjustVariantStock(ctx context.Context, productID, sku string, delta int) (int, error) {
	var stock int
	err := c.update(productID, sku, func(v *core.ProductVariant) {
		if v.Stock+delta < 0 {
			stock = -1
			return
		}
		v.Stock += delta
		stock = v.Stock
	})
	if err != nil {
		return 0, err
	}
	if stock < 0 {
		return 0, core.ErrInsufficientStock
	}
	return stock, nil
}

func (c *catalog) update(productID, sku string, fn func(*core.ProductVariant)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return core.ErrProductNotFound
	}
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			fn(&p.Variants[i])
			return nil
		}
	}
	return core.ErrVariantNotFound
}

func (c *catalog) stock(productID, sku string) int {
	p, _ := c.GetByID(context.Background(), productID)
	v, _ := p.Variant(sku)
	return v.Stock
}

// carts is an in-memory CartRepository
type carts struct {
	mu   sync.Mutex
	data map[string]core.Cart
}

func newCarts() *carts {
	return &carts{data: make(map[string]core.Cart)}
}

func (c *carts) Get(ctx context.Context, sessionID string) (*core.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cart, ok := c.data[sessionID]
	if !ok {
		return nil, core.ErrCartNotFound
	}
	cart.Items = append([]core.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (c *carts) Set(ctx context.Context, cart *core.Cart, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := *cart
	stored.Items = append([]core.CartItem(nil), cart.Items...)
	c.data[cart.SessionID] = stored
	return nil
}

func (c *carts) Delete(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, sessionID)
	return nil
}
