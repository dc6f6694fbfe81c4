package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

type fakeProducts struct {
	mu       sync.Mutex
	products map[string]*core.Product
}

func newFakeProducts(products ...core.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[string]*core.Product)}
	for i := range products {
		p := products[i]
		p.Variants = append([]core.ProductVariant(nil), p.Variants...)
		f.products[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, core.ErrProductNotFound
	}
	cp := *p
	cp.Variants = append([]core.ProductVariant(nil), p.Variants...)
	return &cp, nil
}

func (f *fakeProducts) GetAll(ctx context.Context, category string) ([]*core.Product, error) {
	f.mu.Lock()
	ids := make([]string, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	out := []*core.Product{}
	for _, id := range ids {
		p, _ := f.GetByID(ctx, id)
		if p.IsActive && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error {
	return f.update(productID, sku, func(v *core.ProductVariant) { v.Price = price })
}

func (f *fakeProducts) UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error {
	return f.update(productID, sku, func(v *core.ProductVariant) { v.Stock = stock })
}

func (f *fakeProducts) AdjustVariantStock(ctx context.Context, productID, sku string, delta int) (int, error) {
	short := false
	stock := 0
	err := f.update(productID, sku, func(v *core.ProductVariant) {
		if v.Stock+delta < 0 {
			short = true
			return
		}
		v.Stock += delta
		stock = v.Stock
	})
	if err != nil {
		return 0, err
	}
	if short {
		return 0, core.ErrInsufficientStock
	}
	return stock, nil
}

func (f *fakeProducts) update(productID, sku string, fn func(*core.ProductVariant)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
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

type fakeCarts struct {
	mu   sync.Mutex
	data map[string]core.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{data: make(map[string]core.Cart)}
}

func (f *fakeCarts) Get(ctx context.Context, sessionID string) (*core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.data[sessionID]
	if !ok {
		return nil, core.ErrCartNotFound
	}
	cart.Items = append([]core.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (f *fakeCarts) Set(ctx context.Context, cart *core.Cart, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *cart
	stored.Items = append([]core.CartItem(nil), cart.Items...)
	f.data[cart.SessionID] = stored
	return nil
}

func (f *fakeCarts) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, sessionID)
	return nil
}

type fakeAdmins struct {
	users map[string]*core.AdminUser
}

func (f *fakeAdmins) GetByEmail(ctx context.Context, email string) (*core.AdminUser, error) {
	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrAdminUserNotFound
	}
	return user, nil
}

func (f *fakeAdmins) Create(ctx context.Context, user *core.AdminUser) error {
	f.users[strings.ToLower(user.Email)] = user
	return nil
}
