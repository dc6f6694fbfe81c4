package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "sess-1"

var testProducts = []core.Product{
	{
		ID: "dog", Name: "Adult Dog Food", Category: "Dog Food", IsActive: true,
		Variants: []core.ProductVariant{
			{SKU: "DOG-2", Size: "2kg", Price: decimal.RequireFromString("55.00"), Stock: 10},
			{SKU: "DOG-7", Size: "7kg", Price: decimal.RequireFromString("165.00"), Stock: 2},
		},
	},
	{
		ID: "old", Name: "Discontinued", Category: "Dog Food", IsActive: false,
		Variants: []core.ProductVariant{{SKU: "OLD-1", Size: "1kg", Price: decimal.NewFromInt(10), Stock: 5}},
	},
}

type storefrontFixture struct {
	svc     *StorefrontService
	catalog *catalog
	carts   *carts
	orders  *store.OrderStore
	bus     *events.EventBus
}

func newStorefront(t *testing.T) storefrontFixture {
	t.Helper()
	f := storefrontFixture{
		catalog: newCatalog(testProducts...),
		carts:   newCarts(),
		orders:  store.NewOrderStore(store.NewMemorySnapshots(), ""),
		bus:     events.NewEventBus(),
	}
	f.svc = f.service(f.catalog, f.orders)
	return f
}

// service builds a StorefrontService over the fixture's carts and bus with
// the given repositories swapped in.
func (f storefrontFixture) service(products core.ProductRepository, orders core.OrderRepository) *StorefrontService {
	policy := core.ShippingPolicy{FlatFee: decimal.NewFromInt(15), FreeThreshold: decimal.NewFromInt(200)}
	svc := NewStorefrontService(products, orders, f.carts, f.bus, policy, time.Hour, gst)
	svc.now = func() time.Time { return time.Date(2026, time.October, 16, 14, 30, 0, 0, gst) }
	return svc
}

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		FirstName:     "Layla",
		LastName:      "Haddad",
		Email:         "layla@example.com",
		Phone:         "+971 50 123 4567",
		Address:       "Villa 12, Street 4",
		City:          "Jumeirah",
		Emirate:       "dubai",
		PaymentMethod: core.PaymentMethodCOD,
	}
}

func TestStorefront_GetCartUnknownSession(t *testing.T) {
	f := newStorefront(t)

	summary, err := f.svc.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.ItemCount)
	assert.True(t, summary.Shipping.IsZero())
	assert.True(t, summary.Total.IsZero())
}

func TestStorefront_AddToCart(t *testing.T) {
	ctx := context.Background()
	f := newStorefront(t)

	summary, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 2)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "110.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", summary.Shipping.StringFixed(2))
	assert.Equal(t, "125.00", summary.Total.StringFixed(2))

	summary, err = f.svc.AddToCart(ctx, session, "dog", "DOG-2", 3)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 5, summary.Items[0].Quantity)
	assert.Equal(t, "275.00", summary.Subtotal.StringFixed(2))
	assert.True(t, summary.Shipping.IsZero(), "free shipping at or above threshold")
}

func TestStorefront_AddToCartErrors(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		sku       string
		qty       int
		wantErr   error
	}{
		{"zero quantity", "dog", "DOG-2", 0, core.ErrInvalidQuantity},
		{"negative quantity", "dog", "DOG-2", -1, core.ErrInvalidQuantity},
		{"unknown product", "cat", "CAT-1", 1, core.ErrProductNotFound},
		{"inactive product", "old", "OLD-1", 1, core.ErrProductNotFound},
		{"unknown sku", "dog", "DOG-99", 1, core.ErrVariantNotFound},
		{"over stock", "dog", "DOG-7", 3, core.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorefront(t)
			_, err := f.svc.AddToCart(context.Background(), session, tt.productID, tt.sku, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStorefront_AddToCartRequiresSession(t *testing.T) {
	f := newStorefront(t)
	_, err := f.svc.AddToCart(context.Background(), " ", "dog", "DOG-2", 1)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestStorefront_SetCartQuantity(t *testing.T) {
	ctx := context.Background()
	f := newStorefront(t)

	_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, session, "dog", "DOG-7", 1)
	require.NoError(t, err)

	summary, err := f.svc.SetCartQuantity(ctx, session, "DOG-2", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.ItemCount)

	_, err = f.svc.SetCartQuantity(ctx, session, "DOG-7", 3)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)

	_, err = f.svc.SetCartQuantity(ctx, session, "NOPE", 1)
	assert.ErrorIs(t, err, core.ErrVariantNotFound)

	summary, err = f.svc.SetCartQuantity(ctx, session, "DOG-7", 0)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "DOG-2", summary.Items[0].SKU)

	summary, err = f.svc.RemoveFromCart(ctx, session, "DOG-2")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Total.IsZero())
}

func TestStorefront_Checkout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newStorefront(t)
	sub := f.bus.Subscribe(ctx, "test")

	_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, session, "dog", "DOG-7", 1)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, session, validCheckout())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^PF-20261016-[0-9A-F]{6}$`), order.OrderNumber)
	assert.Equal(t, core.OrderStatusPending, order.Status)
	assert.Equal(t, "Dubai", order.DeliveryAddress.Emirate)
	assert.Equal(t, "+971501234567", order.Customer.Phone)
	assert.Equal(t, "275.00", order.Subtotal.StringFixed(2))
	assert.True(t, order.Shipping.IsZero())
	assert.Equal(t, "275.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "110.00", order.Items[0].Subtotal.StringFixed(2))

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)

	assert.Equal(t, 8, f.catalog.stock("dog", "DOG-2"))
	assert.Equal(t, 1, f.catalog.stock("dog", "DOG-7"))

	cart, err := f.svc.GetCart(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var types []events.EventType
	for len(sub) > 0 {
		types = append(types, (<-sub).Type)
	}
	assert.Contains(t, types, events.EventOrderCreated)
	assert.Contains(t, types, events.EventStockUpdated)
}

func TestStorefront_CheckoutEmptyCart(t *testing.T) {
	f := newStorefront(t)
	_, err := f.svc.Checkout(context.Background(), session, validCheckout())
	assert.ErrorIs(t, err, core.ErrEmptyCart)
}

func TestStorefront_CheckoutStockChangedSinceAdd(t *testing.T) {
	ctx := context.Background()
	f := newStorefront(t)

	_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-7", 2)
	require.NoError(t, err)
	require.NoError(t, f.catalog.UpdateVariantStock(ctx, "dog", "DOG-7", 1))

	_, err = f.svc.Checkout(ctx, session, validCheckout())
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Equal(t, 0, f.orders.Len())
}

func TestStorefront_CheckoutValidation(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*CheckoutRequest)
	}{
		{"missing first name", "first_name", func(r *CheckoutRequest) { r.FirstName = "  " }},
		{"missing last name", "last_name", func(r *CheckoutRequest) { r.LastName = "" }},
		{"bad email", "email", func(r *CheckoutRequest) { r.Email = "not-an-email" }},
		{"display name email", "email", func(r *CheckoutRequest) { r.Email = "Layla <layla@example.com>" }},
		{"bad phone", "phone", func(r *CheckoutRequest) { r.Phone = "12ab" }},
		{"missing address", "address", func(r *CheckoutRequest) { r.Address = "" }},
		{"unknown emirate", "emirate", func(r *CheckoutRequest) { r.Emirate = "Doha" }},
		{"unknown payment", "payment_method", func(r *CheckoutRequest) { r.PaymentMethod = "crypto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newStorefront(t)
			_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 1)
			require.NoError(t, err)

			req := validCheckout()
			tt.mutate(&req)
			_, err = f.svc.Checkout(ctx, session, req)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, 0, f.orders.Len())
		})
	}
}

func TestStorefront_CheckoutDefaultsPaymentToCOD(t *testing.T) {
	ctx := context.Background()
	f := newStorefront(t)
	_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 1)
	require.NoError(t, err)

	req := validCheckout()
	req.PaymentMethod = ""
	order, err := f.svc.Checkout(ctx, session, req)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "70.00", order.Total.StringFixed(2))
}

// lockstepCatalog holds the first `parties` product reads until all of them
// have arrived, so concurrent checkouts all see the same stock level.
type lockstepCatalog struct {
	*catalog
	parties int32
	reads   atomic.Int32
	arrived sync.WaitGroup
}

func newLockstepCatalog(c *catalog, parties int) *lockstepCatalog {
	l := &lockstepCatalog{catalog: c, parties: int32(parties)}
	l.arrived.Add(parties)
	return l
}

func (l *lockstepCatalog) GetByID(ctx context.Context, id string) (*core.Product, error) {
	if l.reads.Add(1) <= l.parties {
		l.arrived.Done()
		l.arrived.Wait()
	}
	return l.catalog.GetByID(ctx, id)
}

func TestStorefront_ConcurrentCheckoutsCannotOversell(t *testing.T) {
	ctx := context.Background()
	f := newStorefront(t)
	sessions := []string{"sess-a", "sess-b"}
	for _, sess := range sessions {
		_, err := f.svc.AddToCart(ctx, sess, "dog", "DOG-7", 2)
		require.NoError(t, err)
	}

	svc := f.service(newLockstepCatalog(f.catalog, len(sessions)), f.orders)

	errs := make([]error, len(sessions))
	var wg sync.WaitGroup
	for i, sess := range sessions {
		wg.Add(1)
		go func(i int, sess string) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(ctx, sess, validCheckout())
		}(i, sess)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, core.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one checkout should win the last units")
	assert.Equal(t, 1, f.orders.Len())
	assert.Equal(t, 0, f.catalog.stock("dog", "DOG-7"))
}

// failingOrders rejects the first `failures` writes with err.
type failingOrders struct {
	*store.OrderStore
	err      error
	failures int
	calls    int
}

func (o *failingOrders) CreateOrder(ctx context.Context, order *core.Order) error {
	o.calls++
	if o.calls <= o.failures {
		return o.err
	}
	return o.OrderStore.CreateOrder(ctx, order)
}

func TestStorefront_CheckoutOrderWrite(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		failures   int
		wantErr    error
		wantCalls  int
		wantOrders int
		wantStock  int
	}{
		{"store failure releases stock", errors.New("disk full"), 1, nil, 1, 0, 10},
		{"retries order number collisions", core.ErrDuplicateOrderNumber, 2, nil, 3, 1, 7},
		{"gives up after repeated collisions", core.ErrDuplicateOrderNumber, 3, core.ErrDuplicateOrderNumber, 3, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newStorefront(t)
			_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 3)
			require.NoError(t, err)

			orders := &failingOrders{OrderStore: f.orders, err: tt.err, failures: tt.failures}
			_, err = f.service(f.catalog, orders).Checkout(ctx, session, validCheckout())
			switch {
			case tt.wantOrders == 1:
				require.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.ErrorIs(t, err, tt.err)
			}

			assert.Equal(t, tt.wantCalls, orders.calls)
			assert.Equal(t, tt.wantOrders, f.orders.Len())
			assert.Equal(t, tt.wantStock, f.catalog.stock("dog", "DOG-2"))

			cart, err := f.svc.GetCart(ctx, session)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrders == 0, len(cart.Items) == 1, "cart is kept only when the order failed")
		})
	}
}

// placingOrders stands in for a transactional backend that reserves stock
// together with the order insert.
type placingOrders struct {
	*store.OrderStore
	placed []*core.Order
}

func (o *placingOrders) PlaceOrder(ctx context.Context, order *core.Order) ([]int, error) {
	if err := o.OrderStore.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	o.placed = append(o.placed, order)
	remaining := make([]int, len(order.Items))
	for i := range remaining {
		remaining[i] = 42
	}
	return remaining, nil
}

func TestStorefront_CheckoutUsesOrderPlacer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newStorefront(t)
	sub := f.bus.Subscribe(ctx, "test")
	_, err := f.svc.AddToCart(ctx, session, "dog", "DOG-2", 2)
	require.NoError(t, err)

	orders := &placingOrders{OrderStore: f.orders}
	order, err := f.service(f.catalog, orders).Checkout(ctx, session, validCheckout())
	require.NoError(t, err)

	require.Len(t, orders.placed, 1)
	assert.Equal(t, order.ID, orders.placed[0].ID)
	assert.Equal(t, 10, f.catalog.stock("dog", "DOG-2"), "placer owns the stock reservation")

	event := <-sub
	assert.Equal(t, events.EventStockUpdated, event.Type)
	assert.Equal(t, events.StockChange{ProductID: "dog", SKU: "DOG-2", Stock: 42}, event.Data)
}
