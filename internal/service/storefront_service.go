package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/logger"
)

const orderNumberAttempts = 3

// CheckoutRequest carries the customer details submitted at checkout
type CheckoutRequest struct {
	FirstName     string             `json:"first_name" validate:"required,max=100"`
	LastName      string             `json:"last_name" validate:"required,max=100"`
	Email         string             `json:"email" validate:"required,email"`
	Phone         string             `json:"phone" validate:"required,phone"`
	Address       string             `json:"address" validate:"required,max=255"`
	City          string             `json:"city" validate:"required,max=100"`
	Emirate       string             `json:"emirate" validate:"required,emirate"`
	PaymentMethod core.PaymentMethod `json:"payment_method" validate:"required,oneof=cod card bank_transfer"`
}

// StorefrontService handles the customer facing catalog, cart and checkout
type StorefrontService struct {
	productRepo core.ProductRepository
	orderRepo   core.OrderRepository
	cartRepo    core.CartRepository
	eventBus    *events.EventBus
	shipping    core.ShippingPolicy
	cartTTL     time.Duration
	validate    *validator.Validate
	now         func() time.Time
}

// NewStorefrontService creates a new storefront service
func NewStorefrontService(
	productRepo core.ProductRepository,
	orderRepo core.OrderRepository,
	cartRepo core.CartRepository,
	eventBus *events.EventBus,
	shipping core.ShippingPolicy,
	cartTTL time.Duration,
	loc *time.Location,
) *StorefrontService {
	if loc == nil {
		loc = time.UTC
	}
	return &StorefrontService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		eventBus:    eventBus,
		shipping:    shipping,
		cartTTL:     cartTTL,
		validate:    newCheckoutValidator(),
		now:         func() time.Time { return time.Now().In(loc) },
	}
}

// ListProducts returns active products, optionally for one category
func (s *StorefrontService) ListProducts(ctx context.Context, category string) ([]*core.Product, error) {
	return s.productRepo.GetAll(ctx, strings.TrimSpace(category))
}

// GetProduct returns an active product
func (s *StorefrontService) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, core.ErrProductNotFound
	}
	return product, nil
}

// GetCart returns the cart for a session. Unknown sessions get an empty cart.
func (s *StorefrontService) GetCart(ctx context.Context, sessionID string) (*core.CartSummary, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := cart.Summary(s.shipping)
	return &summary, nil
}

// AddToCart adds quantity units of a variant, merging with an existing line
func (s *StorefrontService) AddToCart(ctx context.Context, sessionID, productID, sku string, quantity int) (*core.CartSummary, error) {
	if quantity <= 0 {
		return nil, core.ErrInvalidQuantity
	}

	product, variant, err := s.lookupVariant(ctx, productID, sku)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := findCartItem(cart, sku)
	existing := 0
	if i >= 0 {
		existing = cart.Items[i].Quantity
	}
	if existing+quantity > variant.Stock {
		return nil, fmt.Errorf("%w: %d available for %s", core.ErrInsufficientStock, variant.Stock, sku)
	}

	if i >= 0 {
		cart.Items[i].Quantity += quantity
		cart.Items[i].Price = variant.Price
	} else {
		cart.Items = append(cart.Items, core.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        variant.Size,
			SKU:         variant.SKU,
			Quantity:    quantity,
			Price:       variant.Price,
		})
	}

	return s.saveCart(ctx, cart)
}

// SetCartQuantity sets the quantity of a cart line. Zero removes the line.
func (s *StorefrontService) SetCartQuantity(ctx context.Context, sessionID, sku string, quantity int) (*core.CartSummary, error) {
	if quantity < 0 {
		return nil, core.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveFromCart(ctx, sessionID, sku)
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := findCartItem(cart, sku)
	if i < 0 {
		return nil, core.ErrVariantNotFound
	}

	_, variant, err := s.lookupVariant(ctx, cart.Items[i].ProductID, sku)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		return nil, fmt.Errorf("%w: %d available for %s", core.ErrInsufficientStock, variant.Stock, sku)
	}

	cart.Items[i].Quantity = quantity
	return s.saveCart(ctx, cart)
}

// RemoveFromCart drops a line from the cart
func (s *StorefrontService) RemoveFromCart(ctx context.Context, sessionID, sku string) (*core.CartSummary, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := findCartItem(cart, sku)
	if i < 0 {
		return nil, core.ErrVariantNotFound
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	return s.saveCart(ctx, cart)
}

// ClearCart deletes the session's cart
func (s *StorefrontService) ClearCart(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: cart session is required", core.ErrValidation)
	}
	return s.cartRepo.Delete(ctx, sessionID)
}

// Checkout turns the session's cart into a pending order, decrements stock
// and clears the cart.
func (s *StorefrontService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*core.Order, error) {
	if err := s.validateCheckout(&req); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, core.ErrEmptyCart
	}

	// Fail fast on stale carts. The reservation in placeOrder is the
	// authoritative stock check.
	for _, item := range cart.Items {
		_, variant, err := s.lookupVariant(ctx, item.ProductID, item.SKU)
		if err != nil {
			return nil, err
		}
		if item.Quantity > variant.Stock {
			return nil, fmt.Errorf("%w: %d available for %s", core.ErrInsufficientStock, variant.Stock, item.SKU)
		}
	}

	summary := cart.Summary(s.shipping)
	items := make([]core.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = core.NewOrderItem(item)
	}

	now := s.now()
	order := &core.Order{
		ID: uuid.New().String(),
		Customer: core.CustomerInfo{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		DeliveryAddress: core.DeliveryAddress{
			Address: req.Address,
			City:    req.City,
			Emirate: req.Emirate,
		},
		Items:         items,
		Subtotal:      summary.Subtotal,
		Shipping:      summary.Shipping,
		Total:         summary.Total,
		Status:        core.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	remaining, err := s.placeOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		for i, item := range order.Items {
			s.eventBus.PublishStockUpdated(item.ProductID, item.SKU, remaining[i])
		}
	}

	if err := s.cartRepo.Delete(ctx, sessionID); err != nil {
		logger.Log.Warn().Err(err).Str("order", order.OrderNumber).Msg("failed to clear cart after checkout")
	}

	if s.eventBus != nil {
		s.eventBus.PublishOrderCreated(order)
	}

	logger.Log.Info().
		Str("order", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Int("items", order.ItemCount()).
		Msg("order placed")

	return order, nil
}

// placeOrder reserves stock for every item and stores the order under a fresh
// order number, retrying on number collisions. Repositories implementing
// core.OrderPlacer do both in one transaction. Otherwise stock is reserved
// first and released again if the order cannot be stored.
func (s *StorefrontService) placeOrder(ctx context.Context, order *core.Order) ([]int, error) {
	if placer, ok := s.orderRepo.(core.OrderPlacer); ok {
		for attempt := 1; ; attempt++ {
			order.OrderNumber = NewOrderNumber(order.CreatedAt)
			remaining, err := placer.PlaceOrder(ctx, order)
			if err == nil {
				return remaining, nil
			}
			if !errors.Is(err, core.ErrDuplicateOrderNumber) {
				return nil, err
			}
			if attempt == orderNumberAttempts {
				return nil, fmt.Errorf("failed to create order: %w", err)
			}
		}
	}

	remaining, err := s.reserveStock(ctx, order.Items)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = NewOrderNumber(order.CreatedAt)
		err = s.orderRepo.CreateOrder(ctx, order)
		if err == nil {
			return remaining, nil
		}
		if !errors.Is(err, core.ErrDuplicateOrderNumber) || attempt == orderNumberAttempts {
			s.releaseStock(ctx, order.Items)
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}
}

// reserveStock decrements stock item by item. On failure the items already
// reserved are released.
func (s *StorefrontService) reserveStock(ctx context.Context, items []core.OrderItem) ([]int, error) {
	remaining := make([]int, len(items))
	for i, item := range items {
		stock, err := s.productRepo.AdjustVariantStock(ctx, item.ProductID, item.SKU, -item.Quantity)
		if err != nil {
			s.releaseStock(ctx, items[:i])
			if errors.Is(err, core.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: not enough %s left", core.ErrInsufficientStock, item.SKU)
			}
			return nil, err
		}
		remaining[i] = stock
	}
	return remaining, nil
}

func (s *StorefrontService) releaseStock(ctx context.Context, items []core.OrderItem) {
	for _, item := range items {
		if _, err := s.productRepo.AdjustVariantStock(ctx, item.ProductID, item.SKU, item.Quantity); err != nil {
			logger.Log.Error().Err(err).Str("sku", item.SKU).Int("quantity", item.Quantity).Msg("failed to release reserved stock")
		}
	}
}

// NewOrderNumber returns a human readable order number such as PF-20261016-3FA9C1
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PF-%s-%s", now.Format("20060102"), suffix)
}

func (s *StorefrontService) lookupVariant(ctx context.Context, productID, sku string) (*core.Product, core.ProductVariant, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, core.ProductVariant{}, err
	}
	variant, ok := product.Variant(sku)
	if !ok {
		return nil, core.ProductVariant{}, core.ErrVariantNotFound
	}
	return product, variant, nil
}

func (s *StorefrontService) loadCart(ctx context.Context, sessionID string) (*core.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: cart session is required", core.ErrValidation)
	}

	cart, err := s.cartRepo.Get(ctx, sessionID)
	if errors.Is(err, core.ErrCartNotFound) {
		return &core.Cart{SessionID: sessionID, Items: []core.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *StorefrontService) saveCart(ctx context.Context, cart *core.Cart) (*core.CartSummary, error) {
	cart.UpdatedAt = s.now()
	if err := s.cartRepo.Set(ctx, cart, s.cartTTL); err != nil {
		return nil, err
	}
	summary := cart.Summary(s.shipping)
	return &summary, nil
}

func findCartItem(cart *core.Cart, sku string) int {
	for i, item := range cart.Items {
		if item.SKU == sku {
			return i
		}
	}
	return -1
}
