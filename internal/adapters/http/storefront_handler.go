package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/service"
)

const (
	cartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "cart_session"
)

// StorefrontHandler handles the public catalog, cart and checkout endpoints
type StorefrontHandler struct {
	storefrontService *service.StorefrontService
	cartTTL           time.Duration
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(storefrontService *service.StorefrontService, cartTTL time.Duration) *StorefrontHandler {
	return &StorefrontHandler{
		storefrontService: storefrontService,
		cartTTL:           cartTTL,
	}
}

// ListProducts returns active products
// GET /api/products?category=Dog%20Food
func (h *StorefrontHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.storefrontService.ListProducts(c.Context(), c.Query("category"))
	if err != nil {
		return respondError(c, err, "failed to get products")
	}

	return c.JSON(products)
}

// GetProduct returns one active product
// GET /api/products/:id
func (h *StorefrontHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.storefrontService.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "failed to get product")
	}

	return c.JSON(product)
}

// GetCart returns the session's cart with totals
// GET /api/cart
func (h *StorefrontHandler) GetCart(c *fiber.Ctx) error {
	summary, err := h.storefrontService.GetCart(c.Context(), h.session(c))
	if err != nil {
		return respondError(c, err, "failed to get cart")
	}

	return c.JSON(summary)
}

// AddToCart adds a variant to the session's cart
// POST /api/cart/items
func (h *StorefrontHandler) AddToCart(c *fiber.Ctx) error {
	var req struct {
		ProductID string `json:"product_id"`
		SKU       string `json:"sku"`
		Quantity  int    `json:"quantity"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ProductID == "" || req.SKU == "" {
		return badRequest(c, "product_id and sku are required")
	}

	summary, err := h.storefrontService.AddToCart(c.Context(), h.session(c), req.ProductID, req.SKU, req.Quantity)
	if err != nil {
		return respondError(c, err, "failed to add to cart")
	}

	return c.Status(fiber.StatusCreated).JSON(summary)
}

// UpdateCartItem sets the quantity of one cart line, 0 removes it
// PATCH /api/cart/items/:sku
func (h *StorefrontHandler) UpdateCartItem(c *fiber.Ctx) error {
	var req struct {
		Quantity *int `json:"quantity"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Quantity == nil {
		return badRequest(c, "quantity is required")
	}

	summary, err := h.storefrontService.SetCartQuantity(c.Context(), h.session(c), c.Params("sku"), *req.Quantity)
	if err != nil {
		return respondError(c, err, "failed to update cart")
	}

	return c.JSON(summary)
}

// RemoveCartItem removes one cart line
// DELETE /api/cart/items/:sku
func (h *StorefrontHandler) RemoveCartItem(c *fiber.Ctx) error {
	summary, err := h.storefrontService.RemoveFromCart(c.Context(), h.session(c), c.Params("sku"))
	if err != nil {
		return respondError(c, err, "failed to update cart")
	}

	return c.JSON(summary)
}

// Checkout turns the session's cart into an order
// POST /api/checkout
func (h *StorefrontHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.storefrontService.Checkout(c.Context(), h.session(c), req)
	if err != nil {
		return respondError(c, err, "failed to place order")
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// session returns the caller's cart session, starting a new one when the
// request carries none. The ID is echoed in the header and the cookie.
func (h *StorefrontHandler) session(c *fiber.Ctx) string {
	id := strings.TrimSpace(c.Get(cartSessionHeader))
	if id == "" {
		id = strings.TrimSpace(c.Cookies(cartSessionCookie))
	}
	if id == "" {
		id = uuid.NewString()
	}

	c.Set(cartSessionHeader, id)
	c.Cookie(&fiber.Cookie{
		Name:     cartSessionCookie,
		Value:    id,
		Expires:  time.Now().Add(h.cartTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return id
}
