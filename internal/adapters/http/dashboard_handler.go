package http

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/export"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/petfood-ae/storefront/internal/service"
	"github.com/shopspring/decimal"
)

const (
	authCookie        = "auth_token"
	heartbeatInterval = 30 * time.Second
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	secureCookies    bool
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, secureCookies bool) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		secureCookies:    secureCookies,
	}
}

// Login handles email and password login
// POST /api/admin/auth/login
func (h *DashboardHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	token, user, err := h.dashboardService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "failed to log in")
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    token,
		Expires:  time.Now().Add(service.TokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout handles user logout
// POST /api/admin/auth/logout
func (h *DashboardHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
	})

	return c.JSON(fiber.Map{
		"message": "logged out successfully",
	})
}

// GetMe returns current user info
// GET /api/admin/auth/me
func (h *DashboardHandler) GetMe(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)
	adminUser, err := h.dashboardService.GetAdminUserByEmail(c.Context(), email)
	if err != nil {
		return respondError(c, err, "failed to get user")
	}

	return c.JSON(adminUser)
}

// GetProducts retrieves all products
// GET /api/admin/products
func (h *DashboardHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.dashboardService.GetProducts(c.Context())
	if err != nil {
		return respondError(c, err, "failed to get products")
	}

	return c.JSON(products)
}

// UpdateVariantStock sets the stock of one variant
// PATCH /api/admin/products/:id/variants/:sku/stock
func (h *DashboardHandler) UpdateVariantStock(c *fiber.Ctx) error {
	var req struct {
		Stock *int `json:"stock"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Stock == nil {
		return badRequest(c, "stock is required")
	}

	if err := h.dashboardService.UpdateVariantStock(c.Context(), c.Params("id"), c.Params("sku"), *req.Stock); err != nil {
		return respondError(c, err, "failed to update stock")
	}

	return c.JSON(fiber.Map{
		"message": "stock updated successfully",
	})
}

// UpdateVariantPrice sets the price of one variant
// PATCH /api/admin/products/:id/variants/:sku/price
func (h *DashboardHandler) UpdateVariantPrice(c *fiber.Ctx) error {
	var req struct {
		Price decimal.NullDecimal `json:"price"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !req.Price.Valid {
		return badRequest(c, "price is required")
	}

	if err := h.dashboardService.UpdateVariantPrice(c.Context(), c.Params("id"), c.Params("sku"), req.Price.Decimal); err != nil {
		return respondError(c, err, "failed to update price")
	}

	return c.JSON(fiber.Map{
		"message": "price updated successfully",
	})
}

// GetOrders retrieves orders newest first
// GET /api/admin/orders?status=pending
func (h *DashboardHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.dashboardService.GetOrders(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, err, "failed to get orders")
	}

	return c.JSON(orders)
}

// GetOrder retrieves one order
// GET /api/admin/orders/:id
func (h *DashboardHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.dashboardService.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "failed to get order")
	}

	return c.JSON(order)
}

// UpdateOrderStatus changes an order's status
// PATCH /api/admin/orders/:id/status
func (h *DashboardHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status == "" {
		return badRequest(c, "status is required")
	}

	order, err := h.dashboardService.UpdateOrderStatus(c.Context(), c.Params("id"), core.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err, "failed to update order status")
	}

	return c.JSON(order)
}

// ExportOrders downloads the order list
// GET /api/admin/orders/export?format=csv&status=&filename=
func (h *DashboardHandler) ExportOrders(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	artifact, err := h.dashboardService.ExportOrders(c.Context(), c.Query("status"), format, c.Query("filename"))
	if err != nil {
		return respondError(c, err, "failed to export orders")
	}

	return sendArtifact(c, artifact)
}

// GetSalesStats returns aggregated sales for a period
// GET /api/admin/stats?period=week&from=&to=
func (h *DashboardHandler) GetSalesStats(c *fiber.Ctx) error {
	result, err := h.dashboardService.GetSalesStats(c.Context(), core.Period(c.Query("period")), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err, "failed to get sales stats")
	}

	return c.JSON(result)
}

// ExportSalesReport downloads the sales report for a period
// GET /api/admin/stats/export?period=month&format=pdf&filename=
func (h *DashboardHandler) ExportSalesReport(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	artifact, err := h.dashboardService.ExportSalesReport(
		c.Context(),
		core.Period(c.Query("period")),
		c.Query("from"),
		c.Query("to"),
		format,
		c.Query("filename"),
	)
	if err != nil {
		return respondError(c, err, "failed to export sales report")
	}

	return sendArtifact(c, artifact)
}

func sendArtifact(c *fiber.Ctx, artifact *export.Artifact) error {
	c.Set(fiber.HeaderContentType, artifact.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	return c.Send(artifact.Data)
}

// SSEEvents handles Server-Sent Events for real-time updates
// GET /api/admin/events
func (h *DashboardHandler) SSEEvents(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	// The stream writer outlives the handler, so it cannot use the request context
	ctx, cancel := context.WithCancel(context.Background())

	subscriberID := uuid.New().String()
	bus := h.dashboardService.GetEventBus()
	eventChan := bus.Subscribe(ctx, subscriberID)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		if _, err := w.WriteString("event: connected\ndata: {\"message\":\"connected\"}\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case event, ok := <-eventChan:
				if !ok {
					return
				}

				sseData, err := events.FormatSSE(event)
				if err != nil {
					logger.Log.Warn().Err(err).Str("event", string(event.Type)).Msg("failed to format SSE event")
					continue
				}

				if _, err := w.WriteString(sseData); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-ticker.C:
				if _, err := w.WriteString(": heartbeat\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}
