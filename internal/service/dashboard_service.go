package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of an admin session token
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid email or password")

// DashboardService handles dashboard business logic
type DashboardService struct {
	adminUserRepo core.AdminUserRepository
	productRepo   core.ProductRepository
	orderRepo     core.OrderRepository
	eventBus      *events.EventBus
	jwtSecret     string
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service. Period boundaries for
// statistics are computed in loc.
func NewDashboardService(
	adminUserRepo core.AdminUserRepository,
	productRepo core.ProductRepository,
	orderRepo core.OrderRepository,
	eventBus *events.EventBus,
	jwtSecret string,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		adminUserRepo: adminUserRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		eventBus:      eventBus,
		jwtSecret:     jwtSecret,
		loc:           loc,
		now:           time.Now,
	}
}

// Login verifies an admin's email and password and returns a JWT token
func (s *DashboardService) Login(ctx context.Context, email, password string) (string, *core.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	adminUser, err := s.adminUserRepo.GetByEmail(ctx, email)
	if errors.Is(err, core.ErrAdminUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	if !adminUser.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminUser.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(adminUser)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Log.Info().Str("email", adminUser.Email).Str("role", adminUser.Role).Msg("admin logged in")
	return token, adminUser, nil
}

// GetAdminUserByEmail retrieves an admin user by email
func (s *DashboardService) GetAdminUserByEmail(ctx context.Context, email string) (*core.AdminUser, error) {
	return s.adminUserRepo.GetByEmail(ctx, email)
}

// GetOrders retrieves orders newest first with an optional status filter
func (s *DashboardService) GetOrders(ctx context.Context, status string) ([]*core.Order, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetAll(ctx, filter)
}

// GetOrder retrieves one order
func (s *DashboardService) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// UpdateOrderStatus sets an order's status and emits an SSE event
func (s *DashboardService) UpdateOrderStatus(ctx context.Context, id string, status core.OrderStatus) (*core.Order, error) {
	if !status.Valid() {
		return nil, core.ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	if s.eventBus != nil {
		s.eventBus.PublishOrderStatusChanged(order.ID, order.OrderNumber, string(order.Status))
	}
	return order, nil
}

// GetProducts retrieves all active products
func (s *DashboardService) GetProducts(ctx context.Context) ([]*core.Product, error) {
	return s.productRepo.GetAll(ctx, "")
}

// UpdateVariantStock updates variant stock and emits event
func (s *DashboardService) UpdateVariantStock(ctx context.Context, productID, sku string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", core.ErrValidation)
	}
	if err := s.productRepo.UpdateVariantStock(ctx, productID, sku, stock); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.PublishStockUpdated(productID, sku, stock)
	}
	return nil
}

// UpdateVariantPrice updates variant price and emits event
func (s *DashboardService) UpdateVariantPrice(ctx context.Context, productID, sku string, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", core.ErrValidation)
	}
	price = price.Round(2)
	if err := s.productRepo.UpdateVariantPrice(ctx, productID, sku, price); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.PublishPriceUpdated(productID, sku, price)
	}
	return nil
}

// GetEventBus returns the event bus for SSE subscriptions
func (s *DashboardService) GetEventBus() *events.EventBus {
	return s.eventBus
}

func parseStatusFilter(status string) (core.OrderStatus, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return "", nil
	}
	filter := core.OrderStatus(status)
	if !filter.Valid() {
		return "", core.ErrInvalidStatus
	}
	return filter, nil
}

// generateJWT generates a JWT token for an admin user
func (s *DashboardService) generateJWT(user *core.AdminUser) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     now.Add(TokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateJWT validates a JWT token and returns the claims
func (s *DashboardService) ValidateJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// HashPassword returns the bcrypt hash used for admin accounts
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
