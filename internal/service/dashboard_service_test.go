package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/events"
	"github.com/petfood-ae/storefront/internal/export"
	"github.com/petfood-ae/storefront/internal/stats"
	"github.com/petfood-ae/storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, time.October, 16, 14, 30, 0, 0, gst)

type dashboardFixture struct {
	svc      *DashboardService
	admins   *MockAdminUserRepository
	products *MockProductRepository
	orders   *store.OrderStore
	bus      *events.EventBus
}

func newDashboard(t *testing.T) dashboardFixture {
	t.Helper()
	f := dashboardFixture{
		admins:   new(MockAdminUserRepository),
		products: new(MockProductRepository),
		orders:   store.NewOrderStore(store.NewMemorySnapshots(), ""),
		bus:      events.NewEventBus(),
	}
	f.svc = NewDashboardService(f.admins, f.products, f.orders, f.bus, "test-secret", gst)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func adminWithPassword(t *testing.T, password string, active bool) *core.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &core.AdminUser{
		ID:           "admin-1",
		Email:        "admin@petfood.ae",
		Name:         "Store Admin",
		PasswordHash: string(hash),
		Role:         core.AdminRoleAdmin,
		IsActive:     active,
	}
}

func TestDashboard_Login(t *testing.T) {
	f := newDashboard(t)
	f.admins.On("GetByEmail", mock.Anything, "admin@petfood.ae").
		Return(adminWithPassword(t, "s3cret-pass", true), nil).
		Once()

	token, user, err := f.svc.Login(context.Background(), "  Admin@PetFood.ae ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", user.ID)

	claims, err := f.svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@petfood.ae", claims["email"])
	assert.Equal(t, core.AdminRoleAdmin, claims["role"])
	assert.Equal(t, float64(testNow.Add(TokenTTL).Unix()), claims["exp"])

	f.admins.AssertExpectations(t)
}

func TestDashboard_LoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		user     *core.AdminUser
		repoErr  error
	}{
		{"wrong password", "admin@petfood.ae", "nope", adminWithPassword(t, "right", true), nil},
		{"inactive", "admin@petfood.ae", "right", adminWithPassword(t, "right", false), nil},
		{"unknown", "admin@petfood.ae", "right", nil, core.ErrAdminUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDashboard(t)
			f.admins.On("GetByEmail", mock.Anything, tt.email).Return(tt.user, tt.repoErr)

			_, _, err := f.svc.Login(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	t.Run("empty credentials skip lookup", func(t *testing.T) {
		f := newDashboard(t)
		_, _, err := f.svc.Login(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		f.admins.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})
}

func TestDashboard_ValidateJWTExpired(t *testing.T) {
	f := newDashboard(t)
	token, err := f.svc.generateJWT(&core.AdminUser{ID: "a", Email: "a@x.com", Role: core.AdminRoleStaff})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return testNow.Add(TokenTTL + time.Minute) }
	_, err = f.svc.ValidateJWT(token)
	assert.Error(t, err)

	other := NewDashboardService(nil, nil, nil, nil, "other-secret", gst)
	other.now = func() time.Time { return testNow }
	_, err = other.ValidateJWT(token)
	assert.Error(t, err)
}

func seedOrder(t *testing.T, s *store.OrderStore, id, email string, createdAt time.Time, total string) {
	t.Helper()
	amount := decimal.RequireFromString(total)
	require.NoError(t, s.CreateOrder(context.Background(), &core.Order{
		ID:          id,
		OrderNumber: "PF-" + id,
		Customer:    core.CustomerInfo{FirstName: "Test", LastName: id, Email: email},
		Items: []core.OrderItem{
			{ProductID: "p1", ProductName: "Chicken", Size: "2kg", SKU: "CHK-2", Quantity: 1, Price: amount, Subtotal: amount},
		},
		Subtotal:      amount,
		Shipping:      decimal.Zero,
		Total:         amount,
		Status:        core.OrderStatusPending,
		PaymentMethod: core.PaymentMethodCOD,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}))
}

func TestDashboard_UpdateOrderStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newDashboard(t)
	sub := f.bus.Subscribe(ctx, "test")
	seedOrder(t, f.orders, "o1", "a@x.com", testNow, "50")

	order, err := f.svc.UpdateOrderStatus(ctx, "o1", core.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusShipped, order.Status)

	event := <-sub
	assert.Equal(t, events.EventOrderStatusChanged, event.Type)

	_, err = f.svc.UpdateOrderStatus(ctx, "o1", "lost")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)

	_, err = f.svc.UpdateOrderStatus(ctx, "missing", core.OrderStatusShipped)
	assert.ErrorIs(t, err, core.ErrOrderNotFound)
}

func TestDashboard_GetOrdersStatusFilter(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	seedOrder(t, f.orders, "o1", "a@x.com", testNow.Add(-time.Hour), "50")
	seedOrder(t, f.orders, "o2", "b@x.com", testNow, "60")
	require.NoError(t, f.orders.UpdateStatus(ctx, "o1", core.OrderStatusDelivered))

	all, err := f.svc.GetOrders(ctx, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o2", all[0].ID)

	delivered, err := f.svc.GetOrders(ctx, " Delivered ")
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "o1", delivered[0].ID)

	_, err = f.svc.GetOrders(ctx, "lost")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestDashboard_UpdateVariantPrice(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	rounded := mock.MatchedBy(func(price decimal.Decimal) bool {
		return price.Equal(decimal.RequireFromString("57.13"))
	})
	f.products.On("UpdateVariantPrice", mock.Anything, "dog", "DOG-2", rounded).
		Return(nil).
		Once()

	require.NoError(t, f.svc.UpdateVariantPrice(ctx, "dog", "DOG-2", decimal.RequireFromString("57.125")))

	err := f.svc.UpdateVariantPrice(ctx, "dog", "DOG-2", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, core.ErrValidation)

	f.products.AssertExpectations(t)
}

func TestDashboard_UpdateVariantStock(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	f.products.On("UpdateVariantStock", mock.Anything, "dog", "DOG-2", 40).Return(nil).Once()
	f.products.On("UpdateVariantStock", mock.Anything, "dog", "NOPE", 1).Return(core.ErrVariantNotFound).Once()

	require.NoError(t, f.svc.UpdateVariantStock(ctx, "dog", "DOG-2", 40))
	assert.ErrorIs(t, f.svc.UpdateVariantStock(ctx, "dog", "NOPE", 1), core.ErrVariantNotFound)
	assert.ErrorIs(t, f.svc.UpdateVariantStock(ctx, "dog", "DOG-2", -5), core.ErrValidation)

	f.products.AssertExpectations(t)
}

func TestDashboard_GetSalesStats(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	seedOrder(t, f.orders, "today1", "a@x.com", time.Date(2026, time.October, 16, 9, 0, 0, 0, gst), "100")
	seedOrder(t, f.orders, "today2", "A@X.com ", time.Date(2026, time.October, 16, 23, 59, 0, 0, gst), "50.5")
	seedOrder(t, f.orders, "yesterday", "b@x.com", time.Date(2026, time.October, 15, 12, 0, 0, 0, gst), "70")

	result, err := f.svc.GetSalesStats(ctx, core.PeriodDay, "", "")
	require.NoError(t, err)
	assert.Equal(t, core.PeriodDay, result.Period)
	assert.Equal(t, 2, result.TotalOrders)
	assert.Equal(t, "150.50", result.TotalSales.StringFixed(2))
	require.Len(t, result.ByCustomer, 1)
	assert.Equal(t, 2, result.ByCustomer[0].OrderCount)

	month, err := f.svc.GetSalesStats(ctx, "bogus", "", "")
	require.NoError(t, err)
	assert.Equal(t, core.PeriodMonth, month.Period)
	assert.Equal(t, 3, month.TotalOrders)
	assert.Len(t, month.ByPeriod, 31)

	_, err = f.svc.GetSalesStats(ctx, core.PeriodCustom, "2026-13-01", "2026-10-16")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, err, stats.ErrInvalidDate)
}

func TestDashboard_ExportSalesReport(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	seedOrder(t, f.orders, "o1", "a@x.com", testNow, "100")

	artifact, err := f.svc.ExportSalesReport(ctx, core.PeriodWeek, "", "", export.FormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, "sales-report-week-2026-10-16.csv", artifact.Filename)
	assert.Equal(t, export.FormatCSV.ContentType(), artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("Sales Report\r\nPeriod,Week 2026-10-11 to 2026-10-17\r\n")))
	assert.Contains(t, string(artifact.Data), "Total Sales,100.00\r\n")

	artifact, err = f.svc.ExportSalesReport(ctx, core.PeriodMonth, "", "", export.FormatPDF, "October summary")
	require.NoError(t, err)
	assert.Equal(t, "October-summary.pdf", artifact.Filename)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
}

func TestDashboard_ExportOrders(t *testing.T) {
	ctx := context.Background()
	f := newDashboard(t)
	seedOrder(t, f.orders, "o1", "a@x.com", testNow, "100")

	artifact, err := f.svc.ExportOrders(ctx, "", export.FormatXLSX, "")
	require.NoError(t, err)
	assert.Equal(t, "orders-2026-10-16.xlsx", artifact.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(export.SheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PF-o1", rows[1][0])

	_, err = f.svc.ExportOrders(ctx, "lost", export.FormatCSV, "")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}
