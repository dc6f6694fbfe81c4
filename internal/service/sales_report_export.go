package service

import (
	"context"
	"fmt"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/export"
	"github.com/petfood-ae/storefront/internal/stats"
)

const salesReportTitle = "Sales Report"

// GetSalesStats resolves the requested period in the store time zone and
// aggregates the orders created within it.
func (s *DashboardService) GetSalesStats(ctx context.Context, period core.Period, from, to string) (*core.SalesStats, error) {
	if !period.Valid() {
		period = core.PeriodMonth
	}

	r, err := stats.ResolveRange(period, from, to, s.now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	orders, err := s.orderRepo.GetByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders for stats: %w", err)
	}

	result := stats.Aggregate(stats.FilterOrders(orders, r), r)
	result.Period = period
	return &result, nil
}

// BuildSalesReport wraps the period statistics with the labels used by exports
func (s *DashboardService) BuildSalesReport(ctx context.Context, period core.Period, from, to string) (*core.SalesReport, error) {
	result, err := s.GetSalesStats(ctx, period, from, to)
	if err != nil {
		return nil, err
	}

	return &core.SalesReport{
		Title:       salesReportTitle,
		PeriodLabel: stats.PeriodLabel(result.Period, result.Range),
		GeneratedAt: s.now().In(s.loc),
		Stats:       *result,
	}, nil
}

// ExportSalesReport renders the period statistics as a downloadable file
func (s *DashboardService) ExportSalesReport(ctx context.Context, period core.Period, from, to string, format export.Format, filename string) (*export.Artifact, error) {
	report, err := s.BuildSalesReport(ctx, period, from, to)
	if err != nil {
		return nil, err
	}

	artifact, err := export.SalesReportArtifact(*report, format, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to export sales report: %w", err)
	}
	return artifact, nil
}

// ExportOrders renders the order list, optionally filtered by status
func (s *DashboardService) ExportOrders(ctx context.Context, status string, format export.Format, filename string) (*export.Artifact, error) {
	orders, err := s.GetOrders(ctx, status)
	if err != nil {
		return nil, err
	}

	artifact, err := export.OrdersArtifact(orders, format, filename, s.now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to export orders: %w", err)
	}
	return artifact, nil
}
