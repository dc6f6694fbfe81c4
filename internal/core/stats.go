package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period selects the reporting window for sales statistics
type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

// Valid reports whether p is a known period
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

// DateRange is an interval with both bounds inclusive
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range, inclusive
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Span returns End - Start
func (r DateRange) Span() time.Duration {
	return r.End.Sub(r.Start)
}

// SalesStats is the aggregated view of a filtered order set
type SalesStats struct {
	Period      Period          `json:"period"`
	Range       DateRange       `json:"range"`
	Granularity Granularity     `json:"granularity"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int             `json:"total_orders"`
	ByProduct   []ProductSales  `json:"by_product"`
	ByCustomer  []CustomerSales `json:"by_customer"`
	ByPeriod    []PeriodBucket  `json:"by_period"`
}

// ProductSales is the rollup for one (product, SKU) pair
type ProductSales struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CustomerSales is the rollup for one customer email
type CustomerSales struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// PeriodBucket is one contiguous slice of the reporting range
type PeriodBucket struct {
	Label       string          `json:"label"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	OrderCount  int             `json:"order_count"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Granularity is the bucket size used for ByPeriod
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// SalesReport wraps stats with the presentation metadata exports need
type SalesReport struct {
	Title       string     `json:"title"`
	PeriodLabel string     `json:"period_label"`
	GeneratedAt time.Time  `json:"generated_at"`
	Stats       SalesStats `json:"stats"`
}
