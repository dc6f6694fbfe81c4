package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

// Compute resolves the period and aggregates the orders that fall inside it.
func Compute(orders []*core.Order, period core.Period, from, to string, now time.Time) (core.SalesStats, error) {
	r, err := ResolveRange(period, from, to, now)
	if err != nil {
		return core.SalesStats{}, err
	}

	result := Aggregate(FilterOrders(orders, r), r)
	result.Period = period
	return result, nil
}

// FilterOrders returns the orders created within r, preserving their order.
func FilterOrders(orders []*core.Order, r core.DateRange) []*core.Order {
	filtered := make([]*core.Order, 0, len(orders))
	for _, order := range orders {
		if r.Contains(order.CreatedAt) {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

// Aggregate computes totals and rollups for orders already filtered to r.
// Input totals are trusted as-is.
func Aggregate(orders []*core.Order, r core.DateRange) core.SalesStats {
	totalSales := decimal.Zero
	for _, order := range orders {
		totalSales = totalSales.Add(order.Total)
	}

	granularity := GranularityFor(r)
	buckets := Buckets(r, granularity)
	fillBuckets(buckets, orders)

	return core.SalesStats{
		Range:       r,
		Granularity: granularity,
		TotalSales:  totalSales,
		TotalOrders: len(orders),
		ByProduct:   byProduct(orders),
		ByCustomer:  byCustomer(orders),
		ByPeriod:    buckets,
	}
}

type productKey struct {
	productID string
	sku       string
}

func byProduct(orders []*core.Order) []core.ProductSales {
	rows := make([]core.ProductSales, 0)
	index := make(map[productKey]int)

	for _, order := range orders {
		for _, item := range order.Items {
			key := productKey{productID: item.ProductID, sku: item.SKU}
			i, ok := index[key]
			if !ok {
				i = len(rows)
				index[key] = i
				rows = append(rows, core.ProductSales{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					Size:        item.Size,
					SKU:         item.SKU,
					Revenue:     decimal.Zero,
				})
			}
			rows[i].Quantity += item.Quantity
			rows[i].Revenue = rows[i].Revenue.Add(item.Subtotal)
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue.GreaterThan(rows[b].Revenue)
	})
	return rows
}

func byCustomer(orders []*core.Order) []core.CustomerSales {
	rows := make([]core.CustomerSales, 0)
	index := make(map[string]int)

	for _, order := range orders {
		key := strings.ToLower(strings.TrimSpace(order.Customer.Email))
		i, ok := index[key]
		if !ok {
			name := order.Customer.FullName()
			if name == "" {
				name = order.Customer.Email
			}
			i = len(rows)
			index[key] = i
			rows = append(rows, core.CustomerSales{
				Name:    name,
				Email:   key,
				Revenue: decimal.Zero,
			})
		}
		rows[i].OrderCount++
		rows[i].Revenue = rows[i].Revenue.Add(order.Total)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue.GreaterThan(rows[b].Revenue)
	})
	return rows
}

// fillBuckets assigns each order to its bucket with one sort and a linear sweep.
// Buckets must tile the range the orders were filtered to.
func fillBuckets(buckets []core.PeriodBucket, orders []*core.Order) {
	sorted := make([]*core.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].CreatedAt.Before(sorted[b].CreatedAt)
	})

	i := 0
	for b := range buckets {
		for i < len(sorted) && !sorted[i].CreatedAt.After(buckets[b].PeriodEnd) {
			if !sorted[i].CreatedAt.Before(buckets[b].PeriodStart) {
				buckets[b].OrderCount++
				buckets[b].Revenue = buckets[b].Revenue.Add(sorted[i].Total)
			}
			i++
		}
	}
}
