package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

const (
	SectionSummary    = "Summary"
	SectionByProduct  = "Sales per Product"
	SectionByCustomer = "Sales per Customer"
	SectionByPeriod   = "Sales by Period"
)

var (
	productHeader  = []string{"Product", "Size", "SKU", "Quantity", "Revenue"}
	customerHeader = []string{"Customer", "Email", "Orders", "Revenue"}
	periodHeader   = []string{"Period", "Start", "End", "Orders", "Revenue"}
)

// WriteSalesCSV writes the report as titled CSV sections separated by blank
// lines, using CRLF line endings.
func WriteSalesCSV(w io.Writer, report core.SalesReport) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	records := [][]string{
		{report.Title},
		{"Period", report.PeriodLabel},
		{"From", formatDate(report.Stats.Range.Start)},
		{"To", formatDate(report.Stats.Range.End)},
		{},
		{SectionSummary},
		{"Metric", "Value"},
		{"Total Sales", formatMoney(report.Stats.TotalSales)},
		{"Total Orders", strconv.Itoa(report.Stats.TotalOrders)},
		{},
		{SectionByProduct},
		productHeader,
	}
	records = append(records, productRows(report.Stats.ByProduct)...)
	records = append(records, []string{}, []string{SectionByCustomer}, customerHeader)
	records = append(records, customerRows(report.Stats.ByCustomer)...)
	records = append(records, []string{}, []string{SectionByPeriod}, periodHeader)
	records = append(records, periodRows(report.Stats.ByPeriod)...)

	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func productRows(rows []core.ProductSales) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.ProductName,
			row.Size,
			row.SKU,
			strconv.Itoa(row.Quantity),
			formatMoney(row.Revenue),
		})
	}
	return out
}

func customerRows(rows []core.CustomerSales) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.Name,
			row.Email,
			strconv.Itoa(row.OrderCount),
			formatMoney(row.Revenue),
		})
	}
	return out
}

func periodRows(buckets []core.PeriodBucket) [][]string {
	out := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, []string{
			b.Label,
			formatDate(b.PeriodStart),
			formatDate(b.PeriodEnd),
			strconv.Itoa(b.OrderCount),
			formatMoney(b.Revenue),
		})
	}
	return out
}

// formatMoney renders a plain decimal with two places, no symbol or separators
func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
