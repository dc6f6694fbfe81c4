package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

// StoreName is printed at the top of PDF reports
var StoreName = "Pet Food Store"

type pdfColumn struct {
	title string
	width float64
	align string
}

// SalesReportPDF renders the report summary and rollup tables as an A4 PDF.
func SalesReportPDF(report core.SalesReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, StoreName, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 7, report.Title, "", 1, "L", false, 0, "")

	s := report.Stats
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s", report.PeriodLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Range: %s to %s", formatDate(s.Range.Start), formatDate(s.Range.End)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated At: %s", formatDateTime(report.GeneratedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, SectionSummary, "1", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Total Sales: %s", formatAED(s.TotalSales)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Orders: %d", s.TotalOrders), "1", 1, "L", false, 0, "")
	pdf.Ln(3)

	productRows := make([][]string, 0, len(s.ByProduct))
	for _, row := range s.ByProduct {
		productRows = append(productRows, []string{row.ProductName, row.Size, row.SKU, strconv.Itoa(row.Quantity), formatAED(row.Revenue)})
	}
	renderTable(pdf, SectionByProduct, []pdfColumn{
		{"Product", 70, "L"}, {"Size", 25, "L"}, {"SKU", 35, "L"}, {"Qty", 20, "R"}, {"Revenue", 40, "R"},
	}, productRows)

	customerRows := make([][]string, 0, len(s.ByCustomer))
	for _, row := range s.ByCustomer {
		customerRows = append(customerRows, []string{row.Name, row.Email, strconv.Itoa(row.OrderCount), formatAED(row.Revenue)})
	}
	renderTable(pdf, SectionByCustomer, []pdfColumn{
		{"Customer", 60, "L"}, {"Email", 70, "L"}, {"Orders", 20, "R"}, {"Revenue", 40, "R"},
	}, customerRows)

	periodRows := make([][]string, 0, len(s.ByPeriod))
	for _, b := range s.ByPeriod {
		periodRows = append(periodRows, []string{b.Label, strconv.Itoa(b.OrderCount), formatAED(b.Revenue)})
	}
	renderTable(pdf, SectionByPeriod, []pdfColumn{
		{"Period", 110, "L"}, {"Orders", 40, "R"}, {"Revenue", 40, "R"},
	}, periodRows)

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buffer.Bytes(), nil
}

func renderTable(pdf *gofpdf.Fpdf, title string, columns []pdfColumn, rows [][]string) {
	ensurePageSpace(pdf, 30)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	for _, col := range columns {
		pdf.CellFormat(col.width, 6, col.title, "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No sales in this period.", "", 1, "L", false, 0, "")
	}
	for _, row := range rows {
		ensurePageSpace(pdf, 6)
		for i, col := range columns {
			pdf.CellFormat(col.width, 6, truncate(safeReportValue(row[i]), col.width), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func ensurePageSpace(pdf *gofpdf.Fpdf, minSpace float64) {
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	if pdf.GetY()+minSpace > pageHeight-bottomMargin {
		pdf.AddPage()
	}
}

// truncate keeps text within roughly width mm at 9pt
func truncate(value string, width float64) string {
	limit := int(width / 1.9)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "."
}

func safeReportValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAED(amount decimal.Decimal) string {
	return "AED " + amount.StringFixed(2)
}
