package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// SalesWorkbook renders the report as an XLSX workbook with one sheet per
// section. Every sheet starts with the report title and period label rows.
func SalesWorkbook(report core.SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SectionSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SectionByProduct, SectionByCustomer, SectionByPeriod} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	s := report.Stats
	preamble := func(section string) [][]interface{} {
		return [][]interface{}{
			{report.Title + " - " + section},
			{"Period", report.PeriodLabel},
			{},
		}
	}

	summary := append(preamble(SectionSummary),
		[]interface{}{"Metric", "Value"},
		[]interface{}{"From", formatDate(s.Range.Start)},
		[]interface{}{"To", formatDate(s.Range.End)},
		[]interface{}{"Total Sales", s.TotalSales.InexactFloat64()},
		[]interface{}{"Total Orders", s.TotalOrders},
	)

	products := append(preamble(SectionByProduct), toCells(productHeader))
	for _, row := range s.ByProduct {
		products = append(products, []interface{}{row.ProductName, row.Size, row.SKU, row.Quantity, row.Revenue.InexactFloat64()})
	}

	customers := append(preamble(SectionByCustomer), toCells(customerHeader))
	for _, row := range s.ByCustomer {
		customers = append(customers, []interface{}{row.Name, row.Email, row.OrderCount, row.Revenue.InexactFloat64()})
	}

	periods := append(preamble(SectionByPeriod), toCells(periodHeader))
	for _, b := range s.ByPeriod {
		periods = append(periods, []interface{}{b.Label, formatDate(b.PeriodStart), formatDate(b.PeriodEnd), b.OrderCount, b.Revenue.InexactFloat64()})
	}

	sheets := []struct {
		name      string
		rows      [][]interface{}
		headerRow int
	}{
		{SectionSummary, summary, 4},
		{SectionByProduct, products, 4},
		{SectionByCustomer, customers, 4},
		{SectionByPeriod, periods, 4},
	}
	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.rows, sheet.headerRow); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet writes rows from A1 down and bolds the 1-based header row
// (and the title row when the header is not the first row).
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerRow int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	styled := []int{headerRow}
	if headerRow > 1 {
		styled = append(styled, 1)
	}
	for _, rowNum := range styled {
		if err := f.SetRowStyle(sheet, rowNum, rowNum, bold); err != nil {
			return fmt.Errorf("failed to style %s: %w", sheet, err)
		}
	}

	return f.SetColWidth(sheet, "A", "N", 18)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
