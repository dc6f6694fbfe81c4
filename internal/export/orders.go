package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/xuri/excelize/v2"
)

// SheetOrders is the sheet name used by the order export workbook
const SheetOrders = "Orders"

var orderHeader = []string{
	"Order Number",
	"Date",
	"Customer",
	"Email",
	"Phone",
	"Address",
	"City",
	"Emirate",
	"Items",
	"Subtotal",
	"Shipping",
	"Total",
	"Status",
	"Payment Method",
}

// WriteOrdersCSV flattens orders into one CSV row each, in the order given.
func WriteOrdersCSV(w io.Writer, orders []*core.Order) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(orderHeader); err != nil {
		return err
	}
	for _, order := range orders {
		if err := writer.Write(orderRecord(order)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func orderRecord(order *core.Order) []string {
	return []string{
		order.OrderNumber,
		formatDateTime(order.CreatedAt),
		order.Customer.FullName(),
		order.Customer.Email,
		order.Customer.Phone,
		order.DeliveryAddress.Address,
		order.DeliveryAddress.City,
		order.DeliveryAddress.Emirate,
		strconv.Itoa(order.ItemCount()),
		formatMoney(order.Subtotal),
		formatMoney(order.Shipping),
		formatMoney(order.Total),
		string(order.Status),
		order.PaymentMethod.Label(),
	}
}

// OrdersWorkbook renders orders as a single-sheet XLSX workbook.
func OrdersWorkbook(orders []*core.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetOrders); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(orders)+1)
	rows = append(rows, toCells(orderHeader))
	for _, order := range orders {
		rows = append(rows, []interface{}{
			order.OrderNumber,
			formatDateTime(order.CreatedAt),
			order.Customer.FullName(),
			order.Customer.Email,
			order.Customer.Phone,
			order.DeliveryAddress.Address,
			order.DeliveryAddress.City,
			order.DeliveryAddress.Emirate,
			order.ItemCount(),
			order.Subtotal.InexactFloat64(),
			order.Shipping.InexactFloat64(),
			order.Total.InexactFloat64(),
			string(order.Status),
			order.PaymentMethod.Label(),
		})
	}

	if err := writeSheet(f, SheetOrders, rows, 1); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
