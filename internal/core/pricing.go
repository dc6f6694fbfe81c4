package core

import "github.com/shopspring/decimal"

// ShippingPolicy charges a flat fee below the free-shipping threshold.
// A zero threshold disables free shipping.
type ShippingPolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal
}

// Fee returns the shipping charge for a subtotal. Empty carts ship free.
func (p ShippingPolicy) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if p.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// Summary computes the cart totals under policy
func (c *Cart) Summary(policy ShippingPolicy) CartSummary {
	count := 0
	subtotal := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		subtotal = subtotal.Add(item.LineTotal())
	}
	shipping := policy.Fee(subtotal)

	summary := CartSummary{
		Cart:      *c,
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
	}
	if summary.Items == nil {
		summary.Items = []CartItem{}
	}
	return summary
}

// LineTotal returns price x quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderItem builds an order line from a cart line
func NewOrderItem(i CartItem) OrderItem {
	return OrderItem{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Size:        i.Size,
		SKU:         i.SKU,
		Quantity:    i.Quantity,
		Price:       i.Price,
		Subtotal:    i.LineTotal(),
	}
}
