package etsy

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
)

// parseTimestamp handles both second and millisecond epochs; Etsy has
// shipped both in the wild.
func parseTimestamp(ts int64) time.Time {
	if ts > 1_000_000_000_000 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

func moneyAmount(m *rawMoney) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	divisor := m.Divisor
	if divisor < 1 {
		divisor = 100
	}
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(divisor))
}

func moneyCurrency(m *rawMoney) string {
	if m == nil || strings.TrimSpace(m.CurrencyCode) == "" {
		return "USD"
	}
	return m.CurrencyCode
}

func normalizeReceipt(raw rawReceipt) orders.Order {
	orderDate := parseTimestamp(raw.CreatedTimestamp)

	// Due date is the latest promised ship date; receipts without one get
	// the standard fulfillment window.
	var dueDate time.Time
	items := make([]orders.OrderItem, 0, len(raw.Transactions))
	for _, txn := range raw.Transactions {
		items = append(items, normalizeTransaction(txn))
		if txn.ExpectedShipDate != nil && *txn.ExpectedShipDate > 0 {
			shipBy := parseTimestamp(*txn.ExpectedShipDate)
			if shipBy.After(dueDate) {
				dueDate = shipBy
			}
		}
	}
	if dueDate.IsZero() {
		dueDate = orderDate.Add(orders.FulfillmentSLA)
	}

	totalPrice := moneyAmount(raw.total())
	if totalPrice.IsZero() {
		totalPrice = orders.ItemsTotal(items)
	}

	customerName := strings.TrimSpace(raw.Name)
	if customerName == "" {
		customerName = "Unknown"
	}

	status := "open"
	if raw.Status != nil && *raw.Status != "" {
		status = *raw.Status
	}

	orderID := raw.OrderID
	if orderID == 0 {
		orderID = raw.ReceiptID
	}

	var shippingAddress *string
	switch {
	case raw.FirstLine != nil && strings.TrimSpace(*raw.FirstLine) != "":
		shippingAddress = raw.FirstLine
	case raw.FormattedAddress != nil && strings.TrimSpace(*raw.FormattedAddress) != "":
		shippingAddress = raw.FormattedAddress
	}

	return orders.Order{
		ID:              fmt.Sprint(raw.ReceiptID),
		Source:          enums.SourceEtsy,
		OrderNumber:     fmt.Sprintf("#%d", orderID),
		CustomerName:    customerName,
		Items:           items,
		OrderDate:       orderDate,
		DueDate:         dueDate,
		TotalPrice:      totalPrice,
		Currency:        moneyCurrency(raw.total()),
		Status:          status,
		ShippingAddress: shippingAddress,
	}
}

func transactionTitle(txn rawTransaction) string {
	if txn.Title == nil {
		return "Item"
	}
	return *txn.Title
}

func transactionQuantity(txn rawTransaction) int {
	if txn.Quantity == nil {
		return 1
	}
	return *txn.Quantity
}

func normalizeTransaction(txn rawTransaction) orders.OrderItem {
	title := transactionTitle(txn)

	variantParts := make([]string, 0, len(txn.Variations))
	for _, variation := range txn.Variations {
		if variation.FormattedName == "" && variation.FormattedValue == "" {
			continue
		}
		variantParts = append(variantParts, fmt.Sprintf("%s: %s", variation.FormattedName, variation.FormattedValue))
	}

	// Ring size keeps the whole "name: value" pair; either side may carry
	// the marker ({"Option": "Ring Size 7"} is common).
	var ringSize *string
	for _, part := range variantParts {
		lower := strings.ToLower(part)
		if strings.Contains(lower, "ring") || strings.Contains(lower, "size") {
			matched := part
			ringSize = &matched
			break
		}
	}

	var variantInfo *string
	if len(variantParts) > 0 {
		joined := strings.Join(variantParts, ", ")
		variantInfo = &joined
	}

	metalText := title
	if variantInfo != nil {
		metalText += " " + *variantInfo
	}

	return orders.OrderItem{
		Name:        title,
		Quantity:    transactionQuantity(txn),
		Price:       moneyAmount(txn.Price),
		MetalType:   enums.InferMetalType(metalText),
		RingSize:    ringSize,
		VariantInfo: variantInfo,
	}
}
