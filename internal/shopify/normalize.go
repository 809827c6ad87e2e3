package shopify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
)

// ringSizePatterns are tried against the lowercased item name when no
// explicit size property exists; each is followed by a numeric/fraction
// token ("Size 7", "sz 6.5", "US 8 1/2").
var ringSizePatterns = []string{"size ", "ring size ", "sz ", "us ", "uk "}

func normalizeOrder(raw rawOrder, now time.Time) orders.Order {
	// A single unparseable timestamp must not sink the whole batch.
	orderDate, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		orderDate = now
	}
	orderDate = orderDate.UTC()

	customerName := "Unknown Customer"
	if raw.Customer != nil {
		name := strings.TrimSpace(raw.Customer.FirstName + " " + raw.Customer.LastName)
		if name != "" {
			customerName = name
		}
	}

	items := make([]orders.OrderItem, 0, len(raw.LineItems))
	for _, line := range raw.LineItems {
		items = append(items, normalizeLine(line))
	}

	totalPrice, err := decimal.NewFromString(raw.TotalPrice)
	if err != nil {
		totalPrice = decimal.Zero
	}
	if totalPrice.IsZero() {
		totalPrice = orders.ItemsTotal(items)
	}

	status := "unfulfilled"
	if raw.FulfillmentStatus != nil && *raw.FulfillmentStatus != "" {
		status = *raw.FulfillmentStatus
	}

	var shippingAddress *string
	if raw.ShippingAddress != nil {
		addr := formatAddress(*raw.ShippingAddress)
		shippingAddress = &addr
	}

	return orders.Order{
		ID:              fmt.Sprint(raw.ID),
		Source:          enums.SourceShopify,
		OrderNumber:     fmt.Sprintf("#%d", raw.OrderNumber),
		CustomerName:    customerName,
		Items:           items,
		OrderDate:       orderDate,
		DueDate:         orderDate.Add(orders.FulfillmentSLA),
		TotalPrice:      totalPrice,
		Currency:        raw.Currency,
		Status:          status,
		ShippingAddress: shippingAddress,
	}
}

func normalizeLine(line rawLine) orders.OrderItem {
	variantTitle := ""
	var variantInfo *string
	if line.VariantTitle != nil && *line.VariantTitle != "" {
		variantTitle = *line.VariantTitle
		variantInfo = line.VariantTitle
	}

	fullName := strings.TrimSpace(line.Name + " " + variantTitle)

	price, err := decimal.NewFromString(line.Price)
	if err != nil {
		price = decimal.Zero
	}

	return orders.OrderItem{
		Name:        line.Name,
		Quantity:    line.Quantity,
		Price:       price,
		MetalType:   enums.InferMetalType(fullName),
		RingSize:    extractRingSize(fullName, line.Properties),
		VariantInfo: variantInfo,
	}
}

// extractRingSize prefers explicit size/ring custom properties, then falls
// back to the textual patterns.
func extractRingSize(name string, properties []rawProperty) *string {
	for _, prop := range properties {
		propName := strings.ToLower(prop.Name)
		if strings.Contains(propName, "size") || strings.Contains(propName, "ring") {
			value := prop.Value
			return &value
		}
	}

	lower := strings.ToLower(name)
	for _, pattern := range ringSizePatterns {
		idx := strings.Index(lower, pattern)
		if idx < 0 {
			continue
		}
		remaining := name[idx+len(pattern):]
		var size strings.Builder
		for _, r := range remaining {
			if (r >= '0' && r <= '9') || r == '.' || r == '/' || r == ' ' {
				size.WriteRune(r)
				continue
			}
			break
		}
		if trimmed := strings.TrimSpace(size.String()); trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

func formatAddress(addr rawAddress) string {
	return fmt.Sprintf("%s, %s, %s %s %s", addr.Address1, addr.City, addr.Province, addr.Zip, addr.Country)
}
