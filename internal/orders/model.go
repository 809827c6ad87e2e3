package orders

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
)

// FulfillmentSLA is the default window between an order being placed and
// it being due for fulfillment, used whenever a source carries no
// expected-ship date of its own.
const FulfillmentSLA = 14 * 24 * time.Hour

// LookbackWindow is how far back fetches reach; anything older is excluded.
const LookbackWindow = 60 * 24 * time.Hour

// Order is the canonical representation of one purchase transaction,
// normalized from either upstream platform. Orders are rebuilt on every
// fetch cycle and never mutated afterwards.
type Order struct {
	ID              string            `json:"id"`
	Source          enums.OrderSource `json:"source"`
	OrderNumber     string            `json:"order_number"`
	CustomerName    string            `json:"customer_name"`
	Items           []OrderItem       `json:"items"`
	OrderDate       time.Time         `json:"order_date"`
	DueDate         time.Time         `json:"due_date"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	ShippingAddress *string           `json:"shipping_address,omitempty"`
}

// OrderItem is one line within an order. Insertion order is line order.
type OrderItem struct {
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	MetalType   enums.MetalType `json:"metal_type"`
	RingSize    *string         `json:"ring_size,omitempty"`
	VariantInfo *string         `json:"variant_info,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// DaysUntilDue returns whole days until the due date. Negative means overdue.
func (o Order) DaysUntilDue(now time.Time) int {
	return int(o.DueDate.Sub(now).Hours() / 24)
}

// UrgencyBucket classifies how close an order is to its due date.
type UrgencyBucket string

const (
	UrgencyOverdue  UrgencyBucket = "overdue"
	UrgencyCritical UrgencyBucket = "critical"
	UrgencyWarning  UrgencyBucket = "warning"
	UrgencyOK       UrgencyBucket = "ok"
)

// Urgency buckets mirror the fulfillment board's coloring: overdue,
// due within 3 days, due within 7 days, everything else.
func (o Order) Urgency(now time.Time) UrgencyBucket {
	days := o.DaysUntilDue(now)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 3:
		return UrgencyCritical
	case days <= 7:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

// ItemsTotal sums price times quantity across all lines. Used when a
// source reports a zero or missing order total.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// SortByDueDate imposes the canonical ordering: ascending due date,
// ties kept in input order.
func SortByDueDate(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DueDate.Before(list[j].DueDate)
	})
}
