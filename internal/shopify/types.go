package shopify

// Wire types for the Shopify Admin REST orders payload. Only the fields
// the normalizer reads are declared.

type ordersResponse struct {
	Orders []rawOrder `json:"orders"`
}

type rawOrder struct {
	ID                int64        `json:"id"`
	OrderNumber       int64        `json:"order_number"`
	CreatedAt         string       `json:"created_at"`
	Customer          *rawCustomer `json:"customer"`
	LineItems         []rawLine    `json:"line_items"`
	TotalPrice        string       `json:"total_price"`
	Currency          string       `json:"currency"`
	FulfillmentStatus *string      `json:"fulfillment_status"`
	ShippingAddress   *rawAddress  `json:"shipping_address"`
}

type rawCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type rawLine struct {
	Name         string        `json:"name"`
	Quantity     int           `json:"quantity"`
	Price        string        `json:"price"`
	VariantTitle *string       `json:"variant_title"`
	Properties   []rawProperty `json:"properties"`
}

type rawProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type rawAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}
