package etsy

import "time"

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *tokenResponse) lifetime() time.Duration {
	if t.ExpiresIn <= 0 {
		return defaultExpiresIn
	}
	return time.Duration(t.ExpiresIn) * time.Second
}

type receiptsResponse struct {
	Count   int          `json:"count"`
	Results []rawReceipt `json:"results"`
}

type rawReceipt struct {
	ReceiptID        int64     `json:"receipt_id"`
	OrderID          int64     `json:"order_id"`
	Name             string    `json:"name"`
	Status           *string   `json:"status"`
	CreatedTimestamp int64     `json:"created_timestamp"`
	GrandTotal       *rawMoney `json:"grandtotal"`
	// Older receipt payloads ship the grand total under "total".
	Total            *rawMoney        `json:"total"`
	FirstLine        *string          `json:"first_line"`
	FormattedAddress *string          `json:"formatted_address"`
	Transactions     []rawTransaction `json:"transactions"`
}

func (r rawReceipt) total() *rawMoney {
	if r.GrandTotal != nil {
		return r.GrandTotal
	}
	return r.Total
}

type rawMoney struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

type rawTransaction struct {
	Title            *string        `json:"title"`
	Quantity         *int           `json:"quantity"`
	Price            *rawMoney      `json:"price"`
	ExpectedShipDate *int64         `json:"expected_ship_date"`
	Variations       []rawVariation `json:"variations"`
	ListingID        int64          `json:"listing_id"`
	ListingImageID   int64          `json:"listing_image_id"`
}

type rawVariation struct {
	FormattedName  string `json:"formatted_name"`
	FormattedValue string `json:"formatted_value"`
}

type listingImage struct {
	URL170x135 string `json:"url_170x135"`
	URL75x75   string `json:"url_75x75"`
}
