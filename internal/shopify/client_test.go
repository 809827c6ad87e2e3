package shopify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
)

const ordersBody = `{
  "orders": [
    {
      "id": 5001,
      "order_number": 1042,
      "created_at": "2026-03-01T10:00:00Z",
      "customer": {"first_name": "Ada", "last_name": "Lovelace"},
      "line_items": [
        {
          "name": "14k Gold Ring Size 7",
          "quantity": 1,
          "price": "120.00",
          "variant_title": null,
          "properties": []
        },
        {
          "name": "Raven Pendant",
          "quantity": 2,
          "price": "40.00",
          "variant_title": "Sterling Silver",
          "properties": [{"name": "Ring Size", "value": "6.5"}]
        }
      ],
      "total_price": "0.00",
      "currency": "USD",
      "fulfillment_status": null,
      "shipping_address": {"address1": "1 Main St", "city": "Austin", "province": "TX", "country": "US", "zip": "78701"}
    }
  ]
}`

func newTestClient(t *testing.T, rt roundTripFunc, now time.Time) *Client {
	t.Helper()
	client, err := NewClient(config.ShopifyConfig{
		BaseURL:     "http://shopify.test/admin/api/2024-01",
		AccessToken: "shpat_test",
	},
		WithHTTPClient(&http.Client{Transport: rt}),
		WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchOrdersRequestShape(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		return jsonResponse(http.StatusOK, ordersBody), nil
	})

	client := newTestClient(t, rt, now)
	if _, err := client.FetchOrders(context.Background()); err != nil {
		t.Fatalf("fetch orders: %v", err)
	}

	if !strings.HasPrefix(capturedURL, "http://shopify.test/admin/api/2024-01/orders.json?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	for _, want := range []string{"status=any", "limit=250", "created_at_min=2026-01-04T00%3A00%3A00Z"} {
		if !strings.Contains(capturedURL, want) {
			t.Fatalf("URL %q missing %q", capturedURL, want)
		}
	}
	if capturedHeaders.Get(accessTokenHeader) != "shpat_test" {
		t.Fatalf("access token header missing")
	}
}

func TestFetchOrdersNormalization(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, ordersBody), nil
	})

	client := newTestClient(t, rt, now)
	got, err := client.FetchOrders(context.Background())
	if err != nil {
		t.Fatalf("fetch orders: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 order, got %d", len(got))
	}

	order := got[0]
	if order.ID != "5001" || order.OrderNumber != "#1042" {
		t.Fatalf("unexpected identity %q / %q", order.ID, order.OrderNumber)
	}
	if order.CustomerName != "Ada Lovelace" {
		t.Fatalf("unexpected customer %q", order.CustomerName)
	}
	wantDue := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	if !order.DueDate.Equal(wantDue) {
		t.Fatalf("expected due %s, got %s", wantDue, order.DueDate)
	}
	if order.Status != "unfulfilled" {
		t.Fatalf("expected status fallback, got %q", order.Status)
	}
	// Zero total falls back to the item-sum: 120 + 2*40.
	if !order.TotalPrice.Equal(decimalFromString(t, "200.00")) {
		t.Fatalf("unexpected total %s", order.TotalPrice)
	}
	if order.ShippingAddress == nil || *order.ShippingAddress != "1 Main St, Austin, TX 78701 US" {
		t.Fatalf("unexpected address %v", order.ShippingAddress)
	}

	ring := order.Items[0]
	if ring.MetalType != enums.MetalGold {
		t.Fatalf("expected gold, got %s", ring.MetalType)
	}
	if ring.RingSize == nil || *ring.RingSize != "7" {
		t.Fatalf("expected ring size 7 from text, got %v", ring.RingSize)
	}

	pendant := order.Items[1]
	if pendant.MetalType != enums.MetalSilver {
		t.Fatalf("expected silver from variant title, got %s", pendant.MetalType)
	}
	if pendant.RingSize == nil || *pendant.RingSize != "6.5" {
		t.Fatalf("expected explicit property to win, got %v", pendant.RingSize)
	}
	if pendant.VariantInfo == nil || *pendant.VariantInfo != "Sterling Silver" {
		t.Fatalf("unexpected variant info %v", pendant.VariantInfo)
	}
}

func TestFetchOrdersBadTimestampFailsSoft(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	body := `{"orders":[{"id":1,"order_number":2,"created_at":"not-a-date","line_items":[],"total_price":"10.00","currency":"USD"}]}`
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, body), nil
	})

	client := newTestClient(t, rt, now)
	got, err := client.FetchOrders(context.Background())
	if err != nil {
		t.Fatalf("fetch orders: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("bad timestamp should not drop the order")
	}
	if !got[0].OrderDate.Equal(now) {
		t.Fatalf("expected order date to fall back to now, got %s", got[0].OrderDate)
	}
}

func TestFetchOrdersHTTPError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"errors":"boom"}`), nil
	})

	client := newTestClient(t, rt, time.Now().UTC())
	_, err := client.FetchOrders(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstreamHTTP {
		t.Fatalf("expected upstream http error, got %v", err)
	}
	if !strings.Contains(typed.Message(), "500") {
		t.Fatalf("expected status in message, got %q", typed.Message())
	}
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return value
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}
