// Package etsy fetches open marketplace receipts over OAuth and normalizes
// them into the canonical order model, enriching line items with listing
// thumbnails where available.
package etsy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

const (
	pageLimit       = 100
	bodyPreviewSize = 1500
)

// Client talks to the Etsy v3 API for a single shop.
type Client struct {
	httpClient *http.Client
	baseURL    string
	shopID     string
	apiKey     string
	tokens     *TokenSource
	log        *logger.Logger
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the wall clock used for the lookback window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds an Etsy client from the marketplace configuration.
func NewClient(cfg config.EtsyConfig, tokens *TokenSource, log *logger.Logger, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("etsy base url is required")
	}
	shopID := strings.TrimSpace(cfg.ShopID)
	if shopID == "" {
		return nil, fmt.Errorf("etsy shop id is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		shopID:     shopID,
		apiKey:     cfg.XAPIKey(),
		tokens:     tokens,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// SaveRefreshToken delegates to the underlying token source.
func (c *Client) SaveRefreshToken(ctx context.Context, token string) error {
	return c.tokens.SaveRefreshToken(ctx, token)
}

// FetchOrders returns paid, unshipped receipts from the lookback window,
// normalized and enriched with listing thumbnails.
func (c *Client) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	accessToken, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	receipts, err := c.fetchReceipts(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	cutoff := now.Add(-orders.LookbackWindow)

	result := make([]orders.Order, 0, len(receipts))
	refs := make([]imageRef, 0, len(receipts))
	for _, raw := range receipts {
		order := normalizeReceipt(raw)
		if order.OrderDate.Before(cutoff) {
			continue
		}
		orderIdx := len(result)
		result = append(result, order)
		for itemIdx, txn := range raw.Transactions {
			if txn.ListingID > 0 && txn.ListingImageID > 0 {
				refs = append(refs, imageRef{
					key:      imageKey{listingID: txn.ListingID, imageID: txn.ListingImageID},
					orderIdx: orderIdx,
					itemIdx:  itemIdx,
				})
			}
		}
	}

	c.enrichImages(ctx, accessToken, result, refs)
	return result, nil
}

func (c *Client) fetchReceipts(ctx context.Context, accessToken string) ([]rawReceipt, error) {
	var receipts []rawReceipt
	offset := 0
	for {
		query := url.Values{}
		query.Set("was_paid", "true")
		query.Set("was_shipped", "false")
		query.Set("limit", fmt.Sprint(pageLimit))
		query.Set("offset", fmt.Sprint(offset))
		reqURL := fmt.Sprintf("%s/shops/%s/receipts?%s", c.baseURL, c.shopID, query.Encode())

		body, err := c.get(ctx, reqURL, accessToken)
		if err != nil {
			// The offset pins down which page died.
			return nil, withOffset(err, offset)
		}

		var page receiptsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamParse, err, "decode etsy receipts response").
				WithDetails(map[string]any{"offset": offset, "body_preview": bodyPreview(body)})
		}

		receipts = append(receipts, page.Results...)
		if len(page.Results) < pageLimit {
			return receipts, nil
		}
		offset += pageLimit
	}
}

// enrichImages resolves each distinct listing image once and fans the URL
// out to every item that references it. Failures only cost thumbnails.
func (c *Client) enrichImages(ctx context.Context, accessToken string, result []orders.Order, refs []imageRef) {
	urls := make(map[imageKey]string)
	for _, ref := range refs {
		if _, seen := urls[ref.key]; seen {
			continue
		}
		reqURL := fmt.Sprintf("%s/listings/%d/images/%d", c.baseURL, ref.key.listingID, ref.key.imageID)
		body, err := c.get(ctx, reqURL, accessToken)
		if err != nil {
			c.log.Warn(c.log.WithField(ctx, "listing_id", ref.key.listingID), "fetching listing image failed: "+err.Error())
			urls[ref.key] = ""
			continue
		}
		var image listingImage
		if err := json.Unmarshal(body, &image); err != nil {
			urls[ref.key] = ""
			continue
		}
		switch {
		case image.URL170x135 != "":
			urls[ref.key] = image.URL170x135
		case image.URL75x75 != "":
			urls[ref.key] = image.URL75x75
		default:
			urls[ref.key] = ""
		}
	}

	for _, ref := range refs {
		if imageURL := urls[ref.key]; imageURL != "" {
			u := imageURL
			result[ref.orderIdx].Items[ref.itemIdx].ImageURL = &u
		}
	}
}

func (c *Client) get(ctx context.Context, reqURL, accessToken string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTransport, err, "build etsy request")
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTransport, err, "execute etsy request")
	}
	defer func() { _ = resp.Body.Close() }()

	// Capture the raw body before decoding so parse failures can carry a
	// preview of what actually came back.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTransport, err, "read etsy response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamHTTP, fmt.Sprintf("etsy api status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "body_preview": bodyPreview(body)})
	}
	return body, nil
}

// withOffset folds the page offset into a coded error's details.
func withOffset(err error, offset int) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details, _ := typed.Details().(map[string]any)
	if details == nil {
		details = map[string]any{}
	}
	details["offset"] = offset
	typed.WithDetails(details)
	return err
}

func bodyPreview(body []byte) string {
	if len(body) > bodyPreviewSize {
		return string(body[:bodyPreviewSize])
	}
	return string(body)
}

type imageKey struct {
	listingID int64
	imageID   int64
}

type imageRef struct {
	key      imageKey
	orderIdx int
	itemIdx  int
}
