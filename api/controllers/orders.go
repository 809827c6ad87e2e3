package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kingsofalchemy/ordertracker-backend/api/responses"
	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/internal/catalog"
	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

// OrderFetcher performs a live fetch across all sources.
type OrderFetcher interface {
	FetchAll(ctx context.Context) aggregator.Result
}

// SnapshotStore serves and refreshes the cached combined fetch.
type SnapshotStore interface {
	Load(ctx context.Context) (*aggregator.Result, error)
	Save(ctx context.Context, result aggregator.Result) error
}

// CatalogLoader reads the piece-cost catalog for item cost resolution.
type CatalogLoader interface {
	LoadRows(ctx context.Context) ([]catalog.CatalogRow, error)
}

type orderListResponse struct {
	Orders    []orderView `json:"orders"`
	Errors    []string    `json:"errors"`
	FetchedAt time.Time   `json:"fetched_at"`
}

type orderItemView struct {
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	MetalType   string          `json:"metal_type"`
	MetalLabel  string          `json:"metal_label"`
	RingSize    *string         `json:"ring_size,omitempty"`
	VariantInfo *string         `json:"variant_info,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CostUSD     *float64        `json:"cost_usd,omitempty"`
	WeightG     *float64        `json:"weight_g,omitempty"`
}

type orderView struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	SourceLabel     string          `json:"source_label"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	Items           []orderItemView `json:"items"`
	OrderDate       time.Time       `json:"order_date"`
	DueDate         time.Time       `json:"due_date"`
	DaysUntilDue    int             `json:"days_until_due"`
	Urgency         string          `json:"urgency"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	ShippingAddress *string         `json:"shipping_address,omitempty"`
	CostUSD         float64         `json:"cost_usd"`
	WeightG         float64         `json:"weight_g"`
}

// ListOrders serves the combined order board. The cached snapshot answers
// by default; ?refresh=true (or a missing snapshot) triggers a live fetch.
// Catalog resolution is best-effort: an unreachable catalog leaves items
// without cost figures instead of failing the request.
func ListOrders(fetcher OrderFetcher, snapshot SnapshotStore, catalogRepo CatalogLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fetcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		ctx := r.Context()

		refresh := r.URL.Query().Get("refresh") == "true"

		var result *aggregator.Result
		if !refresh && snapshot != nil {
			cached, err := snapshot.Load(ctx)
			switch {
			case err == nil:
				result = cached
			case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound:
				// Cold cache; fall through to a live fetch.
			default:
				logg.Warn(ctx, "snapshot load failed, falling back to live fetch: "+err.Error())
			}
		}

		if result == nil {
			live := fetcher.FetchAll(ctx)
			result = &live
			if snapshot != nil {
				if err := snapshot.Save(ctx, live); err != nil {
					logg.Warn(ctx, "snapshot save failed: "+err.Error())
				}
			}
		}

		var rows []catalog.CatalogRow
		if catalogRepo != nil {
			loaded, err := catalogRepo.LoadRows(ctx)
			if err != nil {
				logg.Warn(ctx, "catalog load failed, serving orders without costs: "+err.Error())
			} else {
				rows = loaded
			}
		}

		responses.WriteSuccess(w, buildOrderList(*result, rows, time.Now().UTC()))
	}
}

func buildOrderList(result aggregator.Result, rows []catalog.CatalogRow, now time.Time) orderListResponse {
	views := make([]orderView, 0, len(result.Orders))
	for _, order := range result.Orders {
		views = append(views, buildOrderView(order, rows, now))
	}
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return orderListResponse{
		Orders:    views,
		Errors:    errs,
		FetchedAt: result.FetchedAt,
	}
}

func buildOrderView(order orders.Order, rows []catalog.CatalogRow, now time.Time) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	var totalCost, totalWeight float64
	for _, item := range order.Items {
		view := orderItemView{
			Name:        item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			MetalType:   item.MetalType.String(),
			MetalLabel:  item.MetalType.DisplayName(),
			RingSize:    item.RingSize,
			VariantInfo: item.VariantInfo,
			ImageURL:    item.ImageURL,
		}
		if resolved := catalog.Match(item, rows); resolved != nil {
			view.CostUSD = &resolved.CostUSD
			view.WeightG = &resolved.WeightG
			totalCost += resolved.CostUSD * float64(item.Quantity)
			totalWeight += resolved.WeightG * float64(item.Quantity)
		}
		items = append(items, view)
	}

	return orderView{
		ID:              order.ID,
		Source:          order.Source.String(),
		SourceLabel:     order.Source.Label(),
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		Items:           items,
		OrderDate:       order.OrderDate,
		DueDate:         order.DueDate,
		DaysUntilDue:    order.DaysUntilDue(now),
		Urgency:         string(order.Urgency(now)),
		TotalPrice:      order.TotalPrice,
		Currency:        order.Currency,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		CostUSD:         totalCost,
		WeightG:         totalWeight,
	}
}
