// Package aggregator fans out to every configured order source, merges the
// results into a single due-date-ordered list, and reports per-source
// failures without failing the whole fetch.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/metrics"
)

// Fetcher pulls the open orders from one upstream source.
type Fetcher interface {
	FetchOrders(ctx context.Context) ([]orders.Order, error)
}

// Result is one combined fetch across all sources. A source that failed
// contributes an entry to Errors instead of sinking the fetch.
type Result struct {
	Orders    []orders.Order `json:"orders"`
	Errors    []string       `json:"errors"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Params carries the service dependencies.
type Params struct {
	Shopify Fetcher
	Etsy    Fetcher
	Logger  *logger.Logger
	Metrics *metrics.FetchMetrics
}

type Service struct {
	shopify Fetcher
	etsy    Fetcher
	log     *logger.Logger
	metrics *metrics.FetchMetrics
	now     func() time.Time
}

func NewService(params Params) (*Service, error) {
	if params.Shopify == nil {
		return nil, fmt.Errorf("shopify fetcher is required")
	}
	if params.Etsy == nil {
		return nil, fmt.Errorf("etsy fetcher is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{
		shopify: params.Shopify,
		etsy:    params.Etsy,
		log:     params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type sourceResult struct {
	source enums.OrderSource
	orders []orders.Order
	err    error
}

// FetchAll queries both sources concurrently and merges whatever succeeded.
// It never returns an error: a dead marketplace still leaves the other
// one's orders on the board.
func (s *Service) FetchAll(ctx context.Context) Result {
	results := make(chan sourceResult, 2)

	fetch := func(source enums.OrderSource, fetcher Fetcher) {
		fetched, err := fetcher.FetchOrders(s.log.WithSource(ctx, source.String()))
		results <- sourceResult{source: source, orders: fetched, err: err}
	}
	go fetch(enums.SourceShopify, s.shopify)
	go fetch(enums.SourceEtsy, s.etsy)

	collected := make(map[enums.OrderSource]sourceResult, 2)
	for i := 0; i < 2; i++ {
		res := <-results
		collected[res.source] = res
	}

	result := Result{
		Orders:    []orders.Order{},
		Errors:    []string{},
		FetchedAt: s.now().UTC(),
	}
	// Deterministic order: storefront first, then marketplace.
	for _, source := range []enums.OrderSource{enums.SourceShopify, enums.SourceEtsy} {
		res := collected[source]
		sourceCtx := s.log.WithSource(ctx, source.String())
		if res.err != nil {
			// Auth failures mean the user has to reconnect; retrying on
			// our side will not clear them, so no error-level noise.
			if pkgerrors.IsAuth(res.err) {
				s.log.Warn(sourceCtx, "source needs reconnect: "+res.err.Error())
			} else {
				s.log.Error(sourceCtx, "source fetch failed", res.err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", source.Label(), res.err.Error()))
			if s.metrics != nil {
				s.metrics.IncFailure(source.String())
			}
			continue
		}
		s.log.Info(s.log.WithField(sourceCtx, "orders", len(res.orders)), "source fetch succeeded")
		result.Orders = append(result.Orders, res.orders...)
		if s.metrics != nil {
			s.metrics.AddOrders(source.String(), len(res.orders))
		}
	}

	orders.SortByDueDate(result.Orders)
	return result
}
