package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

type nopFetcher struct{}

func (nopFetcher) FetchAll(ctx context.Context) aggregator.Result {
	return aggregator.Result{Orders: nil, Errors: []string{}}
}

type nopSaver struct{}

func (nopSaver) SaveRefreshToken(ctx context.Context, token string) error { return nil }

func newTestRouter() http.Handler {
	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "8080"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(cfg, logg, nopFetcher{}, nil, nil, nopSaver{}, nil)
}

func TestRouterHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Header().Get("X-OrderTracker-Env") != "test" {
		t.Fatal("expected env header on health response")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestRouterOrdersWithoutSnapshot(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
