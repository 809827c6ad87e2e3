package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/api/responses"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

const envHeader = "X-OrderTracker-Env"

const readinessTimeout = 2 * time.Second

// Pinger is the readiness surface a dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency. A nil pinger means the
// deployment runs without that dependency and is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
