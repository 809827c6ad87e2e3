package controllers

import (
	"context"
	"net/http"

	"github.com/kingsofalchemy/ordertracker-backend/api/responses"
	"github.com/kingsofalchemy/ordertracker-backend/api/validators"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

// TokenSaver persists a pasted Etsy refresh token.
type TokenSaver interface {
	SaveRefreshToken(ctx context.Context, token string) error
}

type saveTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SaveEtsyToken accepts a refresh token from the settings UI and stores it
// for the next fetch.
func SaveEtsyToken(saver TokenSaver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if saver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "etsy connection unavailable"))
			return
		}

		var payload saveTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := saver.SaveRefreshToken(r.Context(), payload.RefreshToken); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}
