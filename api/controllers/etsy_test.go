package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/types"
)

type stubTokenSaver struct {
	saved []string
	err   error
}

func (s *stubTokenSaver) SaveRefreshToken(ctx context.Context, token string) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, token)
	return nil
}

func TestSaveEtsyToken(t *testing.T) {
	saver := &stubTokenSaver{}
	handler := SaveEtsyToken(saver, testLogger())

	body := strings.NewReader(`{"refresh_token":"rt-pasted"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/etsy/token", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(saver.saved) != 1 || saver.saved[0] != "rt-pasted" {
		t.Fatalf("unexpected saved tokens %v", saver.saved)
	}
}

func TestSaveEtsyTokenMissingField(t *testing.T) {
	handler := SaveEtsyToken(&stubTokenSaver{}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/etsy/token", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
}

func TestSaveEtsyTokenPersistenceFailure(t *testing.T) {
	saver := &stubTokenSaver{err: pkgerrors.New(pkgerrors.CodePersistence, "disk full")}
	handler := SaveEtsyToken(saver, testLogger())

	body := strings.NewReader(`{"refresh_token":"rt"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/etsy/token", body))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
