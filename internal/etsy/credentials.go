package etsy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

const (
	// Refresh ahead of expiry so an in-flight fetch never carries a token
	// that dies mid-request.
	expirySkew = 5 * time.Minute

	defaultExpiresIn = 3600 * time.Second

	notConnectedMessage = "Etsy not connected. Get a refresh token from order-tracker.kingsofalchemy.com/connect and paste it in Settings."
)

// storedCredentials is the on-disk shape of the OAuth state file.
type storedCredentials struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	ExpiresAt    int64  `json:"expires_at_utc_secs"`
}

// TokenSource hands out a valid Etsy access token, refreshing through the
// OAuth endpoint when the cached one is missing or near expiry. Credentials
// persist in a JSON file so refresh-token rotation survives restarts.
type TokenSource struct {
	mu           sync.Mutex
	path         string
	keystring    string
	staticSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time
	log          *logger.Logger
}

// TokenOption configures optional token source behavior.
type TokenOption func(*TokenSource)

// WithTokenHTTPClient overrides the HTTP client used for refresh calls.
func WithTokenHTTPClient(client *http.Client) TokenOption {
	return func(t *TokenSource) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithTokenClock overrides the wall clock used for expiry checks.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(t *TokenSource) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenSource builds a token source from the marketplace configuration.
// The shared secret is a legacy static access token used verbatim when the
// credentials file has no refresh token.
func NewTokenSource(cfg config.EtsyConfig, log *logger.Logger, opts ...TokenOption) (*TokenSource, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	keystring := strings.TrimSpace(cfg.Keystring)
	if keystring == "" {
		return nil, fmt.Errorf("etsy keystring is required")
	}
	path := strings.TrimSpace(cfg.CredentialsPath)
	if path == "" {
		return nil, fmt.Errorf("etsy credentials path is required")
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		return nil, fmt.Errorf("etsy token url is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	source := &TokenSource{
		path:         path,
		keystring:    keystring,
		staticSecret: strings.TrimSpace(cfg.SharedSecret),
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(source)
		}
	}
	return source, nil
}

// Token returns an access token valid for at least the skew window,
// refreshing and persisting rotated credentials when needed.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	creds := t.load()
	now := t.now().UTC()

	if creds.AccessToken != "" && time.Unix(creds.ExpiresAt, 0).After(now.Add(expirySkew)) {
		return creds.AccessToken, nil
	}

	refreshToken := strings.TrimSpace(creds.RefreshToken)
	if refreshToken == "" {
		// Pre-OAuth deployments pinned a long-lived token in the secret
		// slot. It is handed out as-is, with no refresh and no expiry.
		if t.staticSecret != "" {
			return t.staticSecret, nil
		}
		return "", pkgerrors.New(pkgerrors.CodeNotConnected, notConnectedMessage)
	}

	refreshed, err := t.refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	creds.AccessToken = refreshed.AccessToken
	creds.ExpiresAt = now.Add(refreshed.lifetime()).Unix()
	if strings.TrimSpace(refreshed.RefreshToken) != "" {
		creds.RefreshToken = refreshed.RefreshToken
	}

	// A failed write costs one extra refresh next boot, not this fetch.
	if err := t.persist(creds); err != nil {
		t.log.Warn(t.log.WithField(ctx, "path", t.path), "persisting etsy credentials failed: "+err.Error())
	}

	return creds.AccessToken, nil
}

// SaveRefreshToken stores a user-supplied refresh token and invalidates any
// cached access token so the next fetch exercises the new grant.
func (t *TokenSource) SaveRefreshToken(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refresh token must not be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	creds := t.load()
	creds.RefreshToken = trimmed
	creds.AccessToken = ""
	creds.ExpiresAt = 0

	if err := t.persist(creds); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "persist etsy refresh token")
	}
	return nil
}

func (t *TokenSource) load() storedCredentials {
	var creds storedCredentials
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return creds
	}
	// Unreadable state files behave like a fresh install.
	_ = json.Unmarshal(raw, &creds)
	return creds
}

func (t *TokenSource) persist(creds storedCredentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(t.path, raw, 0o600)
}

func (t *TokenSource) refresh(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", t.keystring)
	form.Set("refresh_token", refreshToken)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRefreshFailed, err, "build etsy token request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRefreshFailed, err, "execute etsy token request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeRefreshFailed, fmt.Sprintf("etsy token endpoint status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRefreshFailed, err, "decode etsy token response")
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRefreshFailed, "etsy token response missing access token")
	}
	return &payload, nil
}
