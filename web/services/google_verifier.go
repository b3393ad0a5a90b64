package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "redpen/errors"

	"go.uber.org/zap"
)

// GoogleIdentity is the subset of a verified ID token the auth flow uses.
type GoogleIdentity struct {
	Email string
	Name  string
}

// GoogleVerifier checks a Google ID token for this application.
type GoogleVerifier interface {
	Configured() bool
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// TokenInfoVerifier validates ID tokens with Google's tokeninfo endpoint and
// checks the audience against the configured client ID.
type TokenInfoVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTokenInfoVerifier(clientID, endpoint string, logger *zap.Logger) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID:   clientID,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (v *TokenInfoVerifier) Configured() bool {
	return v.clientID != ""
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	u, err := url.Parse(v.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse tokeninfo url: %w", err)
	}
	q := u.Query()
	q.Set("id_token", idToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create tokeninfo request: %w", err)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.WrapErrorf(apperrors.ErrUnauthorized, "tokeninfo status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode tokeninfo: %v", apperrors.ErrUpstream, err)
	}
	if info.Aud != v.clientID {
		return nil, apperrors.WrapErrorf(apperrors.ErrUnauthorized, "token audience %q", info.Aud)
	}
	if info.EmailVerified != "true" {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, "email not verified")
	}

	name := info.Name
	if name == "" {
		name = info.GivenName
	}
	return &GoogleIdentity{Email: info.Email, Name: name}, nil
}
