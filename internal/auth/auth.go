// Package auth verifies who is calling the dealer.
//
// Owner operations and player-private reads both need a verified public key.
// PermitValidator checks signed permits locally, HTTPValidator asks an
// external service, and InsecureValidator trusts the token as-is for local
// development.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrInvalidToken indicates the token is definitively invalid.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrInvalidPermit is an ErrInvalidToken raised by permit checks.
	ErrInvalidPermit = fmt.Errorf("%w: invalid permit", ErrInvalidToken)

	// ErrUnavailable indicates the auth service is unreachable or unavailable.
	ErrUnavailable = errors.New("auth: unavailable")
)

// Identity is a verified caller.
type Identity struct {
	// PublicKey identifies the caller at tables and as owner.
	PublicKey string `json:"public_key"`
	Name      string `json:"name,omitempty"`
}

// Validator validates authentication tokens.
type Validator interface {
	// Validate returns the caller's identity, ErrInvalidToken (or a wrapped
	// form of it) for a rejected token, or ErrUnavailable when the check
	// could not be made.
	Validate(ctx context.Context, token string) (*Identity, error)
}

const httpTimeout = 500 * time.Millisecond

// HTTPValidator validates tokens via HTTP callback to external service.
type HTTPValidator struct {
	url         string
	client      *http.Client
	adminSecret string
}

// NewHTTPValidator creates a validator that calls an external HTTP endpoint.
func NewHTTPValidator(url string, adminSecret string) *HTTPValidator {
	return &HTTPValidator{
		url:         url,
		adminSecret: adminSecret,
		client:      &http.Client{Timeout: httpTimeout},
	}
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid     bool   `json:"valid"`
	PublicKey string `json:"public_key,omitempty"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (v *HTTPValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	reqBody, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.adminSecret != "" {
		req.Header.Set("X-Admin-Secret", v.adminSecret)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var authResp validateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&authResp); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}
	if !authResp.Valid || authResp.PublicKey == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{PublicKey: authResp.PublicKey, Name: authResp.Name}, nil
}

// InsecureValidator accepts any non-empty token as the caller's public key.
// It exists for local development and tests.
type InsecureValidator struct{}

func (InsecureValidator) Validate(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{PublicKey: token}, nil
}
