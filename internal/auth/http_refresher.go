package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPTokenRefresher exchanges a device API key for a short-lived bearer
// JWT at the authentication service.
type HTTPTokenRefresher struct {
	AuthURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPTokenRefresher creates a refresher against the given auth endpoint
func NewHTTPTokenRefresher(authURL, apiKey string) *HTTPTokenRefresher {
	return &HTTPTokenRefresher{
		AuthURL: authURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type tokenRequest struct {
	APIKey string `json:"apiKey"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// RefreshToken requests a fresh bearer token
func (r *HTTPTokenRefresher) RefreshToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(tokenRequest{APIKey: r.APIKey})
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.Token == "" {
		return "", fmt.Errorf("auth service returned an empty token")
	}
	return tr.Token, nil
}
