package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshSkew is how long before the token's exp claim a refresh kicks in
const refreshSkew = 30 * time.Second

// fallbackTTL is assumed when a token carries no readable exp claim
const fallbackTTL = 5 * time.Minute

// TokenRefresher obtains a fresh bearer token from the authentication
// subsystem. That subsystem is an external collaborator; only this
// interface is consumed here.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// TokenSource hands out a valid bearer token for catalog calls
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Invalidate forces a refresh on the next Token call, used after the
	// catalog answers 401
	Invalidate()
}

// BearerTokenSource caches the refresher's JWT and renews it shortly
// before the exp claim runs out
type BearerTokenSource struct {
	mu        sync.Mutex
	refresher TokenRefresher
	token     string
	expiresAt time.Time
}

// NewBearerTokenSource creates a token source backed by the given refresher
func NewBearerTokenSource(refresher TokenRefresher) *BearerTokenSource {
	return &BearerTokenSource{refresher: refresher}
}

// Token returns the cached token, refreshing it when it is missing or
// about to expire
func (s *BearerTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Add(refreshSkew).Before(s.expiresAt) {
		return s.token, nil
	}

	token, err := s.refresher.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh catalog token: %w", err)
	}

	s.token = token
	s.expiresAt = tokenExpiry(token)
	return s.token, nil
}

// Invalidate drops the cached token
func (s *BearerTokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client only needs the timestamp; verification is the server's job.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Now().Add(fallbackTTL)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(fallbackTTL)
	}

	return exp.Time
}

// StaticTokenSource serves a fixed API key. Used for deployments without
// a token-refresh collaborator and in tests.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

func (s *StaticTokenSource) Invalidate() {}
