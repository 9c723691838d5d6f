package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/auth"
	"stratus-efb/chartvault/internal/constants"
	"stratus-efb/chartvault/internal/models/dtos"

	"golang.org/x/time/rate"
)

// CatalogAPI defines the remote catalog operations the sync engine
// consumes. Pure request/response; the provider holds no local state
// beyond its HTTP client.
type CatalogAPI interface {
	// GetCurrentVersion fetches the published cycle descriptor
	GetCurrentVersion(ctx context.Context) (*dtos.VersionInfo, error)

	// ListAirports fetches the full airport list for the published cycle
	ListAirports(ctx context.Context) ([]dtos.AirportInfo, error)

	// ListDocuments fetches one airport's document list
	ListDocuments(ctx context.Context, icao string) ([]dtos.DocumentInfo, error)

	// GetRetrievalReference fetches a short-lived signed URL for one document
	GetRetrievalReference(ctx context.Context, kind, id string) (*dtos.RetrievalReference, error)

	// FetchBlob downloads a payload from a signed retrieval URL
	FetchBlob(ctx context.Context, url string) ([]byte, error)
}

// CatalogProvider implements CatalogAPI over authenticated HTTP/JSON
type CatalogProvider struct {
	BaseURL string
	Tokens  auth.TokenSource
	Client  *http.Client

	limiter *rate.Limiter
}

var _ CatalogAPI = (*CatalogProvider)(nil)

// NewCatalogProvider creates a catalog client. List calls are rate
// limited so a full sync walks the catalog politely.
func NewCatalogProvider(baseURL string, tokens auth.TokenSource) *CatalogProvider {
	return &CatalogProvider{
		BaseURL: baseURL,
		Tokens:  tokens,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// GetCurrentVersion fetches the published cycle descriptor
func (p *CatalogProvider) GetCurrentVersion(ctx context.Context) (*dtos.VersionInfo, error) {
	var resp dtos.CurrentVersionResponse
	if err := p.doGET(ctx, "/catalog/version", &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// ListAirports fetches the full airport list
func (p *CatalogProvider) ListAirports(ctx context.Context) ([]dtos.AirportInfo, error) {
	var resp dtos.AirportListResponse
	if err := p.doGET(ctx, "/catalog/airports", &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// ListDocuments fetches one airport's document list
func (p *CatalogProvider) ListDocuments(ctx context.Context, icao string) ([]dtos.DocumentInfo, error) {
	if icao == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: "ICAO code cannot be empty",
		}
	}

	var resp dtos.DocumentListResponse
	endpoint := fmt.Sprintf("/catalog/airports/%s/documents", icao)
	if err := p.doGET(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetRetrievalReference fetches a short-lived signed URL for one document
func (p *CatalogProvider) GetRetrievalReference(ctx context.Context, kind, id string) (*dtos.RetrievalReference, error) {
	if kind == "" || id == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: "document kind and id cannot be empty",
		}
	}

	var resp dtos.RetrievalReferenceResponse
	endpoint := fmt.Sprintf("/catalog/documents/%s/%s/reference", kind, id)
	if err := p.doGET(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// FetchBlob downloads a payload from a signed URL. The URL carries its
// own authorization, so no bearer token is attached.
func (p *CatalogProvider) FetchBlob(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorForStatus(resp.StatusCode, "blob download failed")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("failed to read blob body: %v", err),
		}
	}
	return data, nil
}

// doGET performs an authenticated GET. A 401 invalidates the cached
// token and the request is transparently retried once.
func (p *CatalogProvider) doGET(ctx context.Context, endpoint string, result interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	status, err := p.getOnce(ctx, endpoint, result)
	if err != nil && status == http.StatusUnauthorized {
		p.Tokens.Invalidate()
		_, err = p.getOnce(ctx, endpoint, result)
	}
	return err
}

func (p *CatalogProvider) getOnce(ctx context.Context, endpoint string, result interface{}) (int, error) {
	token, err := p.Tokens.Token(ctx)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, errorForStatus(resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeSerialization,
			Message: fmt.Sprintf("failed to decode catalog response: %v", err),
		}
	}

	return resp.StatusCode, nil
}
