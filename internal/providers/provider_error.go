package providers

import (
	"errors"
	"fmt"
	"net/http"

	"stratus-efb/chartvault/internal/constants"
)

// ProviderError classifies a catalog failure so the orchestrator can
// decide whether the pass is worth retrying
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if msg, ok := constants.CatalogErrorMessages[e.Code]; ok {
		return fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTransient reports whether re-running the whole pass may succeed
func IsTransient(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}

	switch perr.Code {
	case constants.ErrCodeNetworkError, constants.ErrCodeRateLimited, constants.ErrCodeServerError:
		return true
	}
	return false
}

// IsNotFound reports whether the catalog answered 404
func IsNotFound(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == constants.ErrCodeNotFound
}

func errorForStatus(status int, detail string) *ProviderError {
	code := constants.ErrCodeNetworkError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = constants.ErrCodeAuthenticationFailed
	case status == http.StatusNotFound:
		code = constants.ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
	case status >= 500:
		code = constants.ErrCodeServerError
	}

	return &ProviderError{
		Code:       code,
		Message:    fmt.Sprintf("%s (status %d)", detail, status),
		StatusCode: status,
	}
}
