package constants

// Catalog Error Codes
// These constants classify failures from the remote catalog service and
// the local stores so the orchestrator can decide whether a pass is
// retryable.

// Transient errors - re-invoking the whole pass may succeed
const (
	ErrCodeNetworkError = "NETWORK_ERROR"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeServerError  = "SERVER_ERROR"
)

// Terminal errors - the pass aborts and is not retried automatically
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeInvalidAPIKey        = "INVALID_API_KEY"
)

// Local storage errors
const (
	ErrCodeStorage       = "STORAGE_ERROR"
	ErrCodeSerialization = "SERIALIZATION_ERROR"
)

// Error Messages
// Human-readable messages surfaced to the device UI via the progress
// reporter.

var CatalogErrorMessages = map[string]string{
	ErrCodeNetworkError: "Unable to reach the catalog service. Please check your internet connection and retry",
	ErrCodeRateLimited:  "Too many requests to the catalog service. Please try again later",
	ErrCodeServerError:  "The catalog service reported an internal error. Please retry later",

	ErrCodeNotFound:             "The requested version or document was not found on the catalog service",
	ErrCodeAuthenticationFailed: "Authentication with the catalog service failed",
	ErrCodeInvalidAPIKey:        "The catalog API key is invalid or has been revoked",

	ErrCodeStorage:       "Unable to write to local storage. Check free disk space",
	ErrCodeSerialization: "A cached data snapshot was corrupt and has been discarded",
}
