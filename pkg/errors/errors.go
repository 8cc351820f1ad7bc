package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies transport failures
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// TransportError reports a non-2xx status or a connection fault for one request.
// StatusCode is 0 when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Type       ErrorType
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s error for %s: %v", e.Type, e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error (status %d) for %s: %v", e.Type, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("%s error (status %d) for %s", e.Type, e.StatusCode, e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request could succeed
func (e *TransportError) Retryable() bool {
	return IsRetryable(e.Type)
}

// NewStatusError builds a TransportError for an HTTP status
func NewStatusError(url string, statusCode int, err error) *TransportError {
	return &TransportError{
		URL:        url,
		StatusCode: statusCode,
		Type:       ClassifyStatus(statusCode),
		Err:        err,
	}
}

// NewNetworkError builds a TransportError for a request that never produced a response
func NewNetworkError(url string, err error) *TransportError {
	return &TransportError{
		URL:  url,
		Type: ErrorTypeNetwork,
		Err:  err,
	}
}

// CursorStallError is returned when a paginated endpoint hands back a next
// cursor that was already requested.
type CursorStallError struct {
	URL  string
	Page int
}

func (e *CursorStallError) Error() string {
	return fmt.Sprintf("pagination cursor did not advance after page %d: %s", e.Page, e.URL)
}

// StorageError wraps a filesystem fault
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ResourceError tags a failure with the archived resource it belongs to.
// State is the terminal state the resource reached (FETCH_FAILED or STORE_FAILED).
type ResourceError struct {
	Resource string
	State    string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Resource, e.State, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps an HTTP status code to an ErrorType
func ClassifyStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
		return ErrorTypeNotFound
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Kind names the family of err for log fields: cursor_stall, storage,
// transport or other.
func Kind(err error) string {
	switch {
	case IsCursorStall(err):
		return "cursor_stall"
	case IsStorage(err):
		return "storage"
	case IsTransport(err):
		return "transport"
	default:
		return "other"
	}
}

// IsTransport reports whether err carries a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsStorage reports whether err carries a StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsCursorStall reports whether err carries a CursorStallError
func IsCursorStall(err error) bool {
	var ce *CursorStallError
	return errors.As(err, &ce)
}
