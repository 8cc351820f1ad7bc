package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{0, ErrorTypeNetwork},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusGone, ErrorTypeNotFound},
		{http.StatusBadGateway, ErrorTypeServerError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func TestKind(t *testing.T) {
	stall := &CursorStallError{URL: "https://api.github.com/x?page=2", Page: 2}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cursor stall", fmt.Errorf("followers: %w", stall), "cursor_stall"},
		{"storage", &StorageError{Op: "write", Path: "/tmp/x", Err: errors.New("disk full")}, "storage"},
		{"transport", NewStatusError("https://api.github.com/users/octo", http.StatusServiceUnavailable, nil), "transport"},
		{"wrapped transport", &ResourceError{Resource: "starred", State: "FETCH_FAILED", Err: NewNetworkError("u", errors.New("reset"))}, "transport"},
		{"other", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestResourceErrorUnwrap(t *testing.T) {
	transport := NewStatusError("https://api.github.com/users/octo/starred", http.StatusNotFound, nil)
	wrapped := &ResourceError{Resource: "starred", State: "FETCH_FAILED", Err: fmt.Errorf("fetch: %w", transport)}

	assert.True(t, IsTransport(wrapped))
	assert.False(t, IsStorage(wrapped))

	var te *TransportError
	assert.True(t, errors.As(wrapped, &te))
	assert.Equal(t, ErrorTypeNotFound, te.Type)
	assert.False(t, te.Retryable())
	assert.Contains(t, wrapped.Error(), "starred [FETCH_FAILED]")
	assert.Contains(t, wrapped.Error(), "status 404")
}

func TestStorageAndStallErrors(t *testing.T) {
	se := &StorageError{Op: "write", Path: "/tmp/x", Err: errors.New("disk full")}
	assert.True(t, IsStorage(fmt.Errorf("place: %w", se)))
	assert.Equal(t, "storage write /tmp/x: disk full", se.Error())

	ce := &CursorStallError{URL: "https://api.github.com/x?page=2", Page: 2}
	assert.True(t, IsCursorStall(ce))
	assert.Contains(t, ce.Error(), "did not advance after page 2")
}

func TestNetworkError(t *testing.T) {
	err := NewNetworkError("https://example.com", errors.New("connection reset"))
	assert.Equal(t, ErrorTypeNetwork, err.Type)
	assert.True(t, err.Retryable())
	assert.Equal(t, "network error for https://example.com: connection reset", err.Error())
}
