package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequestID(t *testing.T, header string) (string, string) {
	t.Helper()

	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if header != "" {
		req.Header.Set("X-Request-ID", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return fromCtx, rec.Header().Get("X-Request-ID")
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	fromCtx, echoed := runRequestID(t, "")
	require.NotEmpty(t, fromCtx)
	assert.Equal(t, fromCtx, echoed)
	_, err := uuid.Parse(fromCtx)
	assert.NoError(t, err)
}

func TestRequestID_HonorsInboundHeader(t *testing.T) {
	fromCtx, echoed := runRequestID(t, "cli-retry-42")
	assert.Equal(t, "cli-retry-42", fromCtx)
	assert.Equal(t, "cli-retry-42", echoed)
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	fromCtx, echoed := runRequestID(t, strings.Repeat("x", 65))
	assert.NotEqual(t, strings.Repeat("x", 65), fromCtx)
	assert.Equal(t, fromCtx, echoed)
	_, err := uuid.Parse(fromCtx)
	assert.NoError(t, err)
}
