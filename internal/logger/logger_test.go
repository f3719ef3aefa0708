package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug"))
	assert.Error(t, Init("loud"))
}

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	require.NoError(t, Init("info"))

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	t.Run("generates a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "created", rec.Body.String())
		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("reuses the incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}
