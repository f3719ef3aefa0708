package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipString(t *testing.T, input string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return buf.Bytes()
}

func TestGzipJSONResponse(t *testing.T) {
	jsonHandler := GzipJSONResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	textHandler := GzipJSONResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("User not found"))
	}))

	t.Run("json is compressed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		jsonHandler.ServeHTTP(rec, req)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(body))
	})

	t.Run("plain text is not compressed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		textHandler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "User not found", rec.Body.String())
	})

	t.Run("client without gzip support", func(t *testing.T) {
		rec := httptest.NewRecorder()
		jsonHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
		assert.Equal(t, `[]`, rec.Body.String())
	})
}

func TestUngzipRequest(t *testing.T) {
	echo := UngzipRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		_, _ = w.Write(body)
	}))

	t.Run("gzipped body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(gzipString(t, `{"name":"Bob"}`)))
		req.Header.Set("Content-Encoding", "gzip")
		rec := httptest.NewRecorder()
		echo.ServeHTTP(rec, req)

		assert.Equal(t, `{"name":"Bob"}`, rec.Body.String())
	})

	t.Run("broken gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte("not gzip")))
		req.Header.Set("Content-Encoding", "gzip")
		rec := httptest.NewRecorder()
		echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
