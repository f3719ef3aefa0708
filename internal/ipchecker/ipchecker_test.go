package ipchecker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New("10.0.0.0/99")
	assert.Error(t, err)

	checker, err := New("")
	require.NoError(t, err)
	assert.False(t, checker.Check([]byte{127, 0, 0, 1}))
}

func TestOnlyTrusted(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)

	handler := checker.OnlyTrusted(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	type tTestCase struct {
		name         string
		remoteAddr   string
		headers      map[string]string
		expectedCode int
	}
	testCases := []tTestCase{
		{name: "remote addr inside", remoteAddr: "192.168.1.7:5555", expectedCode: http.StatusOK},
		{name: "remote addr outside", remoteAddr: "10.1.1.1:5555", expectedCode: http.StatusForbidden},
		{
			name:         "X-Real-IP wins",
			remoteAddr:   "10.1.1.1:5555",
			headers:      map[string]string{"X-Real-IP": "192.168.1.20"},
			expectedCode: http.StatusOK,
		},
		{
			name:         "first X-Forwarded-For entry",
			remoteAddr:   "192.168.1.7:5555",
			headers:      map[string]string{"X-Forwarded-For": "8.8.8.8, 192.168.1.7"},
			expectedCode: http.StatusForbidden,
		},
		{name: "broken remote addr", remoteAddr: "garbage", expectedCode: http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/stats", nil)
			req.RemoteAddr = testCase.remoteAddr
			for k, v := range testCase.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, testCase.expectedCode, rec.Code)
		})
	}
}
