package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/common"
)

func TestClientIPNormalisesRemoteAddr(t *testing.T) {
	cases := map[string]string{
		"10.0.0.9:5123":          "10.0.0.9",
		"[::ffff:10.0.0.9]:5123": "10.0.0.9",
		"[2001:db8::1]:443":      "2001:db8::1",
		"192.168.1.4":            "192.168.1.4",
		" 192.168.1.4 ":          "192.168.1.4",
		"pipe":                   "pipe",
	}
	for remote, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		require.Equal(t, want, common.ClientIP(req), remote)
	}
	require.Empty(t, common.ClientIP(nil))
}

func TestClientIPIgnoresHeadersWithoutRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	require.Equal(t, "10.0.0.9", common.ClientIP(req))
}

func TestClientIPBehindRealIP(t *testing.T) {
	var got string
	h := middleware.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "203.0.113.7", got)
}
