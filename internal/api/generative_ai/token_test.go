package generativeAI

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(exchanges *atomic.Int64, expiresIn int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func TestTokenCache_LazyRefresh(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTokenServer(&exchanges, 3600)
	defer srv.Close()

	tc := newTokenCache(srv.URL, "id", "secret")
	assert.True(t, tc.IsExpired())

	bearer, err := tc.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", bearer)
	assert.False(t, tc.IsExpired())

	// A second Bearer reuses the cached token.
	bearer, err = tc.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", bearer)
	assert.EqualValues(t, 1, exchanges.Load())
}

func TestTokenCache_ForcedRefresh(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTokenServer(&exchanges, 3600)
	defer srv.Close()

	tc := newTokenCache(srv.URL, "id", "secret")
	_, err := tc.Bearer(context.Background())
	require.NoError(t, err)

	require.NoError(t, tc.Refresh(context.Background()))

	bearer, err := tc.Bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", bearer)
	assert.EqualValues(t, 2, exchanges.Load())
}

func TestTokenCache_SkewTreatsNearExpiryAsExpired(t *testing.T) {
	tc := newTokenCache("http://unused.invalid", "id", "secret")
	tc.token = &oauth2.Token{
		AccessToken: "short-lived",
		Expiry:      time.Now().Add(10 * time.Second),
	}

	// 10s remaining is inside the 30s skew window.
	assert.True(t, tc.IsExpired())

	tc.token.Expiry = time.Now().Add(5 * time.Minute)
	assert.False(t, tc.IsExpired())
}

func TestTokenCache_ExchangeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tc := newTokenCache(srv.URL, "id", "secret")
	_, err := tc.Bearer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange failed")
}
