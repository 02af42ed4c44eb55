package generativeAI

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenCache owns the bearer credential for the LLM gateway. The credential
// is obtained through an OAuth client-credentials exchange and expires; the
// cache refreshes lazily and on demand. All state sits behind its own lock,
// never in package-level variables.
type tokenCache struct {
	mu    sync.Mutex
	conf  *clientcredentials.Config
	token *oauth2.Token

	// expirySkew refreshes slightly ahead of the reported expiry so a token
	// cannot die mid-request.
	expirySkew time.Duration
}

func newTokenCache(tokenURL, clientID, clientSecret string) *tokenCache {
	return &tokenCache{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		expirySkew: 30 * time.Second,
	}
}

// Bearer returns a currently valid access token, refreshing when expired.
func (tc *tokenCache) Bearer(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.expiredLocked() {
		if err := tc.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return tc.token.AccessToken, nil
}

// Refresh forces a new client-credentials exchange regardless of the cached
// token's state, used after the provider rejects a credential.
func (tc *tokenCache) Refresh(ctx context.Context) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.refreshLocked(ctx)
}

// IsExpired reports whether a fresh exchange would be needed to call the
// provider right now.
func (tc *tokenCache) IsExpired() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.expiredLocked()
}

func (tc *tokenCache) expiredLocked() bool {
	if tc.token == nil || tc.token.AccessToken == "" {
		return true
	}
	if tc.token.Expiry.IsZero() {
		return false
	}
	return time.Now().After(tc.token.Expiry.Add(-tc.expirySkew))
}

func (tc *tokenCache) refreshLocked(ctx context.Context) error {
	token, err := tc.conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("client-credentials token exchange failed: %w", err)
	}
	tc.token = token
	return nil
}
