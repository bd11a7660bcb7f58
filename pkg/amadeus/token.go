package amadeus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenPath = "/v1/security/oauth2/token"

// expiryLeeway is how long before expiry a cached token stops being served.
const expiryLeeway = 30 * time.Second

var ErrNoToken = errors.New("amadeus: token response has no access token")

type fetchFunc func(ctx context.Context) (*oauth2.Token, error)

// tokenCache serves a bearer token to concurrent callers. Only one caller
// refreshes at a time; the others wait and reuse its result.
type tokenCache struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time

	refreshMu sync.Mutex
	fetch     fetchFunc
	backoff   func() retry.Backoff
	now       func() time.Time
}

func newTokenCache(cfg Config, httpClient *http.Client) *tokenCache {
	cc := &clientcredentials.Config{
		ClientID:     cfg.APIKey,
		ClientSecret: cfg.APISecret,
		TokenURL:     cfg.BaseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	attempts := cfg.TokenRetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	base := cfg.TokenRetryBase
	if base <= 0 {
		base = time.Second
	}
	capDuration := cfg.TokenRetryCap
	if capDuration <= 0 {
		capDuration = 8 * time.Second
	}

	return &tokenCache{
		fetch: func(ctx context.Context) (*oauth2.Token, error) {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
			return cc.Token(ctx)
		},
		backoff: func() retry.Backoff {
			b := retry.NewExponential(base)
			b = retry.WithCappedDuration(capDuration, b)
			return retry.WithMaxRetries(attempts-1, b)
		},
		now: time.Now,
	}
}

func (c *tokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Before(c.expiry.Add(-expiryLeeway)) {
		return "", false
	}
	return c.token, true
}

// Get returns a token valid for at least expiryLeeway.
func (c *tokenCache) Get(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if tok, ok := c.cached(); ok {
		return tok, nil
	}

	var fresh *oauth2.Token
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		tok, err := c.fetch(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		fresh = tok
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("amadeus: fetch token: %w", err)
	}
	if fresh == nil || fresh.AccessToken == "" {
		return "", ErrNoToken
	}

	c.mu.Lock()
	c.token = fresh.AccessToken
	c.expiry = fresh.Expiry
	c.mu.Unlock()

	return fresh.AccessToken, nil
}
