package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	tokenHits   atomic.Int32
	tokenFails  int32
	searchQuery chan map[string]string
	priceBody   chan map[string]any
	status      int
}

func (f *fakeProvider) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenHits.Add(1)
		if n <= f.tokenFails {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" || r.PostForm.Get("client_id") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":1799}`))
	})
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		if f.searchQuery != nil {
			f.searchQuery <- q
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"errors":[{"code":38189,"title":"Internal error"}]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","price":{"total":"420.00","currency":"USD"}}]}`))
	})
	mux.HandleFunc(pricePath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.priceBody != nil {
			f.priceBody <- body
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"type":"flight-offers-pricing","flightOffers":[]}}`))
	})
	return mux
}

func newTestClient(t *testing.T, provider *fakeProvider) *Client {
	t.Helper()

	server := httptest.NewServer(provider.handler(t))
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:            server.URL + "/",
		APIKey:             "key",
		APISecret:          "secret",
		Timeout:            2 * time.Second,
		TokenRetryAttempts: 3,
		TokenRetryBase:     time.Millisecond,
		TokenRetryCap:      5 * time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestSearchOffersSendsQueryAndCachesToken(t *testing.T) {
	provider := &fakeProvider{searchQuery: make(chan map[string]string, 2)}
	client := newTestClient(t, provider)

	params := SearchParams{OriginLocationCode: "amm", DestinationLocationCode: "DOH", DepartureDate: "2025-10-10"}
	params.ApplyDefaults()

	resp, err := client.SearchOffers(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, resp["data"], 1)

	q := <-provider.searchQuery
	assert.Equal(t, "AMM", q["originLocationCode"])
	assert.Equal(t, "1", q["adults"])
	assert.Equal(t, "USD", q["currencyCode"])
	assert.Equal(t, "20", q["max"])
	assert.NotContains(t, q, "children")

	_, err = client.SearchOffers(context.Background(), params)
	require.NoError(t, err)
	<-provider.searchQuery
	assert.Equal(t, int32(1), provider.tokenHits.Load())
}

func TestTokenRefreshRetriesWithBackoff(t *testing.T) {
	provider := &fakeProvider{tokenFails: 2}
	client := newTestClient(t, provider)

	_, err := client.SearchOffers(context.Background(), SearchParams{OriginLocationCode: "AMM", DestinationLocationCode: "DOH", DepartureDate: "2025-10-10"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), provider.tokenHits.Load())
}

func TestTokenRefreshGivesUpAfterAttempts(t *testing.T) {
	provider := &fakeProvider{tokenFails: 10}
	client := newTestClient(t, provider)

	_, err := client.SearchOffers(context.Background(), SearchParams{OriginLocationCode: "AMM", DestinationLocationCode: "DOH", DepartureDate: "2025-10-10"})
	require.Error(t, err)
	assert.Equal(t, int32(3), provider.tokenHits.Load())
}

func TestConcurrentCallersShareOneRefresh(t *testing.T) {
	provider := &fakeProvider{}
	client := newTestClient(t, provider)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.tokens.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.tokenHits.Load())
}

func TestTokenExpiresBeforeLeeway(t *testing.T) {
	provider := &fakeProvider{}
	client := newTestClient(t, provider)

	now := time.Now()
	client.tokens.now = func() time.Time { return now }

	_, err := client.tokens.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.tokenHits.Load())

	// expires_in is 1799s, so 1770s later the token is inside the leeway.
	client.tokens.now = func() time.Time { return now.Add(1770 * time.Second) }
	_, err = client.tokens.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.tokenHits.Load())
}

func TestNonSuccessStatusReturnsAPIError(t *testing.T) {
	provider := &fakeProvider{status: http.StatusInternalServerError}
	client := newTestClient(t, provider)

	_, err := client.SearchOffers(context.Background(), SearchParams{OriginLocationCode: "AMM", DestinationLocationCode: "DOH", DepartureDate: "2025-10-10"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Internal error")
}

func TestPriceOfferPostsBody(t *testing.T) {
	provider := &fakeProvider{priceBody: make(chan map[string]any, 1)}
	client := newTestClient(t, provider)

	body := map[string]any{"data": map[string]any{"type": "flight-offers-pricing", "flightOffers": []any{map[string]any{"id": "1"}}}}
	resp, err := client.PriceOffer(context.Background(), body)
	require.NoError(t, err)
	assert.NotNil(t, resp["data"])

	got := <-provider.priceBody
	assert.Equal(t, "flight-offers-pricing", got["data"].(map[string]any)["type"])
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{BaseURL: "https://test.api.amadeus.com"})
	assert.Error(t, err)
}
