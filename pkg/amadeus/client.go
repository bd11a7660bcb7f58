package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
	metricsx "github.com/tanpawarit/flightdesk/pkg/metrics"
)

const (
	searchPath = "/v2/shopping/flight-offers"
	pricePath  = "/v1/shopping/flight-offers/pricing"
	orderPath  = "/v1/booking/flight-orders"
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: status=%d body=%s", e.StatusCode, e.Body)
}

type Client struct {
	http   *resty.Client
	tokens *tokenCache
	log    zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("amadeus: base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("amadeus: api key and secret are required")
	}
	cfg.BaseURL = baseURL

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Client{
		http: resty.NewWithClient(httpClient).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json"),
		tokens: newTokenCache(cfg, httpClient),
		log:    logx.WithComponent("amadeus"),
	}, nil
}

// SearchParams mirrors the provider's flight-offer search query.
type SearchParams struct {
	OriginLocationCode      string `json:"originLocationCode" binding:"required"`
	DestinationLocationCode string `json:"destinationLocationCode" binding:"required"`
	DepartureDate           string `json:"departureDate" binding:"required"`
	ReturnDate              string `json:"returnDate,omitempty"`
	Adults                  int    `json:"adults,omitempty" binding:"omitempty,min=1,max=9"`
	Children                int    `json:"children,omitempty" binding:"omitempty,min=0"`
	Infants                 int    `json:"infants,omitempty" binding:"omitempty,min=0"`
	TravelClass             string `json:"travelClass,omitempty" binding:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	CurrencyCode            string `json:"currencyCode,omitempty"`
	NonStop                 bool   `json:"nonStop,omitempty"`
	Max                     int    `json:"max,omitempty" binding:"omitempty,min=1,max=250"`
}

func (p *SearchParams) ApplyDefaults() {
	if p.Adults <= 0 {
		p.Adults = 1
	}
	if strings.TrimSpace(p.CurrencyCode) == "" {
		p.CurrencyCode = "USD"
	}
	if p.Max <= 0 {
		p.Max = 20
	}
}

func (p SearchParams) Query() map[string]string {
	q := map[string]string{
		"originLocationCode":      strings.ToUpper(strings.TrimSpace(p.OriginLocationCode)),
		"destinationLocationCode": strings.ToUpper(strings.TrimSpace(p.DestinationLocationCode)),
		"departureDate":           strings.TrimSpace(p.DepartureDate),
		"adults":                  strconv.Itoa(p.Adults),
		"nonStop":                 strconv.FormatBool(p.NonStop),
	}
	if p.ReturnDate != "" {
		q["returnDate"] = p.ReturnDate
	}
	if p.Children > 0 {
		q["children"] = strconv.Itoa(p.Children)
	}
	if p.Infants > 0 {
		q["infants"] = strconv.Itoa(p.Infants)
	}
	if p.TravelClass != "" {
		q["travelClass"] = p.TravelClass
	}
	if p.CurrencyCode != "" {
		q["currencyCode"] = p.CurrencyCode
	}
	if p.Max > 0 {
		q["max"] = strconv.Itoa(p.Max)
	}
	return q
}

func (c *Client) SearchOffers(ctx context.Context, params SearchParams) (map[string]any, error) {
	return c.do(ctx, "search", http.MethodGet, searchPath, params.Query(), nil)
}

func (c *Client) PriceOffer(ctx context.Context, body any) (map[string]any, error) {
	return c.do(ctx, "price", http.MethodPost, pricePath, nil, body)
}

func (c *Client) CreateOrder(ctx context.Context, body any) (map[string]any, error) {
	return c.do(ctx, "create_order", http.MethodPost, orderPath, nil, body)
}

func (c *Client) do(ctx context.Context, op, method, path string, query map[string]string, body any) (map[string]any, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		metricsx.RecordUpstreamRequest("token", 0)
		return nil, err
	}

	req := c.http.R().SetContext(ctx).SetAuthToken(token)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		metricsx.RecordUpstreamRequest(op, 0)
		c.log.Warn().Err(err).Str("op", op).Msg("amadeus request failed")
		return nil, fmt.Errorf("amadeus %s: %w", op, err)
	}
	metricsx.RecordUpstreamRequest(op, resp.StatusCode())

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		c.log.Warn().Int("status", resp.StatusCode()).Str("op", op).Msg("amadeus returned error status")
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	out := map[string]any{}
	if len(resp.Body()) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("amadeus %s: decode response: %w", op, err)
	}
	return out, nil
}
