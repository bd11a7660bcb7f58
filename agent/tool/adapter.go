package tool

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
	metricsx "github.com/tanpawarit/flightdesk/pkg/metrics"
)

var capabilityEndpoints = map[contractx.CapabilityName]string{
	contractx.CapabilitySearchOffers: "/amadeus/search",
	contractx.CapabilityPriceOffer:   "/amadeus/price",
	contractx.CapabilityCreateOrder:  "/amadeus/create-order",
}

type AdapterConfig struct {
	BaseURL string        `envconfig:"BACKEND_BASE" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"45s"`
}

// HTTPAdapter posts capability arguments as JSON to the backend. It does not
// retry; a failed call is reported once and the agent decides what to do.
type HTTPAdapter struct {
	client *resty.Client
	log    zerolog.Logger
}

var _ contractx.CapabilityAdapter = (*HTTPAdapter)(nil)

func NewHTTPAdapter(cfg AdapterConfig) *HTTPAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &HTTPAdapter{
		client: client,
		log:    logx.WithComponent("capability_adapter"),
	}
}

func (a *HTTPAdapter) Invoke(ctx context.Context, name contractx.CapabilityName, args any) contractx.CapabilityResult {
	endpoint, ok := capabilityEndpoints[name]
	if !ok {
		metricsx.RecordCapabilityCall(string(name), "validation_error")
		return &contractx.ValidationFailure{Capability: name, Detail: "unknown capability"}
	}
	url := a.client.BaseURL + endpoint

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(args).
		Post(endpoint)
	if err != nil {
		a.log.Warn().Err(err).Str("capability", string(name)).Str("endpoint", url).Msg("capability transport failure")
		metricsx.RecordCapabilityCall(string(name), "transport_error")
		return &contractx.TransportError{Endpoint: url, RequestBody: args, Detail: err.Error()}
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		a.log.Warn().Int("status", code).Str("capability", string(name)).Str("endpoint", url).Msg("capability upstream error")
		metricsx.RecordCapabilityCall(string(name), "upstream_error")
		return &contractx.UpstreamError{
			StatusCode:  code,
			Endpoint:    url,
			RequestBody: args,
			Detail:      decodeDetail(resp.Body()),
		}
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		metricsx.RecordCapabilityCall(string(name), "transport_error")
		return &contractx.TransportError{Endpoint: url, RequestBody: args, Detail: "invalid JSON response: " + err.Error()}
	}

	metricsx.RecordCapabilityCall(string(name), "success")
	return contractx.Success{Payload: payload}
}

// decodeDetail keeps a JSON error body structured and falls back to text.
func decodeDetail(body []byte) any {
	if len(body) == 0 {
		return ""
	}
	var detail any
	if err := json.Unmarshal(body, &detail); err == nil {
		return detail
	}
	return string(body)
}
