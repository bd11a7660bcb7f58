// Package openrouter builds chat clients for an OpenAI compatible endpoint.
// Both the eino chat model and the raw SDK client share one HTTP client, so
// timeouts and attribution headers are applied the same way.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	refererHeader = "HTTP-Referer"
	titleHeader   = "X-Title"
)

var ErrModelRequired = errors.New("openrouter: model is required")

// Config is one resolved model role. agent/llm derives it per role from the
// OPENROUTER_* variables.
type Config struct {
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken *int
	Temperature        float32
	Timeout            time.Duration
	SiteURL            string
	SiteName           string
}

func (c Config) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

func (c Config) attribution() map[string]string {
	headers := map[string]string{}
	if v := strings.TrimSpace(c.SiteURL); v != "" {
		headers[refererHeader] = v
	}
	if v := strings.TrimSpace(c.SiteName); v != "" {
		headers[titleHeader] = v
	}
	return headers
}

func (c Config) httpClient() *http.Client {
	return &http.Client{
		Timeout:   c.Timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: c.attribution()},
	}
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}

// NewChatModel builds the tool calling chat model used by the classifier
// graph and the booking agent.
func NewChatModel(ctx context.Context, cfg Config) (model.ToolCallingChatModel, error) {
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, ErrModelRequired
	}

	temperature := cfg.Temperature
	m, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		BaseURL:     cfg.baseURL(),
		APIKey:      strings.TrimSpace(cfg.APIKey),
		Model:       modelName,
		MaxTokens:   cfg.MaxCompletionToken,
		Temperature: &temperature,
		HTTPClient:  cfg.httpClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates an OpenAI SDK client for the strict structured output
// path. SDK retries are disabled; the configured timeout bounds each call.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
		option.WithHTTPClient(cfg.httpClient()),
	}
	if base := cfg.baseURL(); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
