package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	openrouterx "github.com/tanpawarit/flightdesk/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel       string        `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	AgentModel            string        `envconfig:"AGENT_MODEL" split_words:"true"`
	ClassifierTemperature float32       `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	AgentTemperature      float32       `envconfig:"AGENT_TEMPERATURE" split_words:"true" default:"-1"`
	ClassifierTimeout     time.Duration `envconfig:"CLASSIFIER_TIMEOUT" split_words:"true" default:"20s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	timeout := c.Timeout

	switch agentType {
	case contractx.AgentTypeClassifier:
		if v := strings.TrimSpace(c.ClassifierModel); v != "" {
			modelName = v
		}
		if c.ClassifierTemperature >= 0 {
			temp = c.ClassifierTemperature
		}
		if c.ClassifierTimeout > 0 {
			timeout = c.ClassifierTimeout
		}
	case contractx.AgentTypeBooking:
		if v := strings.TrimSpace(c.AgentModel); v != "" {
			modelName = v
		}
		if c.AgentTemperature >= 0 {
			temp = c.AgentTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
