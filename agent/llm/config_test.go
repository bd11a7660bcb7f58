package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

func TestOpenRouterForRoleOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                " key ",
		Model:                 "openai/gpt-4o-mini",
		Temperature:           0.5,
		Timeout:               30 * time.Second,
		ClassifierModel:       "openai/gpt-4.1-nano",
		ClassifierTemperature: 0,
		ClassifierTimeout:     10 * time.Second,
		AgentTemperature:      -1,
	}

	classifier := cfg.OpenRouterFor(contractx.AgentTypeClassifier)
	if classifier.Model != "openai/gpt-4.1-nano" {
		t.Fatalf("unexpected classifier model: %s", classifier.Model)
	}
	if classifier.Temperature != 0 {
		t.Fatalf("unexpected classifier temperature: %v", classifier.Temperature)
	}
	if classifier.Timeout != 10*time.Second {
		t.Fatalf("unexpected classifier timeout: %v", classifier.Timeout)
	}
	if classifier.APIKey != "key" {
		t.Fatalf("api key not trimmed: %q", classifier.APIKey)
	}

	agent := cfg.OpenRouterFor(contractx.AgentTypeBooking)
	if agent.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected agent model: %s", agent.Model)
	}
	if agent.Temperature != 0.5 {
		t.Fatalf("agent should inherit default temperature, got %v", agent.Temperature)
	}
	if agent.Timeout != 30*time.Second {
		t.Fatalf("unexpected agent timeout: %v", agent.Timeout)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing key, got %v", err)
	}
	if err := (Config{APIKey: "k"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing model, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
