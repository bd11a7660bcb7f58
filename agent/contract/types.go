package contract

import (
	"fmt"
	"strings"
)

type AgentType string

const (
	AgentTypeClassifier AgentType = "classifier"
	AgentTypeBooking    AgentType = "booking"
)

type Intent string

const (
	IntentFlightSearch      Intent = "FLIGHT_SEARCH"
	IntentPriceVerify       Intent = "PRICE_VERIFY"
	IntentCreateOrder       Intent = "CREATE_ORDER"
	IntentSaveTrip          Intent = "SAVE_TRIP"
	IntentListTrips         Intent = "LIST_TRIPS"
	IntentCancelReservation Intent = "CANCEL_RESERVATION"
	IntentHelp              Intent = "HELP"
	IntentSmallTalk         Intent = "SMALL_TALK"
	IntentOutOfScope        Intent = "OUT_OF_SCOPE"
)

// AllIntents lists the closed label set in prompt order.
var AllIntents = []Intent{
	IntentFlightSearch,
	IntentPriceVerify,
	IntentCreateOrder,
	IntentSaveTrip,
	IntentListTrips,
	IntentCancelReservation,
	IntentHelp,
	IntentSmallTalk,
	IntentOutOfScope,
}

func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// IntentClassification is the result of classifying one input.
type IntentClassification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func (c IntentClassification) Validate() error {
	if !c.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent=%q", ErrMalformedClassification, c.Intent)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence=%v outside [0,1]", ErrMalformedClassification, c.Confidence)
	}
	return nil
}

// PolicyContext is the routing decision derived from a classification.
type PolicyContext struct {
	Intent      Intent   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	OutOfScope  bool     `json:"outOfScope"`
	SmallTalk   bool     `json:"smallTalk"`
	Suggestions []string `json:"suggestions"`
}

// FinalResponse is the egress shape of one routed request.
type FinalResponse struct {
	Output      string        `json:"output"`
	Context     PolicyContext `json:"context"`
	Error       string        `json:"error,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

type CapabilityName string

const (
	CapabilitySearchOffers CapabilityName = "search_offers"
	CapabilityPriceOffer   CapabilityName = "price_offer"
	CapabilityCreateOrder  CapabilityName = "create_order"
)

func ParseCapabilityName(raw string) (CapabilityName, error) {
	switch name := CapabilityName(strings.TrimSpace(raw)); name {
	case CapabilitySearchOffers, CapabilityPriceOffer, CapabilityCreateOrder:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, raw)
	}
}

// CapabilityResult is one of Success, UpstreamError, TransportError or
// ValidationFailure. Failure variants also implement error.
type CapabilityResult interface {
	capabilityResult()
	// Observation is the JSON value fed back to the model.
	Observation() any
}

type Success struct {
	Payload any
}

func (Success) capabilityResult() {}

func (s Success) Observation() any {
	return s.Payload
}

type UpstreamError struct {
	StatusCode  int
	Endpoint    string
	RequestBody any
	Detail      any
}

func (*UpstreamError) capabilityResult() {}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream http error: status=%d endpoint=%s detail=%v", e.StatusCode, e.Endpoint, e.Detail)
}

func (e *UpstreamError) Observation() any {
	return map[string]any{
		"error":    "UPSTREAM_HTTP_ERROR",
		"status":   e.StatusCode,
		"endpoint": e.Endpoint,
		"body":     e.RequestBody,
		"detail":   e.Detail,
	}
}

type TransportError struct {
	Endpoint    string
	RequestBody any
	Detail      string
}

func (*TransportError) capabilityResult() {}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: endpoint=%s detail=%s", e.Endpoint, e.Detail)
}

func (e *TransportError) Observation() any {
	return map[string]any{
		"error":    "NETWORK_ERROR",
		"endpoint": e.Endpoint,
		"body":     e.RequestBody,
		"detail":   e.Detail,
	}
}

// ValidationFailure is produced locally, before any adapter call.
type ValidationFailure struct {
	Capability CapabilityName
	Detail     string
}

func (*ValidationFailure) capabilityResult() {}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Capability, e.Detail)
}

func (e *ValidationFailure) Observation() any {
	return map[string]any{
		"error":      "VALIDATION_ERROR",
		"capability": e.Capability,
		"detail":     e.Detail,
	}
}

// CapabilityCall records one Invoking step of the agent loop.
type CapabilityCall struct {
	Name   CapabilityName   `json:"name"`
	Args   any              `json:"args,omitempty"`
	Result CapabilityResult `json:"-"`
}

type OutcomeKind string

const (
	OutcomeDone    OutcomeKind = "done"
	OutcomeAborted OutcomeKind = "aborted"
)

// AgentOutcome is Ok(answer) or Aborted(reason).
type AgentOutcome struct {
	Kind   OutcomeKind
	Answer string
	Reason string
	Steps  int
	Calls  []CapabilityCall
}

func Done(answer string, steps int, calls []CapabilityCall) AgentOutcome {
	return AgentOutcome{Kind: OutcomeDone, Answer: answer, Steps: steps, Calls: calls}
}

func Aborted(reason string, steps int, calls []CapabilityCall) AgentOutcome {
	return AgentOutcome{Kind: OutcomeAborted, Reason: reason, Steps: steps, Calls: calls}
}
