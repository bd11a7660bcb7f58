package contract

import "context"

// Classifier maps free text to one closed-set intent. Implementations must
// return ErrMalformedClassification when the prediction breaks the schema.
type Classifier interface {
	Classify(ctx context.Context, text string) (IntentClassification, error)
}

// Agent runs the capability-calling loop for in-scope input. It never fails:
// every failure mode is reported through AgentOutcome.
type Agent interface {
	Run(ctx context.Context, input string) AgentOutcome
}

// CapabilityAdapter forwards a validated argument record to the backend.
// Invoke never returns a Go error; failures come back as UpstreamError or
// TransportError values.
type CapabilityAdapter interface {
	Invoke(ctx context.Context, name CapabilityName, args any) CapabilityResult
}
