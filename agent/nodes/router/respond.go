package routernode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

const (
	OutOfScopeMessage = "I'm set up to help with flights. Try one of these:"
	SmallTalkMessage  = "Hi! Want me to find flights AMM → DOH for you?"
	FallbackMessage   = "I couldn't extract enough info to search flights. " +
		"Please provide origin (IATA), destination (IATA), and departure date (YYYY-MM-DD)."

	maxErrorLength = 200
)

var fallbackSuggestions = []string{
	"Search AMM → DOH on 2025-10-10",
	"Search AMM → DXB on 2025-11-05 (return 2025-11-10)",
}

func FallbackSuggestions() []string {
	out := make([]string, len(fallbackSuggestions))
	copy(out, fallbackSuggestions)
	return out
}

func RespondOutOfScope(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Output = OutOfScopeMessage
	return in, nil
}

func RespondSmallTalk(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Output = SmallTalkMessage
	return in, nil
}

// Dispatch runs the agent. An aborted loop or a panic inside the agent turns
// into the fallback response; the policy context is kept.
func Dispatch(ctx context.Context, in *GraphState, agent contractx.Agent, log zerolog.Logger) (out *GraphState, err error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("agent panicked")
			ApplyFallback(in, fmt.Sprintf("agent panic: %v", r))
			out, err = in, nil
		}
	}()

	outcome := agent.Run(ctx, in.Input)
	in.Outcome = &outcome

	if outcome.Kind != contractx.OutcomeDone {
		log.Warn().Str("reason", outcome.Reason).Int("steps", outcome.Steps).Msg("agent aborted")
		ApplyFallback(in, outcome.Reason)
		return in, nil
	}

	in.Output = outcome.Answer
	return in, nil
}

func ApplyFallback(in *GraphState, reason string) {
	in.Output = FallbackMessage
	in.Error = truncate(strings.TrimSpace(reason), maxErrorLength)
	in.Suggestions = FallbackSuggestions()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
