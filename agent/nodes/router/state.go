package routernode

import (
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

type GraphInput struct {
	Input string
}

// GraphState is the request state carried between router nodes. Context is
// nil until classification has run.
type GraphState struct {
	Input   string
	Context *contractx.PolicyContext
	Branch  Branch

	Output      string
	Error       string
	Suggestions []string
	Outcome     *contractx.AgentOutcome
}

// Response normalizes the state into the egress shape. Output and context
// are always present.
func (s *GraphState) Response() contractx.FinalResponse {
	if s == nil {
		return contractx.FinalResponse{Context: emptyContext()}
	}

	ctx := emptyContext()
	if s.Context != nil {
		ctx = *s.Context
		if ctx.Suggestions == nil {
			ctx.Suggestions = []string{}
		}
	}

	return contractx.FinalResponse{
		Output:      s.Output,
		Context:     ctx,
		Error:       s.Error,
		Suggestions: s.Suggestions,
	}
}

func emptyContext() contractx.PolicyContext {
	return contractx.PolicyContext{Suggestions: []string{}}
}

func AdaptInput(in GraphInput) (*GraphState, error) {
	return &GraphState{Input: in.Input}, nil
}
