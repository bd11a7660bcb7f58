package routernode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	"github.com/tanpawarit/flightdesk/agent/policy"
)

// Classify populates the policy context. A failed classification is treated
// as out-of-scope with confidence 0 and never fails the graph.
func Classify(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
	threshold float64,
	log zerolog.Logger,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	c, err := classifier.Classify(ctx, in.Input)
	if err != nil {
		log.Warn().Err(err).Msg("classification failed, treating input as out of scope")
		fallback := policy.Fallback(threshold)
		in.Context = &fallback
		return in, nil
	}

	decided := policy.Evaluate(c, threshold)
	in.Context = &decided
	return in, nil
}
