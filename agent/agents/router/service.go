package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	nodex "github.com/tanpawarit/flightdesk/agent/nodes/router"
	"github.com/tanpawarit/flightdesk/agent/policy"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
	metricsx "github.com/tanpawarit/flightdesk/pkg/metrics"
)

type Config struct {
	IntentThreshold float64
}

// Router is the single entry point: classify, apply policy, branch, and
// normalize. Route always produces a FinalResponse.
type Router struct {
	classifier contractx.Classifier
	agent      contractx.Agent
	threshold  float64
	log        zerolog.Logger

	graphRunner compose.Runnable[nodex.GraphInput, *nodex.GraphState]
}

func New(classifier contractx.Classifier, agent contractx.Agent, cfg Config) (*Router, error) {
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if agent == nil {
		return nil, errors.New("agent is required")
	}

	r := &Router{
		classifier: classifier,
		agent:      agent,
		threshold:  cfg.IntentThreshold,
		log:        logx.WithComponent("router"),
	}

	graphRunner, err := r.compileRouteGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

func (r *Router) Route(ctx context.Context, input string) (resp contractx.FinalResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("router panicked")
			resp = r.fallback(fmt.Sprintf("router panic: %v", rec))
		}
	}()

	out, err := r.graphRunner.Invoke(ctx, nodex.GraphInput{Input: input})
	if err != nil {
		r.log.Error().Err(err).Msg("router graph failed")
		return r.fallback(err.Error())
	}

	resp = out.Response()
	metricsx.RecordRoute(routeLabel(out), string(resp.Context.Intent))
	return resp
}

// routeLabel is the single metric label for a finished request. A dispatch
// that ended in the fallback counts only as fallback.
func routeLabel(out *nodex.GraphState) string {
	if out.Error != "" {
		return "fallback"
	}
	return string(out.Branch)
}

func (r *Router) fallback(reason string) contractx.FinalResponse {
	c := policy.Fallback(r.threshold)
	state := &nodex.GraphState{Context: &c}
	nodex.ApplyFallback(state, reason)
	metricsx.RecordRoute("fallback", string(c.Intent))
	return state.Response()
}
