package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	toolx "github.com/tanpawarit/flightdesk/agent/tool"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
	metricsx "github.com/tanpawarit/flightdesk/pkg/metrics"
)

const DefaultMaxIterations = 15

type Config struct {
	MaxIterations int
}

// Agent runs a bounded decide/invoke loop over the booking capabilities.
//
// Trust boundary: the system prompt forbids calling a capability with an
// origin, destination or date the user never gave. Local validation only
// catches missing or malformed fields, so fabricated but well-formed values
// are not detected here.
type Agent struct {
	model         einomodel.ToolCallingChatModel
	systemPrompt  string
	executor      toolx.Executor
	maxIterations int
	log           zerolog.Logger
}

var _ contractx.Agent = (*Agent)(nil)

func New(
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	adapter contractx.CapabilityAdapter,
	cfg Config,
) (*Agent, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if adapter == nil {
		return nil, fmt.Errorf("%w: capability adapter is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: booking", contractx.ErrPromptMissing)
	}

	infos, executor := toolx.BuildForAgent(contractx.AgentTypeBooking, adapter)
	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, contractx.AgentTypeBooking, err)
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	return &Agent{
		model:         toolModel,
		systemPrompt:  systemPrompt,
		executor:      executor,
		maxIterations: maxIterations,
		log:           logx.WithComponent("booking_agent"),
	}, nil
}

func (a *Agent) Run(ctx context.Context, input string) contractx.AgentOutcome {
	outcome := a.run(ctx, input)
	metricsx.RecordAgentOutcome(string(outcome.Kind), outcome.Steps)
	return outcome
}

func (a *Agent) run(ctx context.Context, input string) contractx.AgentOutcome {
	messages := []*schema.Message{
		schema.SystemMessage(a.systemPrompt),
		schema.UserMessage(input),
	}

	var calls []contractx.CapabilityCall
	var lastFailure error

	for step := 1; step <= a.maxIterations; step++ {
		if err := ctx.Err(); err != nil {
			return contractx.Aborted(withLastFailure(fmt.Sprintf("%v: %v", contractx.ErrLoopAborted, err), lastFailure), step-1, calls)
		}

		msg, err := a.model.Generate(ctx, messages)
		if err != nil {
			a.log.Warn().Err(err).Int("step", step).Msg("booking model invoke failed")
			return contractx.Aborted(withLastFailure(fmt.Sprintf("%v: %v", contractx.ErrModelInvoke, err), lastFailure), step, calls)
		}
		if msg == nil {
			return contractx.Aborted(fmt.Sprintf("%v: empty model response", contractx.ErrSchemaViolation), step, calls)
		}

		if len(msg.ToolCalls) == 0 {
			answer := strings.TrimSpace(msg.Content)
			if answer == "" {
				return contractx.Aborted(withLastFailure(fmt.Sprintf("%v: empty final answer", contractx.ErrSchemaViolation), lastFailure), step, calls)
			}
			a.log.Debug().Int("step", step).Int("calls", len(calls)).Msg("booking loop done")
			return contractx.Done(answer, step, calls)
		}

		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			call := a.executor(ctx, tc.Function.Name, tc.Function.Arguments)
			calls = append(calls, call)

			if failure, ok := call.Result.(error); ok {
				lastFailure = failure
				a.log.Info().Str("capability", string(call.Name)).Err(failure).Int("step", step).Msg("capability call failed")
			}
			messages = append(messages, schema.ToolMessage(observationContent(call.Result), tc.ID))
		}
	}

	a.log.Warn().Int("max_iterations", a.maxIterations).Msg("booking loop exhausted iteration budget")
	return contractx.Aborted(
		withLastFailure(fmt.Sprintf("%v: no final answer after %d steps", contractx.ErrLoopAborted, a.maxIterations), lastFailure),
		a.maxIterations,
		calls,
	)
}

func observationContent(result contractx.CapabilityResult) string {
	if result == nil {
		return `{"error":"EMPTY_RESULT"}`
	}
	raw, err := json.Marshal(result.Observation())
	if err != nil {
		return fmt.Sprintf(`{"error":"UNSERIALIZABLE_RESULT","detail":%q}`, err.Error())
	}
	return string(raw)
}

func withLastFailure(reason string, last error) string {
	if last == nil {
		return reason
	}
	return reason + "; last capability error: " + last.Error()
}
