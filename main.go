package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	bookingagent "github.com/tanpawarit/flightdesk/agent/agents/booking"
	"github.com/tanpawarit/flightdesk/agent/agents/intent"
	routeragent "github.com/tanpawarit/flightdesk/agent/agents/router"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	"github.com/tanpawarit/flightdesk/agent/llm"
	"github.com/tanpawarit/flightdesk/agent/prompt"
	toolx "github.com/tanpawarit/flightdesk/agent/tool"
	"github.com/tanpawarit/flightdesk/api"
	"github.com/tanpawarit/flightdesk/pkg/amadeus"
	configx "github.com/tanpawarit/flightdesk/pkg/config"
	_ "github.com/tanpawarit/flightdesk/pkg/logger/autoload"
	"github.com/tanpawarit/flightdesk/pkg/offercache"
	openrouterx "github.com/tanpawarit/flightdesk/pkg/openrouter"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

type AgentConfig struct {
	IntentThreshold  float64 `split_words:"true" default:"0.70"`
	MaxIterations    int     `split_words:"true" default:"15"`
	StructuredOutput bool    `split_words:"true" default:"false"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agentCfg := configx.MustNew[AgentConfig]("AGENT")
	adapterCfg := configx.MustNew[toolx.AdapterConfig]("AGENT")
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	amadeusCfg := configx.MustNew[amadeus.Config]("AMADEUS")
	cacheCfg := configx.MustNew[offercache.Config]("")
	tripCfg := configx.MustNew[trip.Config]("")
	httpCfg := configx.MustNew[api.Config]("HTTP")

	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}
	if agentCfg.IntentThreshold < 0 || agentCfg.IntentThreshold > 1 {
		log.Warn().Float64("threshold", agentCfg.IntentThreshold).Msg("intent threshold outside [0,1]")
	}

	prompts := prompt.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid prompts")
	}

	classifier, err := buildClassifier(ctx, *agentCfg, *llmCfg, prompts.Classifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build intent classifier")
	}

	bookingCfg := llmCfg.OpenRouterFor(contractx.AgentTypeBooking)
	bookingModel, err := openrouterx.NewChatModel(ctx, bookingCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent model")
	}
	agent, err := bookingagent.New(
		bookingModel,
		prompts.Booking,
		toolx.NewHTTPAdapter(*adapterCfg),
		bookingagent.Config{MaxIterations: agentCfg.MaxIterations},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build booking agent")
	}

	router, err := routeragent.New(classifier, agent, routeragent.Config{IntentThreshold: agentCfg.IntentThreshold})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	provider, err := amadeus.New(*amadeusCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build amadeus client")
	}

	offers, err := offercache.New(*cacheCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build offer cache")
	}

	trips, err := trip.Open(*tripCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer trips.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = trips.Migrate(migrateCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create tables")
	}

	srv, err := api.New(*httpCfg, api.Deps{
		Router:   router,
		Provider: provider,
		Offers:   offers,
		Trips:    trips,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http server")
	}

	log.Info().
		Float64("threshold", agentCfg.IntentThreshold).
		Int("max_iterations", agentCfg.MaxIterations).
		Bool("structured_output", agentCfg.StructuredOutput).
		Msg("flightdesk starting")

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func buildClassifier(ctx context.Context, agentCfg AgentConfig, llmCfg llm.Config, systemPrompt string) (*intent.Classifier, error) {
	orCfg := llmCfg.OpenRouterFor(contractx.AgentTypeClassifier)

	var (
		predictor intent.Predictor
		err       error
	)
	if agentCfg.StructuredOutput {
		predictor, err = intent.NewSchemaPredictor(openrouterx.NewClient(orCfg), orCfg.Model, systemPrompt)
	} else {
		chatModel, mErr := openrouterx.NewChatModel(ctx, orCfg)
		if mErr != nil {
			return nil, mErr
		}
		predictor, err = intent.NewGraphPredictor(ctx, chatModel, systemPrompt)
	}
	if err != nil {
		return nil, err
	}

	return intent.New(predictor, intent.Config{Timeout: orCfg.Timeout})
}
