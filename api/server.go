// Package api exposes the agent and the backend action routes over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	"github.com/tanpawarit/flightdesk/pkg/amadeus"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
	"github.com/tanpawarit/flightdesk/pkg/offercache"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

type Config struct {
	Addr            string        `split_words:"true" default:":8000"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	RateLimitPerMin int           `split_words:"true" default:"60"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	// TrustedProxies lists the proxies whose X-Forwarded-For is honored.
	// Empty means the peer address is the client IP.
	TrustedProxies []string `split_words:"true"`
}

// AgentRouter is the conversational entry point.
type AgentRouter interface {
	Route(ctx context.Context, input string) contractx.FinalResponse
}

// Provider is the travel provider used by the action routes.
type Provider interface {
	SearchOffers(ctx context.Context, params amadeus.SearchParams) (map[string]any, error)
	PriceOffer(ctx context.Context, body any) (map[string]any, error)
	CreateOrder(ctx context.Context, body any) (map[string]any, error)
}

type Deps struct {
	Router   AgentRouter
	Provider Provider
	Offers   offercache.Store
	Trips    trip.Store
}

func (d Deps) validate() error {
	switch {
	case d.Router == nil:
		return errors.New("api: agent router is required")
	case d.Provider == nil:
		return errors.New("api: provider is required")
	case d.Offers == nil:
		return errors.New("api: offer cache is required")
	case d.Trips == nil:
		return errors.New("api: trip store is required")
	}
	return nil
}

type Server struct {
	cfg    Config
	engine *gin.Engine
	log    zerolog.Logger
}

func New(cfg Config, deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		log: logx.WithComponent("api"),
	}
	engine, err := s.buildEngine(deps)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) buildEngine(deps Deps) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("api: trusted proxies: %w", err)
	}
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggerMiddleware(s.log))
	engine.Use(CORSMiddleware(s.cfg.CORSOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handler{
		router:   deps.Router,
		provider: deps.Provider,
		offers:   deps.Offers,
		trips:    deps.Trips,
		log:      s.log,
	}

	// Only the public agent entry point is rate limited. The action routes
	// are also called by the agent's own capability adapter over loopback.
	agent := engine.Group("/agent", RateLimitMiddleware(s.cfg.RateLimitPerMin))
	{
		agent.POST("/invoke", h.invokeAgent)
	}

	am := engine.Group("/amadeus")
	{
		am.GET("/health", h.healthCheck("amadeus", deps.Offers))
		am.POST("/search", h.search)
		am.POST("/price", h.price)
		am.POST("/create-order", h.createOrder)
	}

	trips := engine.Group("/trips")
	{
		trips.GET("/health", h.healthCheck("trips", deps.Trips))
		trips.POST("/save", h.saveTrip)
		trips.GET("/list", h.listTrips)
		trips.DELETE("/:id", h.deleteTrip)
	}

	engine.GET("/reservations", h.listReservations)

	return engine, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info().Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
