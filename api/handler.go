package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/flightdesk/pkg/offercache"
	"github.com/tanpawarit/flightdesk/pkg/trip"
)

const healthTimeout = 2 * time.Second

type handler struct {
	router   AgentRouter
	provider Provider
	offers   offercache.Store
	trips    trip.Store
	log      zerolog.Logger
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthCheck reports name as ready, pinging dep first when it supports it.
// The in-memory offer cache has nothing to ping and is always ready.
func (h *handler) healthCheck(name string, dep any) gin.HandlerFunc {
	p, canPing := dep.(pinger)
	return func(c *gin.Context) {
		if canPing {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{name: "unavailable", "detail": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{name: "ready"})
	}
}
