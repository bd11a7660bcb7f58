package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	routeragent "github.com/tanpawarit/flightdesk/agent/agents/router"
)

const maxAgentBody = 64 << 10

// invokeAgent answers 200 for every body the router sees; the router turns
// failures into a fallback response. Oversized bodies are rejected with 413
// before routing.
func (h *handler) invokeAgent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAgentBody)
	body, err := c.GetRawData()
	if err != nil {
		abortWithDetail(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	resp := h.router.Route(c.Request.Context(), routeragent.AdaptRaw(body))
	c.JSON(http.StatusOK, gin.H{"output": resp})
}
