package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/improve"
	"github.com/newsdesk/newsdesk/pkg/middleware"
)

type ImproveHandler struct {
	client *improve.Client
}

func NewImproveHandler(c *improve.Client) *ImproveHandler {
	return &ImproveHandler{client: c}
}

// Register mounts POST /improve behind auth and the given limiter.
func (h *ImproveHandler) Register(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	chain := []gin.HandlerFunc{middleware.RequireAuth()}
	if limiter != nil {
		chain = append(chain, limiter)
	}
	rg.POST("/improve", append(chain, h.Improve)...)
	rg.GET("/improve/modes", h.Modes)
}

func (h *ImproveHandler) Improve(c *gin.Context) {
	var in improve.Request
	if !bind(c, &in) {
		return
	}
	out, err := h.client.Improve(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ImproveHandler) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modes": improve.Modes(), "default": improve.DefaultMode, "enabled": h.client.Configured()})
}
