package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/ads"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type AdHandler struct {
	svc *ads.Service
}

func NewAdHandler(s *ads.Service) *AdHandler {
	return &AdHandler{svc: s}
}

func (h *AdHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/ads")
	g.GET("/serve", h.Serve)
	g.GET("/:id/click", h.Click)

	staff := g.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	staff.GET("", h.List)
	staff.GET("/:id", h.Get)
	staff.POST("", h.Create)
	staff.PUT("/:id", h.Update)
	staff.DELETE("/:id", h.Delete)
}

// Serve answers 204 when no ad is available for the slot.
func (h *AdHandler) Serve(c *gin.Context) {
	edition := models.EditionOrDefault(c.Query("edition"))
	ad, err := h.svc.Serve(c.Request.Context(), models.Placement(c.Query("placement")), edition)
	if err != nil {
		fail(c, err)
		return
	}
	if ad == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *AdHandler) Click(c *gin.Context) {
	target, err := h.svc.Click(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *AdHandler) List(c *gin.Context) {
	f := ads.Filter{Placement: models.Placement(c.Query("placement"))}
	if raw := c.Query("edition"); raw != "" {
		e, ok := models.ParseEdition(raw)
		if !ok {
			fail(c, apperr.BadRequest("unknown edition"))
			return
		}
		f.Edition = e
	}
	switch c.Query("active") {
	case "true":
		on := true
		f.Active = &on
	case "false":
		off := false
		f.Active = &off
	}
	p := pagination.FromGin(c)
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, items, p, total)
}

func (h *AdHandler) Get(c *gin.Context) {
	ad, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *AdHandler) Create(c *gin.Context) {
	var in ads.Input
	if !bind(c, &in) {
		return
	}
	ad, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

func (h *AdHandler) Update(c *gin.Context) {
	var in ads.Patch
	if !bind(c, &in) {
		return
	}
	ad, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *AdHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
