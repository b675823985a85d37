package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/pages"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/pkg/middleware"
)

type PageHandler struct {
	svc      *pages.Service
	sections *sections.Service
}

func NewPageHandler(p *pages.Service, s *sections.Service) *PageHandler {
	return &PageHandler{svc: p, sections: s}
}

func (h *PageHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/page")
	g.GET("", h.List)
	g.GET("/:edition/:slug", h.Compose)

	staff := g.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	staff.POST("", h.Create)
	staff.PUT("/:id", h.Update)
	staff.DELETE("/:id", h.Delete)
	staff.PUT("/:id/sections", h.ReorderSections)
}

func (h *PageHandler) List(c *gin.Context) {
	edition, err := editionQuery(c)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), edition)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Compose returns the page with its sections and post cards.
func (h *PageHandler) Compose(c *gin.Context) {
	edition, ok := models.ParseEdition(c.Param("edition"))
	if !ok {
		fail(c, apperr.NotFound("page"))
		return
	}
	out, err := h.svc.Compose(c.Request.Context(), edition, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *PageHandler) Create(c *gin.Context) {
	var in pages.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PageHandler) Update(c *gin.Context) {
	var in pages.Patch
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PageHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderSections body: {"sectionIds": [...]} in the new order.
func (h *PageHandler) ReorderSections(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.Get(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	var in struct {
		SectionIDs []string `json:"sectionIds" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	items, err := h.sections.ReorderSections(c.Request.Context(), id, in.SectionIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
