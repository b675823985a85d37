package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/pkg/middleware"
)

// SectionHandler exposes the section builder to editors.
type SectionHandler struct {
	svc *sections.Service
}

func NewSectionHandler(s *sections.Service) *SectionHandler {
	return &SectionHandler{svc: s}
}

func (h *SectionHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/section")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	staff := g.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	staff.POST("", h.Create)
	staff.PUT("/:id", h.Update)
	staff.DELETE("/:id", h.Delete)
	staff.POST("/:id/posts", h.AddPost)
	staff.DELETE("/:id/posts/:postId", h.RemovePost)
	staff.POST("/:id/move", h.MovePost)
	staff.PUT("/:id/order", h.Reorder)
	staff.PUT("/:id/highlight", h.Highlight)
}

func (h *SectionHandler) List(c *gin.Context) {
	edition, err := editionQuery(c)
	if err != nil {
		fail(c, err)
		return
	}
	f := sections.Filter{Edition: edition, PageID: c.Query("page"), Unassigned: c.Query("unassigned") == "true"}
	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *SectionHandler) Get(c *gin.Context) {
	sec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *SectionHandler) Create(c *gin.Context) {
	var in sections.Input
	if !bind(c, &in) {
		return
	}
	sec, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sec)
}

func (h *SectionHandler) Update(c *gin.Context) {
	var in sections.Patch
	if !bind(c, &in) {
		return
	}
	sec, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *SectionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPost body: {"postId": "...", "index": 0}; index is optional and
// defaults to appending.
func (h *SectionHandler) AddPost(c *gin.Context) {
	var in struct {
		PostID string `json:"postId" binding:"required"`
		Index  *int   `json:"index"`
	}
	if !bind(c, &in) {
		return
	}
	index := -1
	if in.Index != nil {
		index = *in.Index
	}
	sec, err := h.svc.AddPost(c.Request.Context(), c.Param("id"), in.PostID, index)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *SectionHandler) RemovePost(c *gin.Context) {
	sec, err := h.svc.RemovePost(c.Request.Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

// MovePost is the drag-and-drop endpoint: {"from": 3, "to": 0}.
func (h *SectionHandler) MovePost(c *gin.Context) {
	var in struct {
		From *int `json:"from" binding:"required"`
		To   *int `json:"to" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	sec, err := h.svc.MovePost(c.Request.Context(), c.Param("id"), *in.From, *in.To)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *SectionHandler) Reorder(c *gin.Context) {
	var in struct {
		PostIDs []string `json:"postIds" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	sec, err := h.svc.ReorderPosts(c.Request.Context(), c.Param("id"), in.PostIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}

func (h *SectionHandler) Highlight(c *gin.Context) {
	var in struct {
		Highlight *bool `json:"highlight" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	sec, err := h.svc.SetHighlight(c.Request.Context(), c.Param("id"), *in.Highlight)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sec)
}
