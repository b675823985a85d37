package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type PostHandler struct {
	svc *posts.Service
}

func NewPostHandler(s *posts.Service) *PostHandler {
	return &PostHandler{svc: s}
}

func (h *PostHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/post")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/slug/:edition/:slug", h.GetBySlug)

	auth := g.Group("", middleware.RequireAuth())
	auth.POST("", h.Create)
	auth.PUT("/:id", h.Update)
	auth.DELETE("/:id", h.Delete)
	auth.POST("/:id/publish", h.Publish)
	auth.POST("/:id/unpublish", h.Unpublish)
	auth.POST("/:id/archive", h.Archive)
}

// editionQuery resolves ?edition=; empty means every edition.
func editionQuery(c *gin.Context) (models.Edition, error) {
	raw := c.Query("edition")
	if raw == "" {
		return "", nil
	}
	e, ok := models.ParseEdition(raw)
	if !ok {
		return "", apperr.BadRequest("unknown edition")
	}
	return e, nil
}

func postFilter(c *gin.Context) (posts.Filter, error) {
	edition, err := editionQuery(c)
	if err != nil {
		return posts.Filter{}, err
	}
	f := posts.Filter{
		Edition:   edition,
		SectionID: c.Query("section"),
		AuthorID:  c.Query("author"),
		Status:    models.PostStatus(c.Query("status")),
		Tag:       c.Query("tag"),
	}
	if raw := c.Query("lang"); raw != "" {
		l, ok := models.ParseLanguage(raw)
		if !ok {
			return f, apperr.BadRequest("unknown language")
		}
		f.Language = l
	}
	switch f.Status {
	case "", models.PostDraft, models.PostPublished, models.PostArchived:
	default:
		return f, apperr.BadRequest("unknown status")
	}
	return f, nil
}

func (h *PostHandler) List(c *gin.Context) {
	f, err := postFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	p := pagination.FromGin(c)
	items, total, err := h.svc.List(c.Request.Context(), principal(c), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, items, p, total)
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetBySlug serves the public article and counts the view.
func (h *PostHandler) GetBySlug(c *gin.Context) {
	edition, ok := models.ParseEdition(c.Param("edition"))
	if !ok {
		fail(c, apperr.NotFound("post"))
		return
	}
	p, err := h.svc.GetPublished(c.Request.Context(), edition, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in posts.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), principal(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) Update(c *gin.Context) {
	var in posts.Patch
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), principal(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Publish(c *gin.Context) {
	p, err := h.svc.Publish(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Unpublish(c *gin.Context) {
	p, err := h.svc.Unpublish(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Archive(c *gin.Context) {
	p, err := h.svc.Archive(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
