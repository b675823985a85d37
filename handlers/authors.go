package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type AuthorHandler struct {
	svc *authors.Service
}

func NewAuthorHandler(s *authors.Service) *AuthorHandler {
	return &AuthorHandler{svc: s}
}

func (h *AuthorHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/author")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)

	auth := g.Group("", middleware.RequireAuth())
	auth.PUT("/:id", h.UpdateProfile)

	staff := g.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	staff.GET("", h.List)
	staff.POST("/:id/review", h.Review)

	admin := g.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.PUT("/:id/role", h.SetRole)
	admin.DELETE("/:id", h.Delete)
}

// Create is public signup; the account starts pending review.
func (h *AuthorHandler) Create(c *gin.Context) {
	var in authors.RegisterInput
	if !bind(c, &in) {
		return
	}
	a, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Get returns the full record to staff and the author themself, the public
// profile to everyone else.
func (h *AuthorHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if p := principal(c); p.IsStaff() || (p != nil && p.ID == a.ID) {
		c.JSON(http.StatusOK, a)
		return
	}
	if a.Status != models.AuthorApproved {
		fail(c, apperr.NotFound("author"))
		return
	}
	c.JSON(http.StatusOK, a.Profile())
}

func (h *AuthorHandler) List(c *gin.Context) {
	f := authors.Filter{Status: models.AuthorStatus(c.Query("status")), Role: models.Role(c.Query("role"))}
	if f.Role != "" && !models.ValidRole(f.Role) {
		fail(c, apperr.BadRequest("unknown role"))
		return
	}
	p := pagination.FromGin(c)
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, items, p, total)
}

func (h *AuthorHandler) UpdateProfile(c *gin.Context) {
	var in authors.ProfileInput
	if !bind(c, &in) {
		return
	}
	a, err := h.svc.UpdateProfile(c.Request.Context(), principal(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
}

func (h *AuthorHandler) Review(c *gin.Context) {
	var in reviewRequest
	if !bind(c, &in) {
		return
	}
	a, err := h.svc.Review(c.Request.Context(), principal(c), c.Param("id"), authors.Decision(in.Decision), in.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AuthorHandler) SetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	a, err := h.svc.SetRole(c.Request.Context(), principal(c), c.Param("id"), models.Role(in.Role))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AuthorHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
