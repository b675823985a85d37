package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/newsletter"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type NewsletterHandler struct {
	svc *newsletter.Service
}

func NewNewsletterHandler(s *newsletter.Service) *NewsletterHandler {
	return &NewsletterHandler{svc: s}
}

func (h *NewsletterHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/newsletter")
	g.POST("/subscribe", h.Subscribe)
	g.GET("/confirm/:token", h.Confirm)
	g.POST("/unsubscribe/:token", h.Unsubscribe)
	g.GET("/subscribers", middleware.RequireRole(models.RoleAdmin), h.Subscribers)
}

var outcomeMessages = map[newsletter.Outcome]string{
	newsletter.Created:           "subscription created, check your inbox to confirm",
	newsletter.Reissued:          "confirmation sent again",
	newsletter.Resubscribed:      "subscription renewed, check your inbox to confirm",
	newsletter.AlreadySubscribed: "already subscribed",
}

func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var in newsletter.SubscribeInput
	if !bind(c, &in) {
		return
	}
	sub, outcome, err := h.svc.Subscribe(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if outcome == newsletter.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": outcomeMessages[outcome], "outcome": outcome, "subscriber": sub})
}

func (h *NewsletterHandler) Confirm(c *gin.Context) {
	sub, err := h.svc.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription confirmed", "subscriber": sub})
}

func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	sub, err := h.svc.Unsubscribe(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "subscriber": sub})
}

// Subscribers lists signups for admins; ?status= and ?edition= narrow it.
func (h *NewsletterHandler) Subscribers(c *gin.Context) {
	f := newsletter.Filter{Status: models.SubscriberStatus(c.Query("status"))}
	if raw := c.Query("edition"); raw != "" {
		e, ok := models.ParseEdition(raw)
		if !ok {
			fail(c, apperr.BadRequest("unknown edition"))
			return
		}
		f.Edition = e
	}
	p := pagination.FromGin(c)
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, items, p, total)
}
