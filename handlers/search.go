package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type SearchHandler struct {
	svc *search.Service
}

func NewSearchHandler(s *search.Service) *SearchHandler {
	return &SearchHandler{svc: s}
}

func (h *SearchHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
}

// Search handles GET /search?q=&edition=&lang=&range=&from=&to=&section=&page=&limit=
func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.svc.Search(c.Request.Context(), search.Request{
		Q:       c.Query("q"),
		Edition: c.Query("edition"),
		Lang:    c.Query("lang"),
		Range:   c.Query("range"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Section: c.Query("section"),
		Page:    pagination.FromGin(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
