package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

// fail writes err as {"error", "code", "details"}. Causes of 5xx errors are
// logged and never sent to the client.
func fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), ae)
	}
	body := gin.H{"error": ae.Message, "code": ae.Code}
	if ae.Payload != nil {
		body["details"] = ae.Payload
	}
	c.AbortWithStatusJSON(ae.Status, body)
}

// bind decodes the JSON body into v and answers 400 on failure.
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, apperr.BadRequest("invalid request body: "+err.Error()))
		return false
	}
	return true
}

type listResponse struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

func list(c *gin.Context, data interface{}, p pagination.Params, total int) {
	c.JSON(http.StatusOK, listResponse{Data: data, Meta: pagination.NewMeta(p, total)})
}

var principal = middleware.PrincipalFrom
