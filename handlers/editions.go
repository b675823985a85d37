package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/models"
)

func listEditions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": models.Editions()})
}
