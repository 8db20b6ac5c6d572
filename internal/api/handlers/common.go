package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	if msg := utils.Message(err); msg != "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": http.StatusText(status)})
}
