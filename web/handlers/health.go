package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "RedPen"

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "name": serviceName})
}
