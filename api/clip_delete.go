package api

import (
	"errors"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ClipDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	id := c.Param("id")

	err := a.Clipboards.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Clipboard not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete clipboard", zap.String("id", id), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Clipboard deleted",
	})
}
