package api

import (
	"errors"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type clipUpdateBody struct {
	Content string `json:"content"`
}

func (a *API) ClipUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	id := c.Param("id")

	var data clipUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err := a.Clipboards.UpdateContent(c.Request.Context(), id, data.Content)
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

		zap.L().Error("Failed to update clipboard", zap.String("id", id), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Clipboard updated",
	})
}
