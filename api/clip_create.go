package api

import (
	"errors"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type clipCreateBody struct {
	Content           string `json:"content"`
	IsPublic          bool   `json:"isPublic"`
	SentToReceiveCode string `json:"sentToReceiveCode"`
}

func (a *API) ClipCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	a.sweepExpired(c)

	var data clipCreateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	clip, err := a.Clipboards.Create(c.Request.Context(), data.Content, data.IsPublic, data.SentToReceiveCode)
	if err != nil {
		if errors.Is(err, service.ErrIDsExhausted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "No free clipboard IDs available, try again later",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create clipboard", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clipboard": clip,
	})
}
