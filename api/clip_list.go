package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultListLimit = 50

func (a *API) ClipList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	a.sweepExpired(c)

	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultListLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	publicStr := c.DefaultQuery("public", "false")
	publicOnly, err := strconv.ParseBool(publicStr)
	if err != nil {
		publicOnly = false
	}

	clips, err := a.Clipboards.ListRecent(c.Request.Context(), limit, publicOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list clipboards", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clipboards": clips,
		"count":      len(clips),
	})
}
