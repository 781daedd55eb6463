package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) DeviceInbox(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	code := c.Param("code")

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

	clips, err := a.Clipboards.ListInbox(c.Request.Context(), code, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list inbox", zap.String("code", code), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clipboards": clips,
		"count":      len(clips),
	})
}
