package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) DeviceUnregister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	code := c.Param("code")

	removed, err := a.Devices.Unregister(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to unregister device", zap.String("code", code), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Unregistering a code that was never registered is still a success
	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
		"message": "Device unregistered",
	})
}
