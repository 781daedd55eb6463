package api

import (
	"errors"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type deviceUpdateBody struct {
	DeviceName       string                    `json:"deviceName"`
	PushSubscription *service.PushSubscription `json:"pushSubscription"`
}

func (a *API) DeviceUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	code := c.Param("code")

	var data deviceUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	device, err := a.Devices.Update(c.Request.Context(), code, data.DeviceName, data.PushSubscription)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Device not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update device", zap.String("code", code), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device": newDeviceView(device),
	})
}
