package api

import (
	"errors"
	"net/http"
	"time"

	"clipsync/internal/service"
	"clipsync/model"
	"clipsync/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type deviceRegisterBody struct {
	ReceiveCode      string                    `json:"receiveCode"`
	DeviceName       string                    `json:"deviceName"`
	PushSubscription *service.PushSubscription `json:"pushSubscription"`
}

// deviceView is what goes over the wire for a device. The subscription
// keys stay on the server, only the hasPush flag leaves.
type deviceView struct {
	ReceiveCode string    `json:"receiveCode"`
	DeviceName  string    `json:"deviceName"`
	HasPush     bool      `json:"hasPush"`
	LastSeen    time.Time `json:"lastSeen"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newDeviceView(d *model.Device) deviceView {
	return deviceView{
		ReceiveCode: d.ReceiveCode,
		DeviceName:  d.DeviceName,
		HasPush:     d.HasPush(),
		LastSeen:    d.LastSeen,
		CreatedAt:   d.CreatedAt,
	}
}

func (a *API) DeviceRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data deviceRegisterBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	device, err := a.Devices.Register(c.Request.Context(), data.ReceiveCode, data.DeviceName, data.PushSubscription)
	if err != nil {
		switch {
		case errors.Is(err, validators.ErrNoCode),
			errors.Is(err, validators.ErrCodeTooShort),
			errors.Is(err, validators.ErrCodeTooLong):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrCodeTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "This receive code is already taken. Please choose another",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to register device", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device": newDeviceView(device),
	})
}
