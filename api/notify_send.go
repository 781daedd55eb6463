package api

import (
	"errors"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type notifySendBody struct {
	ClipboardID string `json:"clipboardId"`
	ReceiveCode string `json:"receiveCode"`
}

func (a *API) NotifySend(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data notifySendBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.ClipboardID == "" || data.ReceiveCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Clipboard ID and receive code are required",
			"requestID": requestID,
		})
		return
	}

	delivered, err := a.Notifier.Notify(c.Request.Context(), data.ClipboardID, data.ReceiveCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// The wrapped error says whether the device or the clipboard
			// was missing
			c.JSON(http.StatusNotFound, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send notification", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	msg := "Notification sent"
	if !delivered {
		msg = "Notification skipped, the clipboard is waiting in the inbox"
	}

	c.JSON(http.StatusOK, gin.H{
		"delivered": delivered,
		"message":   msg,
	})
}
