package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const previewRunes = 80

// Notifier tells a registered device that a clipboard was sent to its
// receive code. Delivery is best-effort: a device without a subscription,
// a missing transport or a rejecting push service all end up as
// delivered=false, never as an error. Only an unknown device or clipboard
// is an error the caller sees.
type Notifier struct {
	Devices    *DeviceRegistry
	Clipboards *ClipboardStore
	Push       PushSender
}

func NewNotifier(devices *DeviceRegistry, clipboards *ClipboardStore, push PushSender) *Notifier {
	return &Notifier{
		Devices:    devices,
		Clipboards: clipboards,
		Push:       push,
	}
}

// notificationPayload is the fixed contract with the service worker: it
// renders title/body and opens data.url on click.
type notificationPayload struct {
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Data  notificationData `json:"data"`
}

type notificationData struct {
	ClipboardID string `json:"clipboardId"`
	URL         string `json:"url"`
}

// Notify dispatches a push about clipboardID to the device behind
// receiveCode.
func (n *Notifier) Notify(ctx context.Context, clipboardID, receiveCode string) (bool, error) {
	device, err := n.Devices.Lookup(ctx, receiveCode)
	if err != nil {
		return false, fmt.Errorf("device with receive code %q: %w", receiveCode, err)
	}

	clip, err := n.Clipboards.Fetch(ctx, clipboardID)
	if err != nil {
		return false, fmt.Errorf("clipboard %q: %w", clipboardID, err)
	}

	sub := Subscription(device)
	if sub == nil || n.Push == nil {
		// The clipboard is still waiting in the inbox, nothing failed
		return false, nil
	}

	body := preview(clip.Content)
	if body == "" && len(clip.Files) > 0 {
		body = fmt.Sprintf("%d file(s)", len(clip.Files))
	}
	if body == "" {
		body = "New clipboard"
	}

	payload, err := json.Marshal(notificationPayload{
		Title: "New clipboard received",
		Body:  body,
		Data: notificationData{
			ClipboardID: clip.ID,
			URL:         "/clipboard/" + clip.ID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to build notification payload, %w", err)
	}

	status, err := n.Push.Send(ctx, sub, payload)
	if err != nil {
		zap.L().Warn("Push delivery failed",
			zap.String("receive_code", device.ReceiveCode),
			zap.Error(err))
		return false, nil
	}

	if status == http.StatusNotFound || status == http.StatusGone {
		// Stale endpoint, drop the subscription so we stop trying
		if err := n.Devices.ClearSubscription(ctx, device.ReceiveCode); err != nil {
			zap.L().Warn("Failed to clear stale push subscription",
				zap.String("receive_code", device.ReceiveCode),
				zap.Error(err))
		}
		return false, nil
	}

	if status < 200 || status > 299 {
		zap.L().Warn("Push service rejected notification",
			zap.String("receive_code", device.ReceiveCode),
			zap.Int("status", status))
		return false, nil
	}

	return true, nil
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewRunes {
		return content
	}
	return string(r[:previewRunes])
}
