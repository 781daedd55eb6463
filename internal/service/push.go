package service

import (
	"context"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/viper"
)

// PushSender delivers an opaque payload to one subscription and reports
// the push service's status code.
type PushSender interface {
	Send(ctx context.Context, sub *PushSubscription, payload []byte) (int, error)
}

// WebPushSender sends Web Push messages signed with the configured VAPID
// key pair.
type WebPushSender struct {
	subscriber string
	publicKey  string
	privateKey string
}

// NewWebPushSender returns (nil, nil) when no VAPID keys are configured;
// the notifier treats a missing sender as "push skipped", not an error.
func NewWebPushSender() (*WebPushSender, error) {
	pub := viper.GetString("push.vapid_public_key")
	priv := viper.GetString("push.vapid_private_key")

	if pub == "" || priv == "" {
		return nil, nil
	}

	sub := viper.GetString("push.subscriber")
	if sub == "" {
		return nil, fmt.Errorf("push.subscriber is required when VAPID keys are set")
	}

	return &WebPushSender{
		subscriber: sub,
		publicKey:  pub,
		privateKey: priv,
	}, nil
}

func (w *WebPushSender) Send(ctx context.Context, sub *PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             60,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
