package notification

import (
	"context"
	"fmt"

	"backoffice/models"

	"firebase.google.com/go/v4/messaging"
)

// Pusher delivers a notification to admin devices.
type Pusher interface {
	Push(ctx context.Context, n models.Notification) error
}

// messageSender is the part of *messaging.Client the pusher uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPusher sends every notification to an FCM topic that admin devices
// subscribe to.
type FCMPusher struct {
	client messageSender
	topic  string
}

func NewFCMPusher(client *messaging.Client, topic string) *FCMPusher {
	return &FCMPusher{client: client, topic: topic}
}

func (p *FCMPusher) Push(ctx context.Context, n models.Notification) error {
	if _, err := p.client.Send(ctx, buildMessage(p.topic, n)); err != nil {
		return fmt.Errorf("fcm: failed to send notification %s: %w", n.ID, err)
	}
	return nil
}

func buildMessage(topic string, n models.Notification) *messaging.Message {
	priority := "normal"
	if n.Type == models.NotificationError || n.Type == models.NotificationWarning {
		priority = "high"
	}
	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: map[string]string{
			"id":   n.ID,
			"type": string(n.Type),
			"role": "admin",
		},
		Android: &messaging.AndroidConfig{
			Priority: priority,
			Notification: &messaging.AndroidNotification{
				ChannelID: "console_" + string(n.Type),
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}
