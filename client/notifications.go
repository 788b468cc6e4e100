package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"backoffice/models"
	"backoffice/services/notification"

	"go.uber.org/zap"
)

// Backend is implemented on *Client: a notification.Channel can run directly
// against the API.
var _ notification.Backend = (*Client)(nil)

func (c *Client) List(ctx context.Context) ([]models.Notification, error) {
	q := url.Values{"limit": {strconv.Itoa(notification.DefaultListLimit)}}
	var items []models.Notification
	if err := c.get(ctx, "/notifications", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var body models.UnreadCount
	if err := c.get(ctx, "/notifications/unread-count", nil, &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil)
}

// CreateResult is the outcome of CreateNotification. The server either
// delivers the draft straight away (Notification is set) or queues it
// (TaskID is set).
type CreateResult struct {
	Notification *models.Notification
	TaskID       string
}

func (c *Client) CreateNotification(ctx context.Context, draft models.NotificationDraft) (*CreateResult, error) {
	var body struct {
		models.Notification
		TaskID string `json:"taskId"`
	}
	if err := c.do(ctx, http.MethodPost, "/notifications", draft, &body); err != nil {
		return nil, err
	}
	if body.TaskID != "" {
		return &CreateResult{TaskID: body.TaskID}, nil
	}
	return &CreateResult{Notification: &body.Notification}, nil
}

// Subscribe opens the notification event stream and returns once the server
// has confirmed the subscription. Events are delivered to onEvent from a
// single goroutine until Unsubscribe is called or ctx ends.
func (c *Client) Subscribe(ctx context.Context, onEvent func(models.Notification)) (notification.Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	req, err := c.newRequest(streamCtx, http.MethodGet, "/notifications/stream", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("opening notification stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, newAPIError(resp, http.MethodGet, "/notifications/stream", body)
	}

	events := newEventReader(resp.Body)
	first, err := events.Next()
	if err == nil && first.Name != "ready" {
		err = fmt.Errorf("unexpected first event %q", first.Name)
	}
	if err != nil {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("notification stream handshake: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer resp.Body.Close()
		for {
			ev, err := events.Next()
			if err != nil {
				if streamCtx.Err() == nil {
					c.logger.Warn("notification stream ended", zap.Error(err))
				}
				return
			}
			if ev.Name != "notification" {
				continue
			}
			var n models.Notification
			if err := json.Unmarshal(ev.Data, &n); err != nil {
				c.logger.Warn("skipping malformed notification event", zap.Error(err))
				continue
			}
			onEvent(n)
		}
	}()

	return notification.SubscriptionFunc(func() {
		cancel()
		<-done
	}), nil
}
