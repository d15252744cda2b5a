package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/iudanet/feedhub/pkg/api"
)

// PostEvent is a decoded "posts" notification.
// Post is set for create and update, PostID for every action.
type PostEvent struct {
	Post   *api.Post
	Action string
	PostID string
}

// socketURL maps the server base URL to the websocket endpoint
func (c *Client) socketURL() (string, error) {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/socket", nil
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/socket", nil
	default:
		return "", fmt.Errorf("unsupported server url %q", c.baseURL)
	}
}

// Watch подписывается на уведомления о постах и вызывает fn для каждого
// события, пока ctx не отменен или соединение не закрыто.
func (c *Client) Watch(ctx context.Context, fn func(PostEvent)) error {
	socketURL, err := c.socketURL()
	if err != nil {
		return err
	}

	cfg, err := websocket.NewConfig(socketURL, c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to create websocket config: %w", err)
	}

	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", socketURL, err)
	}

	// Закрытие соединения прерывает блокирующий Receive
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer func() {
		stop()
		_ = ws.Close()
	}()

	for {
		var frame string
		if err := websocket.Message.Receive(ws, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notification stream closed: %w", err)
		}

		event, ok, err := decodeEvent([]byte(frame))
		if err != nil {
			return err
		}
		if ok {
			fn(event)
		}
	}
}

// decodeEvent parses a frame; ok is false for topics other than posts
func decodeEvent(frame []byte) (PostEvent, bool, error) {
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Event string          `json:"event"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return PostEvent{}, false, fmt.Errorf("failed to decode event: %w", err)
	}
	if envelope.Event != api.TopicPosts {
		return PostEvent{}, false, nil
	}

	var payload struct {
		Post   json.RawMessage `json:"post"`
		Action string          `json:"action"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return PostEvent{}, false, fmt.Errorf("failed to decode post event: %w", err)
	}

	event := PostEvent{Action: payload.Action}
	if payload.Action == api.ActionDelete {
		if err := json.Unmarshal(payload.Post, &event.PostID); err != nil {
			return PostEvent{}, false, fmt.Errorf("failed to decode deleted post id: %w", err)
		}
		return event, true, nil
	}

	var post api.Post
	if err := json.Unmarshal(payload.Post, &post); err != nil {
		return PostEvent{}, false, fmt.Errorf("failed to decode post: %w", err)
	}
	event.Post = &post
	event.PostID = post.ID
	return event, true, nil
}
