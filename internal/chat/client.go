// internal/chat/client.go
package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ryojun/typestorm/internal/game"
)

const (
	dialTimeout    = 10 * time.Second
	initialBackoff = 2 * time.Second
	maxBackoff     = time.Minute
)

// Client consumes a live-chat relay feed over WebSocket and forwards each
// comment to the game layer. The relay sends one JSON text frame per comment:
// {"user_id": ..., "nickname": ..., "comment": ...}.
//
// The feed carries no ordering guarantee across participants; the client just
// forwards frames in the order they arrive.
type Client struct {
	url       string
	logger    *logrus.Logger
	route     func(game.Comment)
	onConnect func()
}

// NewClient builds a feed client. onConnect fires on every successful
// (re)connection; it may clear ephemeral per-session state but must never
// touch cumulative scores.
func NewClient(url string, logger *logrus.Logger, route func(game.Comment), onConnect func()) *Client {
	return &Client{url: url, logger: logger, route: route, onConnect: onConnect}
}

// Run connects and reads comment frames until ctx is canceled, reconnecting
// with capped exponential backoff after any transport failure.
func (c *Client) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		connected, err := c.readFeed(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = initialBackoff
		}
		c.logger.Warnf("chat: feed disconnected: %v; reconnecting in %s", err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// readFeed dials the relay and pumps frames until the connection drops.
// connected reports whether the dial succeeded, so Run can reset its backoff.
func (c *Client) readFeed(ctx context.Context) (connected bool, err error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusInternalError, "feed reader exiting")

	c.logger.Infof("chat: connected to feed %s", c.url)
	if c.onConnect != nil {
		c.onConnect()
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return true, err
		}
		if typ != websocket.MessageText {
			continue
		}
		var comment game.Comment
		if err := json.Unmarshal(data, &comment); err != nil {
			c.logger.Warnf("chat: malformed comment frame: %v", err)
			continue
		}
		if comment.UserID == "" {
			continue
		}
		c.route(comment)
	}
}
