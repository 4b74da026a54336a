// internal/chat/client_test.go
package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ryojun/typestorm/internal/game"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestClientForwardsComments(t *testing.T) {
	frames := []string{
		`{"user_id":"u1","nickname":"Alice","comment":"apple"}`,
		`{"nickname":"ghost","comment":"no id, dropped"}`,
		`not json`,
		`{"user_id":"u2","nickname":"Bob","comment":"/monster horns"}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "done")
		for _, f := range frames {
			if err := c.Write(r.Context(), websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		// Hold the socket open until the client hangs up.
		_, _, _ = c.Read(r.Context())
	}))
	defer srv.Close()

	var mu sync.Mutex
	var got []game.Comment
	route := func(c game.Comment) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	}

	connected := make(chan struct{})
	client := NewClient(srv.URL, testLogger(), route, func() {
		select {
		case <-connected:
		default:
			close(connected)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Run(ctx) }()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("client never connected to the feed")
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, game.Comment{UserID: "u1", Nickname: "Alice", Text: "apple"}, got[0])
	require.Equal(t, game.Comment{UserID: "u2", Nickname: "Bob", Text: "/monster horns"}, got[1])
}

func TestClientStopsOnContextCancel(t *testing.T) {
	// No server listening; the client should keep retrying until canceled.
	client := NewClient("ws://127.0.0.1:1/feed", testLogger(), func(game.Comment) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
