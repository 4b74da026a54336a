// internal/broadcast/hub_test.go
package broadcast

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorderHandle collects delivered events; fail makes every delivery error.
type recorderHandle struct {
	mu     sync.Mutex
	events []any
	fail   bool
}

func (r *recorderHandle) Deliver(event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("delivery refused")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recorderHandle) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHub(logger)
}

func TestHubTopicIsolation(t *testing.T) {
	h := newTestHub()
	a := &recorderHandle{}
	b := &recorderHandle{}
	h.Subscribe("game_a", a)
	h.Subscribe("game_b", b)

	h.Publish("game_a", "only-a")

	assert.Equal(t, []any{"only-a"}, a.all())
	assert.Empty(t, b.all())
}

func TestHubUnsubscribe(t *testing.T) {
	h := newTestHub()
	sub := &recorderHandle{}
	h.Subscribe("game", sub)
	require.Equal(t, 1, h.Subscribers("game"))

	h.Unsubscribe("game", sub)
	assert.Equal(t, 0, h.Subscribers("game"))

	h.Publish("game", "late")
	assert.Empty(t, sub.all())

	// Removing again is harmless.
	h.Unsubscribe("game", sub)
}

func TestHubPublishAll(t *testing.T) {
	h := newTestHub()
	a := &recorderHandle{}
	b := &recorderHandle{}
	h.Subscribe("game_a", a)
	h.Subscribe("game_b", b)

	h.PublishAll("everyone")

	assert.Equal(t, []any{"everyone"}, a.all())
	assert.Equal(t, []any{"everyone"}, b.all())
}

func TestHubFailedDeliveryDoesNotAbortFanout(t *testing.T) {
	h := newTestHub()
	bad := &recorderHandle{fail: true}
	good := &recorderHandle{}
	h.Subscribe("game", bad)
	h.Subscribe("game", good)

	h.Publish("game", "ev")

	assert.Equal(t, []any{"ev"}, good.all())
	assert.Equal(t, 2, h.Subscribers("game"), "failed handles stay subscribed")
}

func TestHubPreservesPublishOrder(t *testing.T) {
	h := newTestHub()
	sub := &recorderHandle{}
	h.Subscribe("game", sub)

	want := make([]any, 0, 100)
	for i := 0; i < 100; i++ {
		h.Publish("game", i)
		want = append(want, i)
	}

	assert.Equal(t, want, sub.all())
}

func TestHubPublishEmptyTopic(t *testing.T) {
	h := newTestHub()
	h.Publish("nobody", "ev") // must not panic
	assert.Equal(t, 0, h.Subscribers("nobody"))
}
