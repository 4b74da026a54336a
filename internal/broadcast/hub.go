// internal/broadcast/hub.go
package broadcast

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Handle is an opaque subscriber endpoint. The transport layer owns the
// concrete type; the hub only needs a way to hand it one event.
type Handle interface {
	// Deliver pushes a single event to the subscriber. A non-nil error marks
	// the delivery as failed for this handle only.
	Deliver(event any) error
}

// Hub is a named-topic fan-out with no knowledge of what the events mean.
// Events published sequentially by one caller reach every subscriber of a
// topic in that same order; a failed delivery to one handle never aborts the
// rest of the fan-out.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[Handle]struct{}
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[Handle]struct{}),
		logger: logger,
	}
}

// Subscribe registers sub for events published to topic.
func (h *Hub) Subscribe(topic string, sub Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[Handle]struct{})
	}
	h.topics[topic][sub] = struct{}{}
}

// Unsubscribe removes sub from topic. Removing an absent handle is a no-op.
func (h *Hub) Unsubscribe(topic string, sub Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.topics[topic], sub)
	if len(h.topics[topic]) == 0 {
		delete(h.topics, topic)
	}
}

// Publish delivers event to every handle currently subscribed to topic.
// Handles that subscribe after the subscriber set is snapshotted do not
// receive the event; there is no queuing and no retry.
func (h *Hub) Publish(topic string, event any) {
	h.mu.RLock()
	subs := make([]Handle, 0, len(h.topics[topic]))
	for sub := range h.topics[topic] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	h.deliver(topic, subs, event)
}

// PublishAll delivers event to every subscriber in every topic.
func (h *Hub) PublishAll(event any) {
	h.mu.RLock()
	byTopic := make(map[string][]Handle, len(h.topics))
	for topic, set := range h.topics {
		subs := make([]Handle, 0, len(set))
		for sub := range set {
			subs = append(subs, sub)
		}
		byTopic[topic] = subs
	}
	h.mu.RUnlock()

	for topic, subs := range byTopic {
		h.deliver(topic, subs, event)
	}
}

// Subscribers returns the current subscriber count for topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) deliver(topic string, subs []Handle, event any) {
	for _, sub := range subs {
		if err := sub.Deliver(event); err != nil && h.logger != nil {
			h.logger.Warnf("broadcast: delivery on topic %q failed: %v", topic, err)
		}
	}
}
