// internal/game/autoplay.go
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AutoPlay chains rounds on an engine with a fixed inter-round delay. At most
// one loop runs per engine; Stop cancels at the loop's next suspension point,
// which is either the countdown tick inside the running round or the
// inter-round sleep. Points already awarded are never reverted.
type AutoPlay struct {
	engine *Engine
	logger *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	delay  time.Duration
}

func NewAutoPlay(engine *Engine, logger *logrus.Logger) *AutoPlay {
	return &AutoPlay{engine: engine, logger: logger}
}

// Start launches the loop. Calling Start while a loop is running is a no-op.
func (a *AutoPlay) Start(delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.delay = delay
	a.done = make(chan struct{})
	a.logger.Infof("autoplay %s: started with %s delay", a.engine.Name(), delay)
	go a.loop(ctx, delay, a.done)
}

// Stop cancels the loop and waits for it to exit. A round in flight is closed
// and scored by the engine when the cancellation reaches its countdown.
func (a *AutoPlay) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	delay := a.delay
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.logger.Infof("autoplay %s: stopped", a.engine.Name())
	a.engine.publish(EventAutoPlayStatus, AutoPlayStatusPayload{
		Running:      false,
		DelaySeconds: int(delay / time.Second),
	})
}

// Delay returns the inter-round delay of the current or most recent loop.
func (a *AutoPlay) Delay() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.delay
}

// Running reports whether the loop is active.
func (a *AutoPlay) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *AutoPlay) loop(ctx context.Context, delay time.Duration, done chan struct{}) {
	defer close(done)
	for {
		err := a.engine.StartRound(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case errors.Is(err, ErrRoundActive):
			// A manually started round holds the slot; wait out the delay
			// and try again.
			a.logger.Debugf("autoplay %s: round slot busy, retrying after delay", a.engine.Name())
		case err != nil:
			a.logger.Warnf("autoplay %s: round failed: %v", a.engine.Name(), err)
		}

		a.engine.publish(EventAutoPlayStatus, AutoPlayStatusPayload{
			Running:      true,
			DelaySeconds: int(delay / time.Second),
		})

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
