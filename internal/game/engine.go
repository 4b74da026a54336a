// internal/game/engine.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrRoundActive is returned when a round already holds the slot.
	// Starting a round is an atomic reservation, not a read-then-act check.
	ErrRoundActive = errors.New("a round is already active")

	// ErrUnknownMode rejects a mode switch without touching the current mode.
	ErrUnknownMode = errors.New("unknown game mode")
)

const maxStrikes = 3

// round is the state for one timed scoring window.
type round struct {
	mode      Mode
	display   string
	target    string
	startedAt time.Time
	budget    int
	winners   []winner
	active    bool
}

// winner records when a participant matched the target, in seconds since
// round start. The slice is append-ordered and only ranked at round close.
type winner struct {
	id      string
	elapsed float64
}

// Engine owns one typing-challenge session: the active round, the
// leaderboard, and the mode/timing policy. Everything behind mu is mutated
// from two triggers, the countdown goroutine and arriving chat comments, so
// the mutex is the only serialization point; answer submissions interleave
// freely between countdown ticks.
type Engine struct {
	name   string
	b      Broadcaster
	logger *logrus.Logger

	mu    sync.Mutex
	board *Leaderboard
	mode  Mode
	round *round

	// speed_up timing persists and shrinks across rounds within a session.
	speedUpSeconds int
	speedUpStart   int
	speedUpMin     int
	speedUpDec     int

	rng          *rand.Rand
	tickInterval time.Duration
	now          func() time.Time
}

func NewEngine(name string, b Broadcaster, logger *logrus.Logger) *Engine {
	return &Engine{
		name:           name,
		b:              b,
		logger:         logger,
		board:          NewLeaderboard(),
		mode:           ModeClassic,
		speedUpSeconds: SpeedUpStartSeconds,
		speedUpStart:   SpeedUpStartSeconds,
		speedUpMin:     SpeedUpMinSeconds,
		speedUpDec:     SpeedUpDecrementSeconds,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		tickInterval:   time.Second,
		now:            time.Now,
	}
}

func (e *Engine) Name() string { return e.name }

// Active reports whether a round is currently accepting answers.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round != nil && e.round.active
}

// Mode returns the mode the next round will use.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches the word pool for subsequent rounds. An unknown mode is
// rejected and the previous mode stays in effect; the active round, if any,
// keeps the mode it started with.
func (e *Engine) SetMode(m Mode) error {
	if !ValidMode(m) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
	e.logger.Infof("game %s: mode set to %s", e.name, m)
	return nil
}

// ConfigureSpeedUp overrides the speed_up timing policy and resets the
// evolving budget to start. Word-pool changes elsewhere never touch this
// state.
func (e *Engine) ConfigureSpeedUp(start, min, decrement int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if start > 0 {
		e.speedUpStart = start
		e.speedUpSeconds = start
	}
	if min > 0 {
		e.speedUpMin = min
	}
	if decrement > 0 {
		e.speedUpDec = decrement
	}
}

// SpeedUpPolicy reports the configured speed_up timing so it can be
// persisted alongside the mode.
func (e *Engine) SpeedUpPolicy() (start, min, decrement int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speedUpStart, e.speedUpMin, e.speedUpDec
}

// StartRound reserves the round slot, announces the word, runs the per-second
// countdown and closes the round. It blocks for the full time budget;
// SubmitAnswer may be called concurrently at any point in between ticks.
// Returns ErrRoundActive when another round already holds the slot, and the
// context error when ctx is canceled mid-countdown (the round is still closed
// and scored in that case, so the reservation is always released).
func (e *Engine) StartRound(ctx context.Context) error {
	e.mu.Lock()
	if e.round != nil && e.round.active {
		e.mu.Unlock()
		return ErrRoundActive
	}

	mode := e.mode
	budget := DefaultRoundSeconds
	if mode == ModeSpeedUp {
		budget = e.speedUpSeconds
	}

	display, target := generateWord(e.rng, mode)
	e.board.ResetStrikes()
	e.round = &round{
		mode:      mode,
		display:   display,
		target:    target,
		startedAt: e.now(),
		budget:    budget,
		active:    true,
	}
	e.mu.Unlock()

	e.logger.Infof("game %s: new %s round, display %q, %ds", e.name, mode, display, budget)
	e.publish(EventNewRound, NewRoundPayload{Mode: modeTitle(mode), Word: display, TimeBudget: budget})

	for i := budget; i >= 1; i-- {
		e.publish(EventTimerUpdate, TimerPayload{SecondsRemaining: i})
		select {
		case <-ctx.Done():
			e.closeRound()
			return ctx.Err()
		case <-time.After(e.tickInterval):
		}
	}

	e.closeRound()
	return nil
}

// SubmitAnswer evaluates one chat comment against the active round. Stale,
// duplicate and penalized submissions are dropped silently; they are normal
// input, not errors.
func (e *Engine) SubmitAnswer(userID, displayName, text string) {
	e.mu.Lock()
	r := e.round
	if r == nil || !r.active {
		e.mu.Unlock()
		return
	}

	p := e.board.UpsertName(userID, displayName)
	if p.Penalized {
		e.mu.Unlock()
		return
	}
	for _, w := range r.winners {
		if w.id == userID {
			e.mu.Unlock()
			return
		}
	}

	if strings.EqualFold(strings.TrimSpace(text), r.target) {
		elapsed := e.now().Sub(r.startedAt).Seconds()
		r.winners = append(r.winners, winner{id: userID, elapsed: elapsed})
		e.mu.Unlock()
		e.publish(EventCorrectAnswer, CorrectAnswerPayload{
			DisplayName: displayName,
			Elapsed:     math.Round(elapsed*100) / 100,
		})
		return
	}

	strikes := e.board.IncrementStrikes(userID)
	penalized := strikes >= maxStrikes
	if penalized {
		e.board.SetPenalized(userID, true)
	}
	e.mu.Unlock()

	e.publish(EventWrongAnswer, WrongAnswerPayload{DisplayName: displayName, Strikes: strikes})
	if penalized {
		e.publish(EventUserPenalized, PenalizedPayload{DisplayName: displayName})
	}
}

// closeRound ends the active round, ranks the winners by recorded elapsed
// time and settles scores: 3 points to the single fastest, 1 to everyone
// else. Penalties are lifted and the speed_up budget shrinks regardless of
// whether anyone won, so a penalty never outlives the round it was earned in.
func (e *Engine) closeRound() {
	e.mu.Lock()
	r := e.round
	if r == nil || !r.active {
		e.mu.Unlock()
		return
	}
	r.active = false

	// Arrival order is a scheduling artifact; the ranking comes from the
	// recorded elapsed times alone.
	sort.SliceStable(r.winners, func(i, j int) bool {
		return r.winners[i].elapsed < r.winners[j].elapsed
	})

	ranked := make([]RoundWinner, 0, len(r.winners))
	for i, w := range r.winners {
		points := 1
		if i == 0 {
			points = 3
		}
		e.board.AddScore(w.id, points)
		ranked = append(ranked, RoundWinner{DisplayName: e.board.Get(w.id).DisplayName, Points: points})
	}

	var standings []Standing
	if len(ranked) > 0 {
		standings = e.board.Snapshot()
	}

	e.board.ClearPenalties()

	if r.mode == ModeSpeedUp {
		next := e.speedUpSeconds - e.speedUpDec
		if next < e.speedUpMin {
			next = e.speedUpMin
		}
		e.speedUpSeconds = next
	}
	e.mu.Unlock()

	e.publish(EventRoundOver, RoundOverPayload{Winners: ranked})
	if standings != nil {
		e.publish(EventLeaderboardUpdate, LeaderboardPayload{Leaderboard: standings})
	}
	e.logger.Infof("game %s: round over, %d winner(s)", e.name, len(ranked))
}

// ResetLeaderboard clears every cumulative record and tells the overlays.
func (e *Engine) ResetLeaderboard() {
	e.mu.Lock()
	e.board.Reset()
	e.mu.Unlock()
	e.logger.Infof("game %s: leaderboard reset", e.name)
	e.publish(EventLeaderboardUpdate, LeaderboardPayload{Leaderboard: []Standing{}})
}

// HandleComment implements Instance; every chat comment is a candidate answer.
func (e *Engine) HandleComment(c Comment) {
	e.SubmitAnswer(c.UserID, c.Nickname, c.Text)
}

// LeaderboardData implements Instance, feeding overlay bootstrap and the
// HTTP API.
func (e *Engine) LeaderboardData() []Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Snapshot()
}

func (e *Engine) publish(t EventType, payload any) {
	e.b.Publish(e.name, Event{Type: t, Payload: payload})
}
