// internal/game/leaderboard.go
package game

import "sort"

// Participant is one chat identity's cumulative record for the session.
// Score only ever grows; strikes and the penalty flag are round-scoped.
type Participant struct {
	ID          string `json:"-"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Strikes     int    `json:"strikes"`
	Penalized   bool   `json:"penalized"`
}

// Standing is the public leaderboard row carried by leaderboard_update.
type Standing struct {
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// Leaderboard maps participant identities to their records. It does no
// locking of its own: every call site is serialized behind the engine mutex.
type Leaderboard struct {
	records map[string]*Participant
	order   []string // first-seen order; keeps Snapshot ties stable
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{records: make(map[string]*Participant)}
}

// Get returns the record for id, creating an empty one on first access.
func (l *Leaderboard) Get(id string) *Participant {
	p, ok := l.records[id]
	if !ok {
		p = &Participant{ID: id}
		l.records[id] = p
		l.order = append(l.order, id)
	}
	return p
}

// UpsertName refreshes the display name for id; chat identities may rename
// themselves between comments.
func (l *Leaderboard) UpsertName(id, name string) *Participant {
	p := l.Get(id)
	p.DisplayName = name
	return p
}

func (l *Leaderboard) AddScore(id string, delta int) {
	l.Get(id).Score += delta
}

// IncrementStrikes bumps the strike count for id and returns the new count.
func (l *Leaderboard) IncrementStrikes(id string) int {
	p := l.Get(id)
	p.Strikes++
	return p.Strikes
}

func (l *Leaderboard) SetPenalized(id string, penalized bool) {
	l.Get(id).Penalized = penalized
}

// ResetStrikes zeroes every participant's strike count. Called exactly once
// per round, at round start.
func (l *Leaderboard) ResetStrikes() {
	for _, p := range l.records {
		p.Strikes = 0
	}
}

// ClearPenalties lifts the penalty flag from every participant.
func (l *Leaderboard) ClearPenalties() {
	for _, p := range l.records {
		p.Penalized = false
	}
}

// Reset drops every record. Only the explicit operator command reaches this;
// chat session resets never do.
func (l *Leaderboard) Reset() {
	l.records = make(map[string]*Participant)
	l.order = nil
}

func (l *Leaderboard) Len() int { return len(l.records) }

// Snapshot returns the standings sorted descending by score. Ties keep
// first-seen order, so repeated snapshots rank equal scores identically.
func (l *Leaderboard) Snapshot() []Standing {
	standings := make([]Standing, 0, len(l.records))
	for _, id := range l.order {
		p := l.records[id]
		standings = append(standings, Standing{DisplayName: p.DisplayName, Score: p.Score})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}
