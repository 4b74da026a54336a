// internal/game/events.go
package game

// EventType enumerates the broadcast vocabulary the game instances emit.
// The names are wire-stable; display clients switch on them.
type EventType string

const (
	EventNewRound          EventType = "new_round"
	EventTimerUpdate       EventType = "timer_update"
	EventCorrectAnswer     EventType = "correct_answer"
	EventWrongAnswer       EventType = "wrong_answer"
	EventUserPenalized     EventType = "user_penalized"
	EventRoundOver         EventType = "round_over"
	EventLeaderboardUpdate EventType = "leaderboard_update"
	EventAutoPlayStatus    EventType = "auto_play_status"

	// Fragment-collector (monster fusion) events.
	EventPartsUpdate      EventType = "parts_update"
	EventStatusUpdate     EventType = "status_update"
	EventGenerationError  EventType = "generation_error"
	EventMonsterGenerated EventType = "monster_generated"
)

// Event is the envelope published through the broadcast hub. Payload holds
// one of the typed payload structs below; the transport layer serializes the
// whole envelope into whatever the viewing clients expect.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type NewRoundPayload struct {
	Mode       string `json:"mode"`
	Word       string `json:"word"`
	TimeBudget int    `json:"time_budget"`
}

type TimerPayload struct {
	SecondsRemaining int `json:"seconds_remaining"`
}

type CorrectAnswerPayload struct {
	DisplayName string  `json:"display_name"`
	Elapsed     float64 `json:"elapsed"`
}

type WrongAnswerPayload struct {
	DisplayName string `json:"display_name"`
	Strikes     int    `json:"strikes"`
}

type PenalizedPayload struct {
	DisplayName string `json:"display_name"`
}

// RoundWinner is one awardee row in a round_over event, ranked fastest first.
type RoundWinner struct {
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
}

type RoundOverPayload struct {
	Winners []RoundWinner `json:"winners"`
}

type LeaderboardPayload struct {
	Leaderboard []Standing `json:"leaderboard"`
}

type AutoPlayStatusPayload struct {
	Running      bool `json:"running"`
	DelaySeconds int  `json:"delay"`
}

type PartsPayload struct {
	Parts []string `json:"parts"`
}

type StatusPayload struct {
	Message string `json:"message"`
}

type MonsterPayload struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// Broadcaster is the slice of the broadcast hub the game instances need.
// The concrete hub lives in internal/broadcast; tests substitute a recorder.
type Broadcaster interface {
	Publish(topic string, event any)
}
