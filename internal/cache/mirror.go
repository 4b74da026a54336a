// internal/cache/mirror.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ryojun/typestorm/internal/game"
)

// roundHistoryLen caps the per-game round history list.
const roundHistoryLen = 100

// RoundRecord is the archival form of one finished round.
type RoundRecord struct {
	Game      string             `json:"game"`
	Timestamp int64              `json:"timestamp"`
	Winners   []game.RoundWinner `json:"winners"`
}

// Mirror is a broadcast hub subscriber that copies selected game events into
// Redis for external overlays: the latest leaderboard per game and a capped
// list of recent round results. It ignores every other event type.
type Mirror struct {
	game   string
	logger *logrus.Logger
}

func NewMirror(gameName string, logger *logrus.Logger) *Mirror {
	return &Mirror{game: gameName, logger: logger}
}

// Deliver implements broadcast.Handle.
func (m *Mirror) Deliver(event any) error {
	if Rdb == nil {
		return nil
	}
	ev, ok := event.(game.Event)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	switch ev.Type {
	case game.EventLeaderboardUpdate:
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return err
		}
		return Rdb.Set(ctx, m.leaderboardKey(), data, 0).Err()

	case game.EventRoundOver:
		payload, ok := ev.Payload.(game.RoundOverPayload)
		if !ok {
			return nil
		}
		record := RoundRecord{
			Game:      m.game,
			Timestamp: time.Now().Unix(),
			Winners:   payload.Winners,
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		pipe := Rdb.Pipeline()
		pipe.LPush(ctx, m.roundsKey(), data)
		pipe.LTrim(ctx, m.roundsKey(), 0, roundHistoryLen-1)
		_, err = pipe.Exec(ctx)
		return err
	}
	return nil
}

func (m *Mirror) leaderboardKey() string {
	return fmt.Sprintf("typestorm:leaderboard:%s", m.game)
}

func (m *Mirror) roundsKey() string {
	return fmt.Sprintf("typestorm:rounds:%s", m.game)
}
