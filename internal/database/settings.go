// internal/database/settings.go
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GameSettings is the persisted per-game configuration row. Only operator
// settings live here; round and leaderboard state stay in memory.
type GameSettings struct {
	GameName         string
	Mode             string
	AutoPlayDelaySec int // 0 leaves autoplay off at boot
	SpeedUpStartSec  int
	SpeedUpMinSec    int
	SpeedUpDecSec    int
}

// ErrNoSettings is returned when no row exists for a game yet.
var ErrNoSettings = errors.New("no settings stored for game")

// EnsureSchema creates the settings table when it does not exist yet.
func EnsureSchema(ctx context.Context) error {
	q := `
	CREATE TABLE IF NOT EXISTS game_settings (
		game_name           TEXT PRIMARY KEY,
		mode                TEXT NOT NULL,
		auto_play_delay_sec INT NOT NULL DEFAULT 0,
		speed_up_start_sec  INT NOT NULL DEFAULT 15,
		speed_up_min_sec    INT NOT NULL DEFAULT 5,
		speed_up_dec_sec    INT NOT NULL DEFAULT 2,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)
	`
	_, err := DB.Exec(ctx, q)
	return err
}

// LoadSettings fetches the stored settings for gameName.
func LoadSettings(ctx context.Context, gameName string) (*GameSettings, error) {
	q := `
	SELECT game_name, mode, auto_play_delay_sec,
	       speed_up_start_sec, speed_up_min_sec, speed_up_dec_sec
	FROM game_settings
	WHERE game_name = $1
	`
	var s GameSettings
	err := DB.QueryRow(ctx, q, gameName).Scan(
		&s.GameName,
		&s.Mode,
		&s.AutoPlayDelaySec,
		&s.SpeedUpStartSec,
		&s.SpeedUpMinSec,
		&s.SpeedUpDecSec,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSettings
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts the settings row for s.GameName.
func SaveSettings(ctx context.Context, s *GameSettings) error {
	q := `
	INSERT INTO game_settings (
		game_name, mode, auto_play_delay_sec,
		speed_up_start_sec, speed_up_min_sec, speed_up_dec_sec, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, now())
	ON CONFLICT (game_name) DO UPDATE SET
		mode                = EXCLUDED.mode,
		auto_play_delay_sec = EXCLUDED.auto_play_delay_sec,
		speed_up_start_sec  = EXCLUDED.speed_up_start_sec,
		speed_up_min_sec    = EXCLUDED.speed_up_min_sec,
		speed_up_dec_sec    = EXCLUDED.speed_up_dec_sec,
		updated_at          = now()
	`
	_, err := DB.Exec(ctx, q,
		s.GameName,
		s.Mode,
		s.AutoPlayDelaySec,
		s.SpeedUpStartSec,
		s.SpeedUpMinSec,
		s.SpeedUpDecSec,
	)
	return err
}
