// internal/game/fusion.go
package game

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// fusionPrefix marks chat comments that contribute a creature part.
const fusionPrefix = "/monster "

// PlaceholderImage is served when no image backend is configured.
const PlaceholderImage = "/static/placeholder_monster.png"

// GenerateImageFunc renders a fusion prompt into an image and returns a URL
// the overlay can display. Production wires an external image-generation API;
// the default returns a static placeholder.
type GenerateImageFunc func(ctx context.Context, api, prompt string) (string, error)

// FusionGame collects free-text creature parts from chat and, on an operator
// trigger, fuses them into one generated image. It shares the Instance
// contract with the typing challenge but keeps no per-participant state.
type FusionGame struct {
	name     string
	b        Broadcaster
	logger   *logrus.Logger
	generate GenerateImageFunc

	mu    sync.Mutex
	parts []string
}

func NewFusionGame(name string, b Broadcaster, logger *logrus.Logger, generate GenerateImageFunc) *FusionGame {
	if generate == nil {
		generate = func(ctx context.Context, api, prompt string) (string, error) {
			return PlaceholderImage, nil
		}
	}
	return &FusionGame{name: name, b: b, logger: logger, generate: generate}
}

func (f *FusionGame) Name() string { return f.name }

// HandleComment appends the remainder of "/monster <part>" comments to the
// collection. The prefix check is case-insensitive; the part keeps its case.
func (f *FusionGame) HandleComment(c Comment) {
	if !strings.HasPrefix(strings.ToLower(c.Text), fusionPrefix) {
		return
	}
	part := strings.TrimSpace(c.Text[len(fusionPrefix):])
	if part == "" {
		return
	}
	f.mu.Lock()
	f.parts = append(f.parts, part)
	parts := append([]string(nil), f.parts...)
	f.mu.Unlock()
	f.publish(EventPartsUpdate, PartsPayload{Parts: parts})
}

// Parts returns a copy of the currently collected parts.
func (f *FusionGame) Parts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.parts...)
}

// Generate builds the fusion prompt from the collected parts, hands it to the
// image backend and clears the collection. On failure the parts are kept so
// the operator can retry.
func (f *FusionGame) Generate(ctx context.Context, api string) {
	f.mu.Lock()
	if len(f.parts) == 0 {
		f.mu.Unlock()
		f.publish(EventGenerationError, StatusPayload{Message: "No monster parts to generate from!"})
		return
	}
	prompt := "A creature that is a mix of the following: " + strings.Join(f.parts, ", ")
	f.mu.Unlock()

	f.publish(EventStatusUpdate, StatusPayload{Message: "Generating monster with " + api + "..."})

	url, err := f.generate(ctx, api, prompt)
	if err != nil {
		f.logger.Warnf("fusion %s: image generation failed: %v", f.name, err)
		f.publish(EventGenerationError, StatusPayload{Message: "Monster generation failed."})
		return
	}

	f.mu.Lock()
	f.parts = nil
	f.mu.Unlock()

	f.publish(EventMonsterGenerated, MonsterPayload{ImageURL: url, Prompt: prompt})
	f.publish(EventPartsUpdate, PartsPayload{Parts: []string{}})
}

// LeaderboardData implements Instance; the collector keeps no scores.
func (f *FusionGame) LeaderboardData() []Standing { return []Standing{} }

func (f *FusionGame) publish(t EventType, payload any) {
	f.b.Publish(f.name, Event{Type: t, Payload: payload})
}
