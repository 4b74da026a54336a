// internal/game/fusion_test.go
package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFusion(t *testing.T, generate GenerateImageFunc) (*FusionGame, *mockBroadcaster) {
	t.Helper()
	mb := &mockBroadcaster{}
	return NewFusionGame("test_fusion", mb, testLogger(), generate), mb
}

func TestFusionCollectsParts(t *testing.T) {
	f, mb := newTestFusion(t, nil)

	f.HandleComment(Comment{UserID: "u1", Text: "/monster dragon wings"})
	f.HandleComment(Comment{UserID: "u2", Text: "/MONSTER Laser Eyes"})
	f.HandleComment(Comment{UserID: "u3", Text: "just chatting"})
	f.HandleComment(Comment{UserID: "u4", Text: "/monster    "})

	assert.Equal(t, []string{"dragon wings", "Laser Eyes"}, f.Parts())

	updates := mb.ofType(EventPartsUpdate)
	require.Len(t, updates, 2)
	assert.Equal(t, []string{"dragon wings", "Laser Eyes"}, updates[1].Payload.(PartsPayload).Parts)
}

func TestFusionGenerateWithoutParts(t *testing.T) {
	f, mb := newTestFusion(t, nil)

	f.Generate(context.Background(), "placeholder")

	errs := mb.ofType(EventGenerationError)
	require.Len(t, errs, 1)
	assert.Equal(t, "No monster parts to generate from!", errs[0].Payload.(StatusPayload).Message)
	assert.Empty(t, mb.ofType(EventMonsterGenerated))
}

func TestFusionGenerateSuccess(t *testing.T) {
	var gotPrompt, gotAPI string
	gen := func(ctx context.Context, api, prompt string) (string, error) {
		gotAPI, gotPrompt = api, prompt
		return "http://img.example/monster.png", nil
	}
	f, mb := newTestFusion(t, gen)
	f.HandleComment(Comment{UserID: "u1", Text: "/monster horns"})
	f.HandleComment(Comment{UserID: "u2", Text: "/monster tentacles"})

	f.Generate(context.Background(), "dalle")

	assert.Equal(t, "dalle", gotAPI)
	assert.Equal(t, "A creature that is a mix of the following: horns, tentacles", gotPrompt)

	generated := mb.ofType(EventMonsterGenerated)
	require.Len(t, generated, 1)
	payload := generated[0].Payload.(MonsterPayload)
	assert.Equal(t, "http://img.example/monster.png", payload.ImageURL)
	assert.Equal(t, gotPrompt, payload.Prompt)

	// The collection clears and the overlays hear about it.
	assert.Empty(t, f.Parts())
	updates := mb.ofType(EventPartsUpdate)
	require.NotEmpty(t, updates)
	assert.Empty(t, updates[len(updates)-1].Payload.(PartsPayload).Parts)
}

func TestFusionGenerateFailureKeepsParts(t *testing.T) {
	gen := func(ctx context.Context, api, prompt string) (string, error) {
		return "", errors.New("backend down")
	}
	f, mb := newTestFusion(t, gen)
	f.HandleComment(Comment{UserID: "u1", Text: "/monster horns"})

	f.Generate(context.Background(), "dalle")

	require.Len(t, mb.ofType(EventGenerationError), 1)
	assert.Empty(t, mb.ofType(EventMonsterGenerated))
	assert.Equal(t, []string{"horns"}, f.Parts(), "a failed generation keeps the collection for retry")
}

func TestFusionDefaultGeneratorReturnsPlaceholder(t *testing.T) {
	f, mb := newTestFusion(t, nil)
	f.HandleComment(Comment{UserID: "u1", Text: "/monster horns"})

	f.Generate(context.Background(), "placeholder")

	generated := mb.ofType(EventMonsterGenerated)
	require.Len(t, generated, 1)
	assert.Equal(t, PlaceholderImage, generated[0].Payload.(MonsterPayload).ImageURL)
}

func TestFusionLeaderboardIsEmpty(t *testing.T) {
	f, _ := newTestFusion(t, nil)
	assert.Empty(t, f.LeaderboardData())
	assert.NotNil(t, f.LeaderboardData())
}
