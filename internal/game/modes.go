// internal/game/modes.go
package game

import (
	"math/rand"
	"strings"
)

// Mode selects a word pool and timing policy for the typing challenge.
type Mode string

const (
	ModeClassic  Mode = "classic"
	ModeSentence Mode = "sentence"
	ModeEmoji    Mode = "emoji"
	ModeHard     Mode = "hard"
	ModeSpeedUp  Mode = "speed_up"
)

// Default timing policy. The speed_up budget evolves across rounds within a
// session; every other mode resets to the default budget each round.
const (
	DefaultRoundSeconds     = 10
	SpeedUpStartSeconds     = 15
	SpeedUpMinSeconds       = 5
	SpeedUpDecrementSeconds = 2
)

var wordPools = map[Mode][]string{
	ModeClassic: {"apple", "banana", "cherry", "orange", "grape", "python", "tiktok", "live"},
	ModeSentence: {
		"The quick brown fox jumps over the lazy dog.",
		"Never gonna give you up.",
		"I like to move it, move it.",
	},
	ModeEmoji:   {"🍎🍌🍇", "😀😂😍", "👍👎👌", "💻🖱️⌨️"},
	ModeSpeedUp: {"fast", "quick", "rush", "speed", "fly", "zoom", "blast", "go"},
}

// ValidMode reports whether m names a playable mode. Hard mode draws from the
// classic pool, so it carries no pool entry of its own.
func ValidMode(m Mode) bool {
	if m == ModeHard {
		return true
	}
	_, ok := wordPools[m]
	return ok
}

// generateWord returns the display string and the target answer for mode.
// They differ only in hard mode with words longer than three runes, where the
// display copy has two distinct letter positions swapped.
func generateWord(rng *rand.Rand, mode Mode) (display, target string) {
	if mode == ModeHard {
		word := pick(rng, wordPools[ModeClassic])
		return scrambleWord(rng, word), word
	}
	word := pick(rng, wordPools[mode])
	return word, word
}

// scrambleWord swaps two distinct rune positions of word, picking positions
// holding different runes so the result never equals the input. Words of
// three runes or fewer, or made of a single repeated rune, are returned
// unchanged.
func scrambleWord(rng *rand.Rand, word string) string {
	runes := []rune(word)
	if len(runes) <= 3 || uniform(runes) {
		return word
	}
	for {
		i := rng.Intn(len(runes))
		j := rng.Intn(len(runes) - 1)
		if j >= i {
			j++
		}
		if runes[i] == runes[j] {
			continue
		}
		runes[i], runes[j] = runes[j], runes[i]
		return string(runes)
	}
}

func uniform(runes []rune) bool {
	for _, r := range runes {
		if r != runes[0] {
			return false
		}
	}
	return true
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

// modeTitle is the overlay-facing display form of a mode name.
func modeTitle(m Mode) string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
