package game

import (
	"fmt"
	"time"
)

// TargetKind names how a round's target is chosen.
type TargetKind string

const (
	TargetDaily    TargetKind = "daily"
	TargetRandom   TargetKind = "random"
	TargetPerRound TargetKind = "perRound"
)

// Input is how the player answers.
type Input string

const (
	InputText  Input = "text"
	InputClick Input = "click"
)

// DefaultTimeLimit is the time-trial budget when none is configured.
const DefaultTimeLimit = 3 * time.Minute

// ModeConfig parameterises the single round state machine.
// MaxGuesses of 0 means unlimited; TimeLimit of 0 means untimed.
type ModeConfig struct {
	Mode           Mode          `json:"mode"`
	Difficulty     Difficulty    `json:"difficulty"`
	MaxGuesses     int           `json:"maxGuesses"`
	Target         TargetKind    `json:"target"`
	Input          Input         `json:"input"`
	PersistOnGuess bool          `json:"persistOnGuess"`
	TrackStats     bool          `json:"trackStats"`
	AdvanceOnWin   bool          `json:"advanceOnWin"`
	TimeLimit      time.Duration `json:"timeLimit"`
}

// MaxGuessesFor returns the guess budget for a difficulty.
func MaxGuessesFor(d Difficulty) int {
	if d == Hard {
		return 4
	}
	return 6
}

// ConfigFor returns the configuration for mode at difficulty.
func ConfigFor(mode Mode, d Difficulty) (ModeConfig, error) {
	if _, err := ParseDifficulty(string(d)); err != nil {
		return ModeConfig{}, fmt.Errorf("%w %q", err, d)
	}
	cfg := ModeConfig{
		Mode:       mode,
		Difficulty: d,
		MaxGuesses: MaxGuessesFor(d),
		Target:     TargetRandom,
		Input:      InputText,
	}
	switch mode {
	case ModeDaily:
		cfg.Target = TargetDaily
		cfg.PersistOnGuess = true
		cfg.TrackStats = true
	case ModePractice:
	case ModeLocate:
		cfg.Target = TargetPerRound
		cfg.Input = InputClick
		cfg.MaxGuesses = 0
		cfg.AdvanceOnWin = true
	case ModeStreak:
		cfg.AdvanceOnWin = true
	case ModeTimeTrial:
		cfg.AdvanceOnWin = true
		cfg.TimeLimit = DefaultTimeLimit
	default:
		return ModeConfig{}, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	return cfg, nil
}
