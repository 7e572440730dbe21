// internal/game/types.go
//
// Core type definitions for the county guessing engine.
// Defines:
//   - Mode, Difficulty, Status: the closed vocabularies of a round.
//   - Guess: the scored, immutable result of one submission.
//   - Settings, DailyState: what the persistence layer stores for the engine.
package game

import (
	"github.com/robalobadob/countle/internal/geo"
	"github.com/robalobadob/countle/internal/proximity"
)

// Mode selects a play mode.
type Mode string

const (
	ModeDaily     Mode = "daily"
	ModePractice  Mode = "practice"
	ModeLocate    Mode = "locate"
	ModeStreak    Mode = "streak"
	ModeTimeTrial Mode = "timetrial"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeDaily, ModePractice, ModeLocate, ModeStreak, ModeTimeTrial}

// Difficulty controls the guess budget of text modes.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	if d := Difficulty(s); d.Valid() {
		return d, nil
	}
	return "", ErrUnknownDifficulty
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Status is the lifecycle state of a round: playing → won | lost.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	return s == StatusPlaying || s == StatusWon || s == StatusLost
}

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Guess is one scored submission. County is always the canonical name.
type Guess struct {
	County     string         `json:"county"`
	DistanceKm float64        `json:"distanceKm"`
	Bearing    geo.Glyph      `json:"bearing"`
	Band       proximity.Band `json:"band"`
	Adjacent   bool           `json:"isAdjacent"`
}

// Themes accepted by SetTheme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings are the player's persisted preferences.
type Settings struct {
	Difficulty Difficulty `json:"difficulty"`
	Theme      string     `json:"theme"`
}

// DefaultSettings is used when nothing valid is stored.
func DefaultSettings() Settings {
	return Settings{Difficulty: Medium, Theme: ThemeLight}
}

// DailyState is the saved progress of today's daily round.
type DailyState struct {
	Date       string     `json:"date"`
	GameNumber int        `json:"gameNumber"`
	Guesses    []Guess    `json:"guesses"`
	Status     Status     `json:"status"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	MaxGuesses int        `json:"maxGuesses,omitempty"`
}
