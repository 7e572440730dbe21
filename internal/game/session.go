// internal/game/session.go
//
// Round state machine for a single target.
// Responsibilities:
//   - Score guesses: distance, compass bearing, heat band, adjacency.
//   - Reject invalid submissions without touching state.
//   - Track state transitions: playing → won/lost, including the time limit.
//
// A Session is never re-targeted; a new round is a new Session.
package game

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/countle/internal/counties"
	"github.com/robalobadob/countle/internal/geo"
	"github.com/robalobadob/countle/internal/proximity"
)

// Session holds one round.
type Session struct {
	ID         string
	Config     ModeConfig
	Target     counties.County
	Guesses    []Guess
	Status     Status
	GameNumber int
	Date       string    // calendar date the round belongs to
	StartTime  time.Time
	Deadline   time.Time // zero when untimed

	reg *counties.Registry
}

// NewSession starts a round against target.
func NewSession(reg *counties.Registry, cfg ModeConfig, target counties.County, gameNumber int, now time.Time) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		Config:     cfg,
		Target:     target,
		Guesses:    []Guess{},
		Status:     StatusPlaying,
		GameNumber: gameNumber,
		Date:       now.Format("2006-01-02"),
		StartTime:  now,
		reg:        reg,
	}
	if cfg.TimeLimit > 0 {
		s.Deadline = now.Add(cfg.TimeLimit)
	}
	return s
}

// Score evaluates guess against target. Equality beats adjacency, and
// adjacency beats distance banding: a bordering county scores distance 0 and
// HOT, never CORRECT.
func Score(reg *counties.Registry, guess, target counties.County) Guess {
	switch {
	case guess.Name == target.Name:
		return Guess{County: guess.Name, Bearing: geo.TargetHit, Band: proximity.Correct}
	case reg.IsAdjacent(guess.Name, target.Name):
		return Guess{
			County:   guess.Name,
			Bearing:  geo.Bearing(guess.Point(), target.Point()),
			Band:     proximity.Hot,
			Adjacent: true,
		}
	}
	d := counties.Distance(guess, target)
	return Guess{
		County:     guess.Name,
		DistanceKm: d,
		Bearing:    geo.Bearing(guess.Point(), target.Point()),
		Band:       proximity.Classify(d, counties.MaxDistanceKm),
	}
}

// Submit validates and scores a guess, mutating the round.
//
// Rejections (no state change):
//   - round not playing → ErrNotPlaying
//   - unknown name      → ErrUnknownCounty
//   - already guessed   → ErrDuplicateGuess
//
// A submission after the deadline ends the round as lost and returns ErrTimeUp.
//
// State transitions:
//   - guess is the target                → won
//   - guess count reaches the max budget → lost
func (s *Session) Submit(name string, now time.Time) (Guess, error) {
	if s.Status != StatusPlaying {
		return Guess{}, ErrNotPlaying
	}
	if s.Expired(now) {
		s.Status = StatusLost
		return Guess{}, ErrTimeUp
	}
	c, ok := s.reg.Lookup(name)
	if !ok {
		return Guess{}, ErrUnknownCounty
	}
	if s.HasGuessed(c.Name) {
		return Guess{}, ErrDuplicateGuess
	}

	g := Score(s.reg, c, s.Target)
	s.Guesses = append(s.Guesses, g)

	if c.Name == s.Target.Name {
		s.Status = StatusWon
	} else if s.Config.MaxGuesses > 0 && len(s.Guesses) >= s.Config.MaxGuesses {
		s.Status = StatusLost
	}
	return g, nil
}

// HasGuessed reports whether the canonical county has been guessed already.
func (s *Session) HasGuessed(canonical string) bool {
	for _, g := range s.Guesses {
		if strings.EqualFold(g.County, canonical) {
			return true
		}
	}
	return false
}

// Expired reports whether a timed round is past its deadline.
func (s *Session) Expired(now time.Time) bool {
	return !s.Deadline.IsZero() && now.After(s.Deadline)
}

// Remaining is the number of guesses left, or -1 when unlimited.
func (s *Session) Remaining() int {
	if s.Config.MaxGuesses <= 0 {
		return -1
	}
	return max(s.Config.MaxGuesses-len(s.Guesses), 0)
}

// DailyState captures the round for persistence.
func (s *Session) DailyState() DailyState {
	return DailyState{
		Date:       s.Date,
		GameNumber: s.GameNumber,
		Guesses:    append([]Guess(nil), s.Guesses...),
		Status:     s.Status,
		Difficulty: s.Config.Difficulty,
		MaxGuesses: s.Config.MaxGuesses,
	}
}

// restore replays saved guesses against the round's target and adopts the
// saved status. It fails, leaving the round untouched, if any saved guess no
// longer resolves. A playing save is settled here when its guesses already
// hit the target or use up the round's limit.
func (s *Session) restore(st DailyState) bool {
	if !st.Status.Valid() {
		return false
	}
	guesses := make([]Guess, 0, len(st.Guesses))
	hit := false
	for _, saved := range st.Guesses {
		c, ok := s.reg.Lookup(saved.County)
		if !ok {
			return false
		}
		hit = hit || c.Name == s.Target.Name
		guesses = append(guesses, Score(s.reg, c, s.Target))
	}
	s.Guesses = guesses
	s.Status = st.Status
	if s.Status == StatusPlaying {
		switch {
		case hit:
			s.Status = StatusWon
		case s.Config.MaxGuesses > 0 && len(guesses) >= s.Config.MaxGuesses:
			s.Status = StatusLost
		}
	}
	return true
}

// Snapshot is the read-only view of a round published to the store.
// The target is revealed once the round is over, and always in click modes
// where the player is asked to find it.
type Snapshot struct {
	ID         string     `json:"id"`
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	Status     Status     `json:"status"`
	GameNumber int        `json:"gameNumber"`
	Date       string     `json:"date"`
	Guesses    []Guess    `json:"guesses"`
	MaxGuesses int        `json:"maxGuesses"`
	Remaining  int        `json:"remaining"`
	Input      Input      `json:"input"`
	Target     string     `json:"target,omitempty"`
	Fact       string     `json:"fact,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

// Snapshot copies the round into its published form.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.ID,
		Mode:       s.Config.Mode,
		Difficulty: s.Config.Difficulty,
		Status:     s.Status,
		GameNumber: s.GameNumber,
		Date:       s.Date,
		Guesses:    append([]Guess{}, s.Guesses...),
		MaxGuesses: s.Config.MaxGuesses,
		Remaining:  s.Remaining(),
		Input:      s.Config.Input,
		StartedAt:  s.StartTime,
	}
	if s.Status.Terminal() || s.Config.Input == InputClick {
		snap.Target = s.Target.Name
	}
	if s.Status.Terminal() {
		snap.Fact = s.Target.Fact
	}
	if !s.Deadline.IsZero() {
		d := s.Deadline
		snap.Deadline = &d
	}
	return snap
}
