// internal/stats/stats.go
//
// Aggregate statistics for persistent play (the daily puzzle).
//   - Statistics: counters, streaks and the guess-count distribution.
//   - Tracker:    applies a finished round to the statistics held in the
//                 store and asks the persistence layer to save them.
package stats

import (
	"context"
	"time"

	"github.com/robalobadob/countle/internal/store"
)

// DistributionSize is the number of guess-count buckets; bucket i counts
// games won in exactly i+1 guesses.
const DistributionSize = 6

// StoreKey is where the tracker keeps Statistics in the store.
const StoreKey = "statistics"

// Statistics is the persisted aggregate. LastPlayedDate is a YYYY-MM-DD
// calendar date, empty until the first recorded game.
type Statistics struct {
	GamesPlayed    int                   `json:"gamesPlayed"`
	GamesWon       int                   `json:"gamesWon"`
	CurrentStreak  int                   `json:"currentStreak"`
	BestStreak     int                   `json:"bestStreak"`
	Distribution   [DistributionSize]int `json:"distribution"`
	LastPlayedDate string                `json:"lastPlayedDate,omitempty"`
}

// WinRate is GamesWon/GamesPlayed as a percentage, 0 with no games.
func (s Statistics) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) * 100 / float64(s.GamesPlayed)
}

// Record returns s updated with one finished game. guessCount only counts
// towards the distribution for a win in [1, DistributionSize].
func (s Statistics) Record(won bool, guessCount int, date string) Statistics {
	s.GamesPlayed++
	if won {
		s.GamesWon++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
		if guessCount >= 1 && guessCount <= DistributionSize {
			s.Distribution[guessCount-1]++
		}
	} else {
		s.CurrentStreak = 0
	}
	s.LastPlayedDate = date
	return s
}

// Saver persists statistics. Implementations handle their own failures.
type Saver interface {
	SaveStatistics(ctx context.Context, s Statistics)
}

// Tracker records results into the store and persists them.
type Tracker struct {
	store *store.Store
	saver Saver
	today func() string
}

// NewTracker wires a tracker to the shared store. today supplies the
// calendar date stamped onto LastPlayedDate.
func NewTracker(st *store.Store, saver Saver, today func() string) *Tracker {
	if today == nil {
		today = func() string { return time.Now().Format("2006-01-02") }
	}
	return &Tracker{store: st, saver: saver, today: today}
}

// Current returns the statistics held in the store, zeroed if absent.
func (t *Tracker) Current() Statistics {
	s, _ := store.Get[Statistics](t.store.GetState(), StoreKey)
	return s
}

// RecordResult applies one finished game and persists the result. Pass a
// guessCount of 0 when it is unknown.
func (t *Tracker) RecordResult(ctx context.Context, won bool, guessCount int) Statistics {
	var next Statistics
	date := t.today()
	t.store.Update(func(prev store.State) store.State {
		cur, _ := store.Get[Statistics](prev, StoreKey)
		next = cur.Record(won, guessCount, date)
		return store.State{StoreKey: next}
	}, "stats/record")

	if t.saver != nil {
		t.saver.SaveStatistics(ctx, next)
	}
	return next
}
