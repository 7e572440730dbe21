// internal/daily/daily.go
//
// Deterministic daily puzzle selection.
//   - DateKey:    the calendar date string (YYYY-MM-DD) of a time in its own
//                 location, so "today" follows the player's local day.
//   - GameNumber: whole calendar days since the epoch, plus one.
//   - Index:      blake2b(salt:date) reduced modulo the county count.
//
// Nothing here reads the wall clock or seeds a random generator; the same
// date always yields the same puzzle.
package daily

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/countle/internal/counties"
)

const dateLayout = "2006-01-02"

// DefaultEpoch is the date of puzzle #1.
var DefaultEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateKey returns YYYY-MM-DD for t in t's location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight UTC.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", s, err)
	}
	return t, nil
}

// civilDay strips the time of day and location, keeping the calendar date.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Selector picks the daily county. The zero value uses DefaultEpoch and an
// empty salt.
type Selector struct {
	Epoch time.Time
	Salt  string
}

// NewSelector returns a selector for the given epoch and salt.
func NewSelector(epoch time.Time, salt string) Selector {
	return Selector{Epoch: epoch, Salt: salt}
}

func (s Selector) epoch() time.Time {
	if s.Epoch.IsZero() {
		return DefaultEpoch
	}
	return civilDay(s.Epoch)
}

// GameNumber returns the puzzle number for t's calendar date: 1 on the epoch,
// increasing by exactly one per calendar day. Dates before the epoch yield
// numbers below 1.
func (s Selector) GameNumber(t time.Time) int {
	days := civilDay(t).Sub(s.epoch()).Hours() / 24
	return int(days) + 1
}

// Index returns the position in an n-element list for t's calendar date.
func (s Selector) Index(t time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	sum := blake2b.Sum256([]byte(s.Salt + ":" + DateKey(t)))
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// County returns the daily county for t from the registry's ordered list.
func (s Selector) County(reg *counties.Registry, t time.Time) counties.County {
	return reg.At(s.Index(t, reg.Len()))
}
