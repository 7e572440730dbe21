package game

import (
	"fmt"
	"strings"
)

// Share renders a finished round as spoiler-free text: a header with the
// game number and score, then one coloured square per guess. In modes that
// advance on a win the current round is already the next one, so the last
// finished round of the run is shared instead.
func (e *Engine) Share() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return "", ErrNoRound
	}
	snap := e.session.Snapshot()
	if !snap.Status.Terminal() && e.last != nil {
		snap = *e.last
	}
	return ShareText(snap)
}

// ShareText formats snap; the round must be over.
func ShareText(snap Snapshot) (string, error) {
	if !snap.Status.Terminal() {
		return "", ErrNotPlaying
	}
	score := "X"
	if snap.Status == StatusWon {
		score = fmt.Sprint(len(snap.Guesses))
	}
	limit := "∞"
	if snap.MaxGuesses > 0 {
		limit = fmt.Sprint(snap.MaxGuesses)
	}

	var b strings.Builder
	if snap.Mode == ModeDaily {
		fmt.Fprintf(&b, "Countle #%d %s/%s", snap.GameNumber, score, limit)
	} else {
		fmt.Fprintf(&b, "Countle %s %s/%s", snap.Mode, score, limit)
	}
	if snap.Difficulty == Hard {
		b.WriteString("*")
	}
	b.WriteString("\n")
	for _, g := range snap.Guesses {
		b.WriteString(g.Band.Emoji())
	}
	return b.String(), nil
}
