package game

import (
	"sync"
	"time"

	"github.com/robalobadob/countle/internal/counties"
	"github.com/robalobadob/countle/internal/daily"
)

// TargetSelector chooses the target for a new round and the round's game
// number.
type TargetSelector interface {
	Next(now time.Time) (target counties.County, gameNumber int)
}

// DailyTargets picks the date-determined county; the game number is the
// puzzle number.
type DailyTargets struct {
	Registry *counties.Registry
	Selector daily.Selector
}

func (d DailyTargets) Next(now time.Time) (counties.County, int) {
	return d.Selector.County(d.Registry, now), d.Selector.GameNumber(now)
}

// RandomTargets draws a fresh county per round and numbers rounds from 1.
// With avoidRepeat set it redraws a pick equal to the previous target, so
// back-to-back rounds of a run differ; otherwise every draw is uniform.
type RandomTargets struct {
	pick        func() counties.County
	avoidRepeat bool

	mu    sync.Mutex
	round int
	last  string
}

// NewRandomTargets draws with pick, or reg.Random when pick is nil.
func NewRandomTargets(reg *counties.Registry, pick func() counties.County, avoidRepeat bool) *RandomTargets {
	if pick == nil {
		pick = reg.Random
	}
	return &RandomTargets{pick: pick, avoidRepeat: avoidRepeat}
}

// maxRedraws bounds the attempts to avoid a repeat target.
const maxRedraws = 8

func (r *RandomTargets) Next(time.Time) (counties.County, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.pick()
	for i := 0; r.avoidRepeat && i < maxRedraws && c.Name == r.last; i++ {
		c = r.pick()
	}
	r.last = c.Name
	r.round++
	return c, r.round
}
