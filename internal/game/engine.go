// internal/game/engine.go
//
// Engine drives rounds for one player.
// Responsibilities:
//   - Start rounds per mode, restoring today's daily progress when saved.
//   - Serialise submissions and publish every change to the store.
//   - Persist daily progress after each guess, record statistics on a
//     finished daily, and keep run counters for streak/locate/time-trial.
//   - Auto-advance to a fresh round on a win in advancing modes.
//
// Store keys written: session, run, runs, settings, theme, statistics.
// Hooks fire after the engine lock is released, so they may call back in.
// Store listeners run under the lock: they may read the store but must not
// call the engine.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/countle/internal/counties"
	"github.com/robalobadob/countle/internal/daily"
	"github.com/robalobadob/countle/internal/stats"
	"github.com/robalobadob/countle/internal/store"
)

// Persistence is the storage boundary the engine consumes. Implementations
// swallow and log their own failures; loads fall back to defaults.
type Persistence interface {
	LoadDailyState(ctx context.Context) (DailyState, bool)
	SaveDailyState(ctx context.Context, st DailyState)
	LoadStatistics(ctx context.Context) stats.Statistics
	SaveStatistics(ctx context.Context, s stats.Statistics)
	LoadSettings(ctx context.Context) Settings
	SaveSettings(ctx context.Context, s Settings)
	LoadTheme(ctx context.Context) string
	SaveTheme(ctx context.Context, theme string)
}

// Hooks are optional UI callbacks.
type Hooks struct {
	RoundStarted  func(Snapshot)
	GuessAccepted func(Guess, Snapshot)
	GuessRejected func(input string, err error)
	RoundOver     func(Snapshot)
}

// Options configures an Engine. Registry, Store and Persistence are required.
type Options struct {
	Registry    *counties.Registry
	Store       *store.Store
	Persistence Persistence
	Daily       daily.Selector
	// Clock returns the current time in the player's location.
	Clock func() time.Time
	// TimeLimit overrides DefaultTimeLimit for time-trial runs.
	TimeLimit time.Duration
	// Pick overrides the random target draw.
	Pick  func() counties.County
	Hooks Hooks
}

// Run accumulates rounds played back to back in one mode.
type Run struct {
	Mode      Mode       `json:"mode"`
	Rounds    int        `json:"rounds"`
	Wins      int        `json:"wins"`
	Streak    int        `json:"streak"`
	Over      bool       `json:"over"`
	StartedAt time.Time  `json:"startedAt"`
	Deadline  *time.Time `json:"deadline,omitempty"`
}

// Store keys.
const (
	KeySession  = "session"
	KeyRun      = "run"
	KeyRuns     = "runs"
	KeySettings = "settings"
	KeyTheme    = "theme"
)

// Engine coordinates sessions, statistics and persistence.
type Engine struct {
	reg     *counties.Registry
	st      *store.Store
	persist Persistence
	tracker *stats.Tracker
	daily   DailyTargets
	clock   func() time.Time
	limit   time.Duration
	pick    func() counties.County
	hooks   Hooks

	mu       sync.Mutex
	session  *Session
	restored bool      // session was rehydrated already finished
	last     *Snapshot // most recently finished round of this run
	run      Run
	targets  TargetSelector
	settings Settings
}

// NewEngine loads settings, theme and statistics into the store and returns
// an engine with no round started.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Registry == nil || opts.Store == nil || opts.Persistence == nil {
		return nil, fmt.Errorf("game: registry, store and persistence are required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	limit := opts.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	e := &Engine{
		reg:     opts.Registry,
		st:      opts.Store,
		persist: opts.Persistence,
		daily:   DailyTargets{Registry: opts.Registry, Selector: opts.Daily},
		clock:   clock,
		limit:   limit,
		pick:    opts.Pick,
		hooks:   opts.Hooks,
	}
	e.tracker = stats.NewTracker(opts.Store, opts.Persistence, func() string {
		return daily.DateKey(e.clock())
	})

	e.settings = opts.Persistence.LoadSettings(ctx)
	if theme := opts.Persistence.LoadTheme(ctx); theme != "" {
		e.settings.Theme = theme
	}
	e.st.SetState(store.State{
		stats.StoreKey: opts.Persistence.LoadStatistics(ctx),
		KeySettings:    settingsState(e.settings),
		KeyTheme:       e.settings.Theme,
	}, "engine/init")
	return e, nil
}

func settingsState(s Settings) map[string]any {
	return map[string]any{"difficulty": string(s.Difficulty), "theme": s.Theme}
}

// Registry exposes the county universe the engine plays with.
func (e *Engine) Registry() *counties.Registry { return e.reg }

// Store exposes the shared state container.
func (e *Engine) Store() *store.Store { return e.st }

// Start begins a new run in mode. An empty difficulty uses the saved
// setting. In daily mode today's saved progress is restored when present.
func (e *Engine) Start(ctx context.Context, mode Mode, difficulty Difficulty) (Snapshot, error) {
	var events []func()
	defer func() { fire(events) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if difficulty == "" {
		difficulty = e.settings.Difficulty
	}
	cfg, err := ConfigFor(mode, difficulty)
	if err != nil {
		return Snapshot{}, err
	}
	if cfg.TimeLimit > 0 {
		cfg.TimeLimit = e.limit
	}

	now := e.clock()
	if cfg.Target == TargetDaily {
		e.targets = e.daily
	} else {
		// Runs that advance on a win never serve the same county twice in a row.
		e.targets = NewRandomTargets(e.reg, e.pick, cfg.AdvanceOnWin)
	}

	target, number := e.targets.Next(now)
	e.restored = false
	e.last = nil

	// Today's daily keeps the difficulty it was started with.
	saved, resume := DailyState{}, false
	if cfg.Target == TargetDaily {
		saved, resume = e.persist.LoadDailyState(ctx)
		resume = resume && saved.Date == daily.DateKey(now)
		if resume && saved.Difficulty.Valid() {
			cfg.Difficulty = saved.Difficulty
			cfg.MaxGuesses = MaxGuessesFor(saved.Difficulty)
		}
	}

	sess := NewSession(e.reg, cfg, target, number, now)
	settled := false
	if resume {
		if sess.restore(saved) {
			e.restored = sess.Status.Terminal()
			settled = e.restored && !saved.Status.Terminal()
		} else {
			log.Warn().Str("date", saved.Date).Msg("discarding unreadable daily state")
		}
	}

	e.run = Run{Mode: mode, StartedAt: now}
	if !sess.Deadline.IsZero() {
		d := sess.Deadline
		e.run.Deadline = &d
	}
	e.beginRound(sess)
	snap := sess.Snapshot()
	events = append(events, e.roundStarted(snap))
	if settled {
		// A save left playing with a spent budget is finished now.
		e.restored = false
		e.persist.SaveDailyState(ctx, sess.DailyState())
		events = append(events, e.finish(ctx, sess)...)
	}
	return snap, nil
}

// beginRound installs sess as the current round and publishes it.
func (e *Engine) beginRound(sess *Session) {
	e.session = sess
	e.run.Rounds++
	e.publish("round/start")
}

// Guess submits a typed county name.
func (e *Engine) Guess(ctx context.Context, name string) (Guess, error) {
	return e.submit(ctx, name, InputText)
}

// Click submits a county picked on the map.
func (e *Engine) Click(ctx context.Context, county string) (Guess, error) {
	return e.submit(ctx, county, InputClick)
}

func (e *Engine) submit(ctx context.Context, name string, input Input) (Guess, error) {
	var events []func()
	defer func() { fire(events) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session
	if sess == nil {
		return Guess{}, ErrNoRound
	}
	if sess.Config.Input != input {
		events = append(events, e.rejected(name, ErrWrongInput))
		return Guess{}, ErrWrongInput
	}

	g, err := sess.Submit(name, e.clock())
	if err != nil {
		events = append(events, e.rejected(name, err))
		if errors.Is(err, ErrTimeUp) {
			events = append(events, e.finish(ctx, sess)...)
		}
		return Guess{}, err
	}

	e.publish("round/guess")
	if sess.Config.PersistOnGuess {
		e.persist.SaveDailyState(ctx, sess.DailyState())
	}
	if h := e.hooks.GuessAccepted; h != nil {
		snap := sess.Snapshot()
		events = append(events, func() { h(g, snap) })
	}
	if sess.Status.Terminal() {
		events = append(events, e.finish(ctx, sess)...)
	}
	return g, nil
}

// finish settles a round that just became terminal: statistics, run
// counters, and the automatic next round in advancing modes.
func (e *Engine) finish(ctx context.Context, sess *Session) []func() {
	var events []func()
	won := sess.Status == StatusWon

	snap := sess.Snapshot()
	e.last = &snap
	if sess.Config.TrackStats && !e.restored {
		e.tracker.RecordResult(ctx, won, len(sess.Guesses))
	}

	if won {
		e.run.Wins++
		e.run.Streak++
	} else {
		e.run.Streak = 0
		e.run.Over = true
	}
	e.publish("round/over")
	e.recordBest()
	if h := e.hooks.RoundOver; h != nil {
		events = append(events, func() { h(snap) })
	}

	if won && sess.Config.AdvanceOnWin {
		now := e.clock()
		target, number := e.targets.Next(now)
		next := NewSession(e.reg, sess.Config, target, number, now)
		next.Deadline = sess.Deadline
		e.beginRound(next)
		events = append(events, e.roundStarted(next.Snapshot()))
	}
	return events
}

// recordBest keeps the best run per mode under runs.<mode>.
func (e *Engine) recordBest() {
	key := string(e.run.Mode)
	e.st.Update(func(prev store.State) store.State {
		runs, _ := store.Get[map[string]any](prev, KeyRuns)
		best, _ := runs[key].(int)
		if e.run.Wins <= best {
			return nil
		}
		return store.State{KeyRuns: map[string]any{key: e.run.Wins}}
	}, "run/best")
}

func (e *Engine) publish(action string) {
	e.st.SetState(store.State{
		KeySession: e.session.Snapshot(),
		KeyRun:     e.run,
	}, action)
}

func (e *Engine) roundStarted(snap Snapshot) func() {
	h := e.hooks.RoundStarted
	if h == nil {
		return nil
	}
	return func() { h(snap) }
}

func (e *Engine) rejected(input string, err error) func() {
	h := e.hooks.GuessRejected
	if h == nil {
		return nil
	}
	return func() { h(input, err) }
}

func fire(events []func()) {
	for _, f := range events {
		if f != nil {
			f()
		}
	}
}

// Current returns the current round, if any.
func (e *Engine) Current() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Snapshot{}, false
	}
	return e.session.Snapshot(), true
}

// Run returns the counters of the current run.
func (e *Engine) Run() Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run
}

// Statistics returns the persisted daily statistics.
func (e *Engine) Statistics() stats.Statistics { return e.tracker.Current() }

// Settings returns the current preferences.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetDifficulty changes the difficulty used by rounds started afterwards.
func (e *Engine) SetDifficulty(ctx context.Context, d Difficulty) error {
	if _, err := ParseDifficulty(string(d)); err != nil {
		return fmt.Errorf("%w %q", err, d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Difficulty = d
	e.persist.SaveSettings(ctx, e.settings)
	e.st.SetState(store.State{KeySettings: map[string]any{"difficulty": string(d)}}, "settings/difficulty")
	return nil
}

// SetTheme switches between the light and dark themes.
func (e *Engine) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w %q", ErrUnknownTheme, theme)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Theme = theme
	e.persist.SaveTheme(ctx, theme)
	e.persist.SaveSettings(ctx, e.settings)
	e.st.SetState(store.State{
		KeySettings: map[string]any{"theme": theme},
		KeyTheme:    theme,
	}, "settings/theme")
	return nil
}
