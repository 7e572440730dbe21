// internal/store/store.go
//
// Observable state container shared by the engine (writer) and the UI
// (reader).
//
// Characteristics:
//   - Snapshots are immutable: every update builds a new top-level map and
//     never mutates the previous one.
//   - Updates deep-merge nested maps key by key at any depth; any other value
//     (slices, structs, scalars, times) replaces the previous value.
//   - Listeners run synchronously in subscription order after each update and
//     receive (next, prev). A panicking listener is logged and skipped.
//   - Concurrency-safe: writers are serialised, readers use an RWMutex.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrInvalidListener is returned when subscribing a nil listener.
var ErrInvalidListener = errors.New("store: listener must be a non-nil function")

// State is a snapshot of the store. Treat it as read-only.
type State map[string]any

// Listener observes state transitions.
type Listener func(next, prev State)

// Entry is one record of the optional update history.
type Entry struct {
	Action string
	At     time.Time
	State  State
}

// Metadata describes the store itself rather than its contents.
type Metadata struct {
	Subscribers int       `json:"subscribers"`
	Updates     uint64    `json:"updates"`
	LastUpdate  time.Time `json:"lastUpdate"`
	HistorySize int       `json:"historySize"`
}

type subscription struct {
	id uint64
	fn Listener
}

// Store is the state container. Construct with New.
type Store struct {
	writeMu sync.Mutex // serialises SetState/Update

	mu         sync.RWMutex // guards everything below
	state      State
	subs       []subscription
	nextID     uint64
	updates    uint64
	lastUpdate time.Time
	history    []Entry // ring buffer, nil when disabled
	historyLen int
	historyPos int

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithHistory keeps the last n updates in a ring buffer. n <= 0 disables it.
func WithHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.history = make([]Entry, n)
		}
	}
}

// WithInitial seeds the store with a starting snapshot.
func WithInitial(initial State) Option {
	return func(s *Store) { s.state = Merge(State{}, initial) }
}

// WithClock overrides the time source used for metadata and history.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{state: State{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current snapshot.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState merges partial into the current state and notifies listeners.
func (s *Store) SetState(partial State, action string) {
	s.Update(func(State) State { return partial }, action)
}

// Update computes a partial state from the previous snapshot, merges it and
// notifies listeners. fn must not call SetState or Update; listeners may.
func (s *Store) Update(fn func(prev State) State, action string) {
	s.writeMu.Lock()
	prev := s.GetState()
	next := Merge(prev, fn(prev))

	s.mu.Lock()
	s.state = next
	s.updates++
	s.lastUpdate = s.now()
	if s.history != nil {
		s.history[s.historyPos] = Entry{Action: action, At: s.lastUpdate, State: next}
		s.historyPos = (s.historyPos + 1) % len(s.history)
		if s.historyLen < len(s.history) {
			s.historyLen++
		}
	}
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()
	s.writeMu.Unlock()

	for _, sub := range subs {
		notify(sub, next, prev, action)
	}
}

// notify runs one listener, containing any panic it raises.
func notify(sub subscription, next, prev State, action string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Uint64("listener", sub.id).Str("action", action).Msg("store listener failed")
		}
	}()
	sub.fn(next, prev)
}

// Subscribe registers fn and returns a function that removes exactly that
// registration. Calling the returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func(), err error) {
	if fn == nil {
		return nil, ErrInvalidListener
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}, nil
}

// ClearSubscribers removes every listener.
func (s *Store) ClearSubscribers() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// Metadata reports listener count, update count, last update time and the
// number of history entries held.
func (s *Store) Metadata() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Metadata{
		Subscribers: len(s.subs),
		Updates:     s.updates,
		LastUpdate:  s.lastUpdate,
		HistorySize: s.historyLen,
	}
}

// History returns the retained updates, oldest first.
func (s *Store) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, s.historyLen)
	start := s.historyPos - s.historyLen
	if start < 0 {
		start += len(s.history)
	}
	for i := 0; i < s.historyLen; i++ {
		out = append(out, s.history[(start+i)%len(s.history)])
	}
	return out
}
