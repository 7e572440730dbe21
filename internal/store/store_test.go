package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStateDisjointKeys(t *testing.T) {
	s := New()
	s.SetState(State{"a": 1}, "a")
	s.SetState(State{"b": 2}, "b")

	got := s.GetState()
	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["b"])
}

func TestSetStateNestedMerge(t *testing.T) {
	s := New(WithInitial(State{
		"settings": map[string]any{"difficulty": "medium", "theme": "light"},
	}))
	s.SetState(State{"settings": map[string]any{"theme": "dark"}}, "theme")

	settings, ok := Get[map[string]any](s.GetState(), "settings")
	require.True(t, ok)
	assert.Equal(t, "medium", settings["difficulty"])
	assert.Equal(t, "dark", settings["theme"])
}

func TestSetStateDeepMerge(t *testing.T) {
	s := New()
	s.SetState(State{"a": map[string]any{"b": map[string]any{"c": map[string]any{"x": 1, "y": 2}}}}, "")
	s.SetState(State{"a": map[string]any{"b": map[string]any{"c": map[string]any{"y": 3}, "d": 4}}}, "")

	a := s.GetState()["a"].(map[string]any)
	b := a["b"].(map[string]any)
	c := b["c"].(map[string]any)
	assert.Equal(t, 1, c["x"])
	assert.Equal(t, 3, c["y"])
	assert.Equal(t, 4, b["d"])
}

func TestSetStateReplacesNonMaps(t *testing.T) {
	s := New()
	s.SetState(State{"list": []int{1, 2, 3}, "when": time.Unix(0, 0)}, "")
	s.SetState(State{"list": []int{9}}, "")
	assert.Equal(t, []int{9}, s.GetState()["list"])

	s.SetState(State{"obj": map[string]any{"k": 1}}, "")
	s.SetState(State{"obj": 7}, "")
	assert.Equal(t, 7, s.GetState()["obj"])
}

func TestSetStateNeverMutatesPrevious(t *testing.T) {
	s := New(WithInitial(State{"n": map[string]any{"k": 1}}))
	before := s.GetState()
	s.SetState(State{"n": map[string]any{"k": 2}, "m": 1}, "")

	assert.Equal(t, 1, before["n"].(map[string]any)["k"])
	_, has := before["m"]
	assert.False(t, has)
}

func TestUpdateFunctionForm(t *testing.T) {
	s := New(WithInitial(State{"count": 1}))
	s.Update(func(prev State) State {
		return State{"count": prev["count"].(int) + 1}
	}, "inc")
	assert.Equal(t, 2, s.GetState()["count"])
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	s := New()
	var calls []string
	var gotNext, gotPrev State

	_, err := s.Subscribe(func(next, prev State) {
		calls = append(calls, "first")
		gotNext, gotPrev = next, prev
	})
	require.NoError(t, err)
	_, err = s.Subscribe(func(State, State) { calls = append(calls, "second") })
	require.NoError(t, err)

	s.SetState(State{"x": 1}, "")
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 1, gotNext["x"])
	assert.NotContains(t, gotPrev, "x")
}

func TestUnsubscribeRemovesOnlyThatListener(t *testing.T) {
	s := New()
	var a, b int
	unsubA, _ := s.Subscribe(func(State, State) { a++ })
	_, _ = s.Subscribe(func(State, State) { b++ })

	s.SetState(State{"x": 1}, "")
	unsubA()
	unsubA()
	s.SetState(State{"x": 2}, "")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, s.Metadata().Subscribers)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	s := New()
	var after int
	_, _ = s.Subscribe(func(State, State) { panic("boom") })
	_, _ = s.Subscribe(func(State, State) { after++ })

	assert.NotPanics(t, func() { s.SetState(State{"x": 1}, "") })
	assert.Equal(t, 1, after)
	assert.Equal(t, 1, s.GetState()["x"])
}

func TestListenerMayWrite(t *testing.T) {
	s := New()
	_, _ = s.Subscribe(func(next, _ State) {
		if _, done := next["echo"]; !done {
			s.SetState(State{"echo": true}, "echo")
		}
	})
	s.SetState(State{"x": 1}, "")
	assert.Equal(t, true, s.GetState()["echo"])
}

func TestSubscribeNil(t *testing.T) {
	s := New()
	unsub, err := s.Subscribe(nil)
	assert.ErrorIs(t, err, ErrInvalidListener)
	assert.Nil(t, unsub)
}

func TestClearSubscribers(t *testing.T) {
	s := New()
	var n int
	_, _ = s.Subscribe(func(State, State) { n++ })
	s.ClearSubscribers()
	s.SetState(State{"x": 1}, "")
	assert.Zero(t, n)
	assert.Zero(t, s.Metadata().Subscribers)
}

func TestMetadataAndHistory(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := New(WithHistory(2), WithClock(func() time.Time { return now }))

	assert.Zero(t, s.Metadata().Updates)
	s.SetState(State{"v": 1}, "one")
	s.SetState(State{"v": 2}, "two")
	s.SetState(State{"v": 3}, "three")

	md := s.Metadata()
	assert.EqualValues(t, 3, md.Updates)
	assert.Equal(t, now, md.LastUpdate)
	assert.Equal(t, 2, md.HistorySize)

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, "two", h[0].Action)
	assert.Equal(t, "three", h[1].Action)
	assert.Equal(t, 3, h[1].State["v"])
}

func TestHistoryDisabledByDefault(t *testing.T) {
	s := New()
	s.SetState(State{"v": 1}, "one")
	assert.Zero(t, s.Metadata().HistorySize)
	assert.Empty(t, s.History())
}
