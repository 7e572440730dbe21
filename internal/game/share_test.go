package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/countle/internal/proximity"
)

func TestShareText(t *testing.T) {
	snap := Snapshot{
		Mode:       ModeDaily,
		Difficulty: Medium,
		Status:     StatusWon,
		GameNumber: 69,
		MaxGuesses: 6,
		Guesses: []Guess{
			{Band: proximity.Cold1},
			{Band: proximity.Warm2},
			{Band: proximity.Correct},
		},
	}
	text, err := ShareText(snap)
	require.NoError(t, err)
	assert.Equal(t, "Countle #69 3/6\n🟦🟧🟩", text)

	snap.Status = StatusLost
	snap.Difficulty = Hard
	snap.MaxGuesses = 4
	text, err = ShareText(snap)
	require.NoError(t, err)
	assert.Equal(t, "Countle #69 X/4*\n🟦🟧🟩", text)

	snap.Mode = ModeLocate
	snap.Status = StatusWon
	snap.MaxGuesses = 0
	snap.Difficulty = Medium
	snap.Guesses = snap.Guesses[2:]
	text, err = ShareText(snap)
	require.NoError(t, err)
	assert.Equal(t, "Countle locate 1/∞\n🟩", text)
}

func TestShareRequiresFinishedRound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	_, err := f.engine.Start(ctx, ModePractice, Medium)
	require.NoError(t, err)
	_, err = f.engine.Share()
	assert.ErrorIs(t, err, ErrNotPlaying)

	_, err = f.engine.Guess(ctx, "Dublin")
	require.NoError(t, err)
	text, err := f.engine.Share()
	require.NoError(t, err)
	assert.Equal(t, "Countle practice 1/6\n🟩", text)
}

func TestShareAfterAdvancingWin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	_, err := f.engine.Start(ctx, ModeStreak, Hard)
	require.NoError(t, err)

	_, err = f.engine.Guess(ctx, "Meath")
	require.NoError(t, err)
	_, err = f.engine.Guess(ctx, "Dublin")
	require.NoError(t, err)

	snap, _ := f.engine.Current()
	require.Equal(t, StatusPlaying, snap.Status)
	text, err := f.engine.Share()
	require.NoError(t, err)
	assert.Equal(t, "Countle streak 2/4*\n🟥🟩", text)

	_, err = f.engine.Start(ctx, ModeStreak, Hard)
	require.NoError(t, err)
	_, err = f.engine.Share()
	assert.ErrorIs(t, err, ErrNotPlaying)
}
