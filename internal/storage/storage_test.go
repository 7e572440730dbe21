package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/countle/internal/game"
	"github.com/robalobadob/countle/internal/proximity"
	"github.com/robalobadob/countle/internal/stats"
)

func openSQLite(t *testing.T) *SQL {
	t.Helper()
	kv, err := OpenSQL(context.Background(), "sqlite", filepath.Join(t.TempDir(), "data", "countle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func testKV(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, "a", []byte(`{"x":1}`)))
	got, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(got))

	require.NoError(t, kv.Put(ctx, "a", []byte(`{"x":2}`)))
	got, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2}`, string(got))

	require.NoError(t, kv.Delete(ctx, "a"))
	_, err = kv.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, kv.Delete(ctx, "a"))
}

func TestMemoryKV(t *testing.T) {
	testKV(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'z'
	got, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteKV(t *testing.T) {
	testKV(t, openSQLite(t))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "countle.db")

	first, err := OpenSQL(ctx, "sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := OpenSQL(ctx, "sqlite", path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	var n int
	require.NoError(t, second.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	kv, err := Open(ctx, "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	_, err = Open(ctx, "oracle", "x")
	assert.Error(t, err)
	_, err = Open(ctx, "sqlite", "")
	assert.Error(t, err)
}

func TestDialects(t *testing.T) {
	pg, err := DialectFor("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT data FROM kv WHERE name = $1 AND x = $2",
		pg.RewriteQuery("SELECT data FROM kv WHERE name = ? AND x = ?"))

	my, err := DialectFor("MySQL")
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(db:3306)/countle?parseTime=true", my.DSN("user:pw@tcp(db:3306)/countle"))
	assert.Equal(t, "u@/c?tls=true&parseTime=true", my.DSN("u@/c?tls=true"))
	assert.Contains(t, my.Upsert(), "ON DUPLICATE KEY UPDATE")

	lite, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", lite.Name())
	assert.Equal(t, "a.db?_busy_timeout=5000&_journal_mode=WAL", lite.DSN("a.db"))
	assert.Equal(t, "a.db?mode=ro", lite.DSN("a.db?mode=ro"))

	for _, name := range []string{"sqlite", "postgres", "mysql"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		files, err := migrationsFS.ReadDir("migrations/" + d.Name())
		require.NoError(t, err)
		assert.NotEmpty(t, files, name)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	for name, kv := range map[string]KV{"memory": NewMemory(), "sqlite": openSQLite(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := NewLocal(kv)

			_, ok := l.LoadDailyState(ctx)
			assert.False(t, ok)
			assert.Equal(t, stats.Statistics{}, l.LoadStatistics(ctx))
			assert.Equal(t, game.DefaultSettings(), l.LoadSettings(ctx))
			assert.Empty(t, l.LoadTheme(ctx))

			st := game.DailyState{
				Date:       "2025-03-10",
				GameNumber: 69,
				Guesses:    []game.Guess{{County: "Kerry", Band: proximity.Hot, Adjacent: true}},
				Status:     game.StatusPlaying,
			}
			l.SaveDailyState(ctx, st)
			got, ok := l.LoadDailyState(ctx)
			require.True(t, ok)
			assert.Equal(t, st, got)

			s := stats.Statistics{}.Record(true, 2, "2025-03-10")
			l.SaveStatistics(ctx, s)
			assert.Equal(t, s, l.LoadStatistics(ctx))

			l.SaveSettings(ctx, game.Settings{Difficulty: game.Hard, Theme: game.ThemeDark})
			assert.Equal(t, game.Settings{Difficulty: game.Hard, Theme: game.ThemeDark}, l.LoadSettings(ctx))

			l.SaveTheme(ctx, game.ThemeDark)
			assert.Equal(t, game.ThemeDark, l.LoadTheme(ctx))

			require.NoError(t, l.Reset(ctx))
			_, ok = l.LoadDailyState(ctx)
			assert.False(t, ok)
		})
	}
}

func TestLocalFallsBackOnCorruptValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	l := NewLocal(kv)

	require.NoError(t, kv.Put(ctx, KeyDailyState, []byte(`{not json`)))
	require.NoError(t, kv.Put(ctx, KeyStatistics, []byte(`[]`)))
	require.NoError(t, kv.Put(ctx, KeySettings, []byte(`{"difficulty":"brutal","theme":"sepia"}`)))
	require.NoError(t, kv.Put(ctx, KeyTheme, []byte(`"neon"`)))

	_, ok := l.LoadDailyState(ctx)
	assert.False(t, ok)
	assert.Equal(t, stats.Statistics{}, l.LoadStatistics(ctx))
	assert.Equal(t, game.DefaultSettings(), l.LoadSettings(ctx))
	assert.Empty(t, l.LoadTheme(ctx))

	require.NoError(t, kv.Put(ctx, KeyDailyState, []byte(`{"date":"2025-03-10","status":"paused"}`)))
	_, ok = l.LoadDailyState(ctx)
	assert.False(t, ok)
}

// brokenKV fails every call.
type brokenKV struct{}

var errBroken = errors.New("disk on fire")

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenKV) Put(context.Context, string, []byte) error { return errBroken }
func (brokenKV) Delete(context.Context, string) error { return errBroken }
func (brokenKV) Close() error { return nil }

func TestLocalSwallowsBackendFailures(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(brokenKV{})

	assert.NotPanics(t, func() {
		l.SaveDailyState(ctx, game.DailyState{Date: "2025-03-10", Status: game.StatusWon})
		l.SaveStatistics(ctx, stats.Statistics{GamesPlayed: 1})
		l.SaveSettings(ctx, game.DefaultSettings())
		l.SaveTheme(ctx, game.ThemeDark)
	})
	_, ok := l.LoadDailyState(ctx)
	assert.False(t, ok)
	assert.Equal(t, game.DefaultSettings(), l.LoadSettings(ctx))
	assert.ErrorIs(t, l.Reset(ctx), errBroken)
}

func TestPrefixedIsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := NewLocal(Prefixed(base, "alice/"))
	b := NewLocal(Prefixed(base, "bob/"))

	a.SaveTheme(ctx, game.ThemeDark)
	assert.Equal(t, game.ThemeDark, a.LoadTheme(ctx))
	assert.Empty(t, b.LoadTheme(ctx))

	raw, err := base.Get(ctx, "alice/"+KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(raw))
}
