// internal/storage/local.go
//
// Local implements game.Persistence on top of any KV.
//   - Values are JSON documents under fixed keys.
//   - Failures never reach the caller: they are logged and loads fall back
//     to defaults.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/countle/internal/game"
	"github.com/robalobadob/countle/internal/stats"
)

// Keys used by Local.
const (
	KeyDailyState = "dailyState"
	KeyStatistics = "statistics"
	KeySettings   = "settings"
	KeyTheme      = "theme"
)

// Open returns the KV named by driver: "memory" or one of the SQL dialects.
func Open(ctx context.Context, driver, dsn string) (KV, error) {
	if strings.EqualFold(driver, "memory") {
		return NewMemory(), nil
	}
	return OpenSQL(ctx, driver, dsn)
}

// Local persists game state in a KV.
type Local struct {
	kv KV
}

var _ game.Persistence = (*Local)(nil)

// NewLocal wraps kv.
func NewLocal(kv KV) *Local { return &Local{kv: kv} }

// load decodes key into v. It reports false, logging anything other than a
// missing key, when v was not filled.
func (l *Local) load(ctx context.Context, key string, v any) bool {
	data, err := l.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("load failed")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding corrupt value")
		return false
	}
	return true
}

func (l *Local) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("encode failed")
		return
	}
	if err := l.kv.Put(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("save failed")
	}
}

func (l *Local) LoadDailyState(ctx context.Context) (game.DailyState, bool) {
	var st game.DailyState
	if !l.load(ctx, KeyDailyState, &st) {
		return game.DailyState{}, false
	}
	if st.Date == "" || !st.Status.Valid() {
		log.Warn().Str("key", KeyDailyState).Str("status", string(st.Status)).Msg("discarding invalid daily state")
		return game.DailyState{}, false
	}
	return st, true
}

func (l *Local) SaveDailyState(ctx context.Context, st game.DailyState) {
	l.save(ctx, KeyDailyState, st)
}

// LoadStatistics returns zeroed statistics when none are stored.
func (l *Local) LoadStatistics(ctx context.Context) stats.Statistics {
	var s stats.Statistics
	if !l.load(ctx, KeyStatistics, &s) {
		return stats.Statistics{}
	}
	return s
}

func (l *Local) SaveStatistics(ctx context.Context, s stats.Statistics) {
	l.save(ctx, KeyStatistics, s)
}

// LoadSettings fills missing or invalid fields from game.DefaultSettings.
func (l *Local) LoadSettings(ctx context.Context) game.Settings {
	def := game.DefaultSettings()
	var s game.Settings
	if !l.load(ctx, KeySettings, &s) {
		return def
	}
	if _, err := game.ParseDifficulty(string(s.Difficulty)); err != nil {
		if s.Difficulty != "" {
			log.Warn().Str("difficulty", string(s.Difficulty)).Msg("unknown stored difficulty, using default")
		}
		s.Difficulty = def.Difficulty
	}
	if s.Theme != game.ThemeLight && s.Theme != game.ThemeDark {
		s.Theme = def.Theme
	}
	return s
}

func (l *Local) SaveSettings(ctx context.Context, s game.Settings) {
	l.save(ctx, KeySettings, s)
}

// LoadTheme returns "" when no valid theme is stored.
func (l *Local) LoadTheme(ctx context.Context) string {
	var theme string
	if !l.load(ctx, KeyTheme, &theme) {
		return ""
	}
	if theme != game.ThemeLight && theme != game.ThemeDark {
		log.Warn().Str("theme", theme).Msg("unknown stored theme")
		return ""
	}
	return theme
}

func (l *Local) SaveTheme(ctx context.Context, theme string) {
	l.save(ctx, KeyTheme, theme)
}

// Reset deletes every key Local owns.
func (l *Local) Reset(ctx context.Context) error {
	for _, k := range []string{KeyDailyState, KeyStatistics, KeySettings, KeyTheme} {
		if err := l.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("reset %s: %w", k, err)
		}
	}
	return nil
}
