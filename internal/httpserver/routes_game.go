// internal/httpserver/routes_game.go
//
// HTTP routes for play, statistics and settings.
//   - POST /game/new, /game/guess, /game/click
//   - GET  /game/state, /game/share
//   - GET  /stats, GET|PUT /settings
//
// Only POST /game/new and PUT /settings create a player. The other routes
// answer an unknown caller with defaults or no_round.
package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/robalobadob/countle/internal/game"
	"github.com/robalobadob/countle/internal/stats"
)

type newGameReq struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
}

type guessReq struct {
	County string `json:"county"`
}

type guessRes struct {
	Guess game.Guess    `json:"guess"`
	Game  game.Snapshot `json:"game"`
}

type stateRes struct {
	Game game.Snapshot `json:"game"`
	Run  game.Run      `json:"run"`
}

type shareRes struct {
	Text string `json:"text"`
}

type statsRes struct {
	stats.Statistics
	WinRate float64 `json:"winRate"`
}

type settingsReq struct {
	Difficulty *string `json:"difficulty,omitempty"`
	Theme      *string `json:"theme,omitempty"`
}

func (s *Server) mountGame(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.players.withPlayer(true))
		r.Post("/game/new", s.handleNewGame)
		r.Put("/settings", s.handlePutSettings)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.players.withPlayer(false))
		r.Post("/game/guess", s.handleSubmit(game.InputText))
		r.Post("/game/click", s.handleSubmit(game.InputClick))
		r.Get("/game/state", s.handleState)
		r.Get("/game/share", s.handleShare)
		r.Get("/stats", s.handleStats)
		r.Get("/settings", s.handleGetSettings)
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "game.new")
	defer span.End()

	var req newGameReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Mode == "" {
		req.Mode = string(game.ModeDaily)
	}
	span.SetAttributes(attribute.String("game.mode", req.Mode))

	e := engineFrom(ctx)
	snap, err := e.Start(ctx, game.Mode(strings.ToLower(req.Mode)), game.Difficulty(strings.ToLower(req.Difficulty)))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSubmit(input game.Input) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "game."+string(input))
		defer span.End()

		var req guessReq
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		span.SetAttributes(attribute.String("game.county", req.County))

		e := engineFrom(ctx)
		if e == nil {
			writeGameError(w, game.ErrNoRound)
			return
		}
		var (
			g   game.Guess
			err error
		)
		if input == game.InputClick {
			g, err = e.Click(ctx, req.County)
		} else {
			g, err = e.Guess(ctx, req.County)
		}
		if err != nil {
			if game.IsRejection(err) {
				span.SetAttributes(attribute.String("game.rejected", err.Error()))
			} else {
				span.SetStatus(codes.Error, err.Error())
			}
			writeGameError(w, err)
			return
		}
		snap, _ := e.Current()
		span.SetAttributes(attribute.String("game.band", string(g.Band)), attribute.String("game.status", string(snap.Status)))
		writeJSON(w, http.StatusOK, guessRes{Guess: g, Game: snap})
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	if e == nil {
		writeGameError(w, game.ErrNoRound)
		return
	}
	snap, ok := e.Current()
	if !ok {
		writeGameError(w, game.ErrNoRound)
		return
	}
	writeJSON(w, http.StatusOK, stateRes{Game: snap, Run: e.Run()})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	if e == nil {
		writeGameError(w, game.ErrNoRound)
		return
	}
	text, err := e.Share()
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareRes{Text: text})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var st stats.Statistics
	if e := engineFrom(r.Context()); e != nil {
		st = e.Statistics()
	}
	writeJSON(w, http.StatusOK, statsRes{Statistics: st, WinRate: st.WinRate()})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := game.DefaultSettings()
	if e := engineFrom(r.Context()); e != nil {
		settings = e.Settings()
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePutSettings applies the fields present in the body; absent fields
// are left alone.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "settings.update")
	defer span.End()

	var req settingsReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	e := engineFrom(ctx)
	if req.Difficulty != nil {
		if err := e.SetDifficulty(ctx, game.Difficulty(strings.ToLower(*req.Difficulty))); err != nil {
			writeGameError(w, err)
			return
		}
	}
	if req.Theme != nil {
		if err := e.SetTheme(ctx, strings.ToLower(*req.Theme)); err != nil {
			writeGameError(w, err)
			return
		}
	}
	settings := e.Settings()
	log.Debug().Str("difficulty", string(settings.Difficulty)).Str("theme", settings.Theme).Msg("settings updated")
	writeJSON(w, http.StatusOK, settings)
}
