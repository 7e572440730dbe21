// internal/httpserver/routes_player.go
//
// Routes about the player rather than a round.
//   - DELETE /player     → wipe saved progress; the identity is kept
//   - GET    /debug/store → the engine store's metadata and recent history
//
// Neither route mints an identity.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/countle/internal/store"
)

type storeEntryRes struct {
	Action string      `json:"action"`
	At     time.Time   `json:"at"`
	State  store.State `json:"state"`
}

type storeRes struct {
	Metadata store.Metadata  `json:"metadata"`
	History  []storeEntryRes `json:"history"`
}

func (s *Server) mountPlayer(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.players.withPlayer(false))
		r.Get("/debug/store", s.handleDebugStore)
		if s.reset != nil {
			r.Delete("/player", s.handleResetPlayer)
		}
	})
}

func (s *Server) handleDebugStore(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r.Context())
	if e == nil {
		writeError(w, http.StatusNotFound, "unknown_player")
		return
	}
	res := storeRes{Metadata: e.Store().Metadata(), History: []storeEntryRes{}}
	for _, h := range e.Store().History() {
		res.History = append(res.History, storeEntryRes{Action: h.Action, At: h.At, State: h.State})
	}
	writeJSON(w, http.StatusOK, res)
}

// handleResetPlayer deletes the player's saved data and drops the cached
// engine, so the next request starts from defaults.
func (s *Server) handleResetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "player.reset")
	defer span.End()

	id := playerFrom(ctx)
	if id == "" {
		writeError(w, http.StatusNotFound, "unknown_player")
		return
	}
	if err := s.reset(ctx, id); err != nil {
		log.Error().Err(err).Str("player", id).Msg("reset player")
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	s.players.Forget(id)
	log.Info().Str("player", id).Msg("player data reset")
	w.WriteHeader(http.StatusNoContent)
}
