package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/robalobadob/countle/internal/game"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{Error: code})
}

// gameErrors maps engine errors to HTTP status and error code.
var gameErrors = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrNoRound, http.StatusNotFound, "no_round"},
	{game.ErrNotPlaying, http.StatusConflict, "not_playing"},
	{game.ErrTimeUp, http.StatusConflict, "time_up"},
	{game.ErrDuplicateGuess, http.StatusConflict, "duplicate_guess"},
	{game.ErrUnknownCounty, http.StatusUnprocessableEntity, "unknown_county"},
	{game.ErrWrongInput, http.StatusBadRequest, "wrong_input"},
	{game.ErrUnknownMode, http.StatusBadRequest, "unknown_mode"},
	{game.ErrUnknownDifficulty, http.StatusBadRequest, "unknown_difficulty"},
	{game.ErrUnknownTheme, http.StatusBadRequest, "unknown_theme"},
}

func writeGameError(w http.ResponseWriter, err error) {
	for _, m := range gameErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal")
}
