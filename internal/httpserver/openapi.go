package httpserver

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/robalobadob/countle/internal/game"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Countle API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Guess the county from distance, direction and heat.")

	add := func(method, path, summary string, req any, resps ...any) {
		op, _ := r.NewOperationContext(method, path)
		op.SetSummary(summary)
		if req != nil {
			op.AddReqStructure(req)
		}
		for i := 0; i+1 < len(resps); i += 2 {
			op.AddRespStructure(resps[i+1], openapi.WithHTTPStatus(resps[i].(int)))
		}
		_ = r.AddOperation(op)
	}

	add(http.MethodGet, "/health", "Health check", nil,
		http.StatusOK, healthRes{},
		http.StatusServiceUnavailable, healthRes{})
	add(http.MethodGet, "/daily", "Today's puzzle number", nil,
		http.StatusOK, dailyRes{})
	add(http.MethodGet, "/counties", "County universe", nil,
		http.StatusOK, countiesRes{})
	add(http.MethodPost, "/game/new", "Start a round", newGameReq{},
		http.StatusOK, game.Snapshot{},
		http.StatusBadRequest, ErrorResponse{})
	add(http.MethodPost, "/game/guess", "Guess a county by name", guessReq{},
		http.StatusOK, guessRes{},
		http.StatusConflict, ErrorResponse{},
		http.StatusUnprocessableEntity, ErrorResponse{})
	add(http.MethodPost, "/game/click", "Pick a county on the map", guessReq{},
		http.StatusOK, guessRes{},
		http.StatusConflict, ErrorResponse{},
		http.StatusUnprocessableEntity, ErrorResponse{})
	add(http.MethodGet, "/game/state", "Current round", nil,
		http.StatusOK, stateRes{},
		http.StatusNotFound, ErrorResponse{})
	add(http.MethodGet, "/game/share", "Spoiler-free result", nil,
		http.StatusOK, shareRes{},
		http.StatusConflict, ErrorResponse{})
	add(http.MethodGet, "/stats", "Daily statistics", nil,
		http.StatusOK, statsRes{})
	add(http.MethodGet, "/settings", "Preferences", nil,
		http.StatusOK, game.Settings{})
	add(http.MethodPut, "/settings", "Change preferences", settingsReq{},
		http.StatusOK, game.Settings{},
		http.StatusBadRequest, ErrorResponse{})
	add(http.MethodDelete, "/player", "Wipe saved progress", nil,
		http.StatusNotFound, ErrorResponse{})
	add(http.MethodGet, "/debug/store", "Engine store metadata and history", nil,
		http.StatusOK, storeRes{},
		http.StatusNotFound, ErrorResponse{})

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
