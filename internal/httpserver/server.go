// internal/httpserver/server.go
//
// HTTP server wiring for the Countle backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     request logging, JSON, CORS).
//   - Public endpoints: "/", "/health", "/daily", "/counties", API docs.
//   - Player endpoints (anonymous identity): /game/*, /stats, /settings,
//     /player, /debug/store.
//   - Lifecycle: Run until the listener closes, Shutdown with a deadline.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the player cookie works.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/swaggest/swgui/v5emb"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/countle/internal/counties"
	"github.com/robalobadob/countle/internal/daily"
	"github.com/robalobadob/countle/internal/telemetry"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Registry and Players are required.
type Options struct {
	Addr     string
	Origin   string
	Registry *counties.Registry
	Daily    daily.Selector
	Clock    func() time.Time
	Players  *Players
	// DB is checked by /health when set.
	DB     Pinger
	Tracer trace.Tracer
	// Reset wipes a player's saved data. DELETE /player is mounted when set.
	Reset func(ctx context.Context, playerID string) error
}

// Server bundles router, players and the http.Server.
type Server struct {
	r       *chi.Mux
	srv     *http.Server
	reg     *counties.Registry
	daily   daily.Selector
	clock   func() time.Time
	players *Players
	db      Pinger
	tracer  trace.Tracer
	reset   func(ctx context.Context, playerID string) error
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		reg:     opts.Registry,
		daily:   opts.Daily,
		clock:   opts.Clock,
		players: opts.Players,
		db:      opts.DB,
		tracer:  opts.Tracer,
		reset:   opts.Reset,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.tracer == nil {
		s.tracer = telemetry.NoopTracer()
	}
	origin := opts.Origin
	if origin == "" {
		origin = "http://localhost:5173"
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(cors(origin))

	// --- docs (HTML) ---
	s.r.Get("/openapi.json", handleOpenAPI())
	s.r.Mount("/docs", v5emb.New("Countle API", "/openapi.json", "/docs"))

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": "countle",
				"docs":    "/docs",
			})
		})
		r.Get("/health", s.handleHealth)

		s.mountPublic(r)
		s.mountGame(r)
		s.mountPlayer(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Router exposes the router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves until Shutdown is called.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains connections for at most ten seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

type healthRes struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db,omitempty"`
	Players int    `json:"players"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := healthRes{OK: true, Players: s.players.Len()}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health: db ping failed")
			res.OK, res.DB = false, "down"
			writeJSON(w, http.StatusServiceUnavailable, res)
			return
		}
		res.DB = "up"
	}
	writeJSON(w, http.StatusOK, res)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "X-Player-Token")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http request")
		}()
		next.ServeHTTP(ww, r)
	})
}
