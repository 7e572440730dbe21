// main.go
//
// Entry point for the Countle game server.
// Responsibilities:
//   - Load configuration and set the global log level.
//   - Load the county universe and open the configured storage backend.
//   - Optionally install OpenTelemetry tracing.
//   - Serve HTTP until SIGINT/SIGTERM, then shut down cleanly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/countle/internal/config"
	"github.com/robalobadob/countle/internal/counties"
	"github.com/robalobadob/countle/internal/daily"
	"github.com/robalobadob/countle/internal/game"
	"github.com/robalobadob/countle/internal/httpserver"
	"github.com/robalobadob/countle/internal/storage"
	"github.com/robalobadob/countle/internal/store"
	"github.com/robalobadob/countle/internal/telemetry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)

	loc, _ := cfg.Location()
	epoch, _ := cfg.Epoch()
	clock := func() time.Time { return time.Now().In(loc) }
	sel := daily.NewSelector(epoch, cfg.DailySalt)

	reg, err := counties.Load()
	if err != nil {
		return fmt.Errorf("loading counties: %w", err)
	}
	log.Info().Int("counties", reg.Len()).Msg("county universe loaded")

	kv, err := storage.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer kv.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("storage ready")

	tracer := telemetry.NoopTracer()
	if cfg.OTelEnabled {
		tp, err := telemetry.Setup(ctx, telemetry.Options{
			Version:     cfg.Version,
			Environment: cfg.Environment,
			SampleRatio: cfg.OTelSample,
		})
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn().Err(err).Msg("telemetry shutdown")
			}
		}()
		tracer = tp.Tracer("http")
		log.Info().Str("environment", cfg.Environment).Float64("sample", cfg.OTelSample).Msg("tracing enabled")
	}

	local := func(id string) *storage.Local {
		return storage.NewLocal(storage.Prefixed(kv, id+"/"))
	}
	players := httpserver.NewPlayers(cfg.JWTSecret, cfg.PlayerCache, func(ctx context.Context, id string) (*game.Engine, error) {
		return game.NewEngine(ctx, game.Options{
			Registry:    reg,
			Store:       store.New(store.WithHistory(cfg.StoreHistory)),
			Persistence: local(id),
			Daily:       sel,
			Clock:       clock,
			TimeLimit:   cfg.TimeTrialLimit,
		})
	})

	opts := httpserver.Options{
		Addr:     cfg.HTTPAddr,
		Origin:   cfg.ClientOrigin,
		Registry: reg,
		Daily:    sel,
		Clock:    clock,
		Players:  players,
		Tracer:   tracer,
		Reset: func(ctx context.Context, id string) error {
			return local(id).Reset(ctx)
		},
	}
	if p, ok := kv.(httpserver.Pinger); ok {
		opts.DB = p
	}
	srv := httpserver.New(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("timezone", loc.String()).Str("version", cfg.Version).Msg("starting countle server")
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
