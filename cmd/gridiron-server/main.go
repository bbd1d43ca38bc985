package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridironmc/gridiron/api"
	"github.com/gridironmc/gridiron/cache"
	"github.com/gridironmc/gridiron/config"
	"github.com/gridironmc/gridiron/jobs"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/overrides"
)

var (
	GitVersion string
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	logger := zerolog.New(output).Level(cfg.ZerologLevel()).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(cfg.ZerologLevel())
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger

	if cfg.ZerologLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().Str("version", GitVersion).
		Uint64("totalMemoryBytes", memory.TotalMemory()).
		Str("cacheDirectory", cfg.CacheDirectory).
		Msg("gridiron-server starting")

	store, err := cache.NewStore(cfg.CacheDirectory, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache directory")
	}
	teams, err := store.LoadTeams()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading teams")
	}
	lg, err := nfl.NewLeague(teams)
	if err != nil {
		logger.Fatal().Err(err).Msg("building league")
	}
	sched, err := store.LoadSchedule(cfg.Season)
	if err != nil {
		logger.Fatal().Err(err).Int("season", cfg.Season).
			Msg("no schedule snapshot; refresh the cache first")
	}
	if results, err := store.LoadResults(); err == nil {
		store.ApplyResults(sched, results)
	} else if !errors.Is(err, cache.ErrNotCached) {
		logger.Fatal().Err(err).Msg("loading results")
	}

	ovr := overrides.NewStore(cfg.CacheDirectory, logger)
	if err := ovr.Load(); err != nil {
		logger.Fatal().Err(err).Msg("loading overrides")
	}

	jm := jobs.NewManager(lg, logger)
	srv := api.NewServer(lg, sched, ovr, jm, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Err(err).Msg("http shutdown")
		}
		close(idleConnsClosed)
	}()

	logger.Info().Str("addr", cfg.Addr()).Msg("listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
