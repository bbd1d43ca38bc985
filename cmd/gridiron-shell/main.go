package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridironmc/gridiron/cache"
	"github.com/gridironmc/gridiron/config"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/overrides"
	"github.com/gridironmc/gridiron/shell"
)

var (
	GitVersion string
)

const banner = `
  __ _ _ __(_) __| (_)_ __ ___  _ __
 / _` + "`" + ` | '__| |/ _` + "`" + ` | | '__/ _ \| '_ \
| (_| | |  | | (_| | | | | (_) | | | |
 \__, |_|  |_|\__,_|_|_|  \___/|_| |_|
 |___/       season simulator
`

func main() {
	fmt.Print(banner)
	fmt.Println(GitVersion)

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

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	sc := shell.NewShellController(lg, sched, ovr)
	args := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if args == "" {
		go sc.Loop(sig)
	} else {
		sc.Execute(args)
		sig <- syscall.SIGINT
	}

	<-idleConnsClosed
	sc.Cleanup()
	log.Info().Msg("shutting down")
}
