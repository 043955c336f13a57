package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wheelyhard/assets"
	"github.com/robalobadob/wheelyhard/internal/cache"
	"github.com/robalobadob/wheelyhard/internal/config"
	"github.com/robalobadob/wheelyhard/internal/httpserver"
	"github.com/robalobadob/wheelyhard/internal/reveal"
	"github.com/robalobadob/wheelyhard/internal/scryfall"
	"github.com/robalobadob/wheelyhard/internal/sets"
	"github.com/robalobadob/wheelyhard/internal/store"
	"github.com/robalobadob/wheelyhard/internal/suggest"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	setFilter, err := sets.Load(cfg.SetFilterFile, cfg.SetFilter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load set filter")
	}

	db, err := cache.OpenDB(cfg.CacheDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.CacheDSN).Msg("open cache db")
	}
	defer db.Close()
	if err := cache.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate cache db")
	}
	responses := cache.NewStore(db, cfg.CacheTTL)

	client := scryfall.New(scryfall.Options{
		BaseURL:   cfg.ScryfallBaseURL,
		UserAgent: cfg.ScryfallUserAgent,
		Timeout:   cfg.HTTPTimeout,
		SetFilter: setFilter,
		Cache:     responses,
	})

	sessions := store.NewMemoryStore(cfg.MaxReveal)
	srv := httpserver.New(cfg, httpserver.Deps{
		Store:     sessions,
		Cards:     client.RandomCard,
		Artwork:   client,
		Suggester: suggest.New(client, cfg.SuggestMinLength, cfg.ShowSuggestions),
		Renderer:  reveal.Renderer{MaxLevel: cfg.MaxReveal, Mask: cfg.Mask()},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go housekeep(ctx, sessions, responses, cfg.SessionIdleTimeout)

	log.Info().
		Str("port", cfg.Port).
		Strs("sets", setFilter).
		Bool("suggestions", cfg.ShowSuggestions).
		Int("maxReveal", cfg.MaxReveal).
		Msg("starting wheelyhard")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shut down")
}

// housekeep drops idle sessions and expired cache rows every few minutes.
func housekeep(ctx context.Context, sessions store.Store, responses *cache.Store, idle time.Duration) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := sessions.Sweep(ctx, now.Add(-idle)); n > 0 {
				log.Debug().Int("sessions", n).Msg("swept idle sessions")
			}
			if n, err := responses.Prune(ctx); err != nil {
				log.Warn().Err(err).Msg("prune cache")
			} else if n > 0 {
				log.Debug().Int64("rows", n).Msg("pruned cache")
			}
		}
	}
}
