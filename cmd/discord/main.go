// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/discord"
	"github.com/keshon/genesis/internal/storage"
	v "github.com/keshon/genesis/internal/version"
	"github.com/keshon/genesis/internal/worldstate"
	"github.com/keshon/genesis/pkg/retrylimit"
)

func main() {
	log.Printf("[INFO] Starting %v bot %v...", v.AppName, v.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Println("[ERR] Failed to flush storage:", err)
		}
	}()

	retry := retrylimit.DefaultConfig()
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Printf("[WARN] [Retry] World-state request failed (attempt %d): %v. Sleeping %v", attempt, err, delay)
	}
	cache := worldstate.NewCache(cfg.WorldStateURL, cfg.WorldStateTTL, worldstate.WithRetry(retry))

	bot, err := discord.New(cfg, store, cache, log.Default())
	if err != nil {
		log.Println("[ERR]", err)
		return
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
