package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/commands"
	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/storage"
	"github.com/keshon/genesis/internal/tracker"
	"github.com/keshon/genesis/internal/worldstate"

	"github.com/bwmarrin/discordgo"
)

// Bot runs every shard of the bot in this process, one gateway session per
// shard, over a single command registry.
type Bot struct {
	cfg        *config.Config
	storage    *storage.Storage
	dispatcher *command.Dispatcher
	loader     *commands.Loader
	shards     []*shard
	logger     *log.Logger
}

// shard is one gateway session. It is the tracker.GuildSource of its
// reporter.
type shard struct {
	id       int
	bot      *Bot
	dg       *discordgo.Session
	reporter *tracker.Reporter
	ready    atomic.Bool
}

// New prepares the sessions and the command set. Nothing connects until Run.
func New(cfg *config.Config, store *storage.Storage, cache *worldstate.Cache, logger *log.Logger) (*Bot, error) {
	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is not set")
	}
	if logger == nil {
		logger = log.Default()
	}

	b := &Bot{cfg: cfg, storage: store, logger: logger}

	reg := command.NewRegistry()
	b.dispatcher = command.NewDispatcher(reg, command.WithLogger(logger))
	b.dispatcher.Use(command.WithCommandLog(store, logger))
	b.loader = commands.NewLoader(reg, commands.Deps{
		Settings:  store,
		Cache:     cache,
		Responder: &responder{bot: b},
		Latency:   b.latency,
		Logger:    logger,
	})

	for i := 0; i < cfg.ShardCount; i++ {
		dg, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create session for shard %d: %w", i, err)
		}
		dg.ShardID = i
		dg.ShardCount = cfg.ShardCount
		dg.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent

		sh := &shard{id: i, bot: b, dg: dg}
		sh.reporter = tracker.New(cfg.Trackers, tracker.Shard{ID: i, Count: cfg.ShardCount}, sh, tracker.WithLogger(logger))

		dg.AddHandler(sh.onReady)
		dg.AddHandler(sh.onMessageCreate)
		dg.AddHandler(sh.onGuildCreate)
		b.shards = append(b.shards, sh)
	}
	return b, nil
}

// Run connects every shard, schedules the trackers and blocks until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.loader.ReloadCommands(ctx); err != nil {
		return err
	}

	for _, sh := range b.shards {
		if err := sh.dg.Open(); err != nil {
			b.close()
			return fmt.Errorf("failed to open Discord session for shard %d: %w", sh.id, err)
		}
		if err := sh.reporter.Start(ctx); err != nil {
			b.close()
			return err
		}
		b.logger.Printf("[INFO] %s", sh.reporter.Status())
	}
	b.logger.Printf("[INFO] %d shard(s) connected", len(b.shards))

	<-ctx.Done()
	b.logger.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.close()
	return nil
}

func (b *Bot) close() {
	for _, sh := range b.shards {
		sh.reporter.Stop()
		if err := sh.dg.Close(); err != nil {
			b.logger.Printf("[WARN] [shard %d] Failed to close session: %v", sh.id, err)
		}
	}
}

// session returns the session that serves guildID. Direct messages are
// delivered to shard 0.
func (b *Bot) session(guildID string) *discordgo.Session {
	return b.shards[shardFor(guildID, len(b.shards))].dg
}

func (b *Bot) latency() time.Duration {
	return b.shards[0].dg.HeartbeatLatency()
}

func (sh *shard) LocalGuildCount() int {
	sh.dg.State.RLock()
	defer sh.dg.State.RUnlock()
	return len(sh.dg.State.Guilds)
}

// CrossShardGuildCounts fails while any shard has not received its ready
// event, so a partial total is never reported.
func (sh *shard) CrossShardGuildCounts(context.Context) ([]int, error) {
	counts := make([]int, len(sh.bot.shards))
	for i, other := range sh.bot.shards {
		if !other.ready.Load() {
			return nil, fmt.Errorf("shard %d is not ready", other.id)
		}
		counts[i] = other.LocalGuildCount()
	}
	return counts, nil
}

func (sh *shard) Username() string {
	sh.dg.State.RLock()
	defer sh.dg.State.RUnlock()
	if sh.dg.State.User == nil {
		return ""
	}
	return sh.dg.State.User.Username
}

func (sh *shard) onReady(s *discordgo.Session, r *discordgo.Ready) {
	sh.ready.Store(true)
	sh.bot.logger.Printf("[INFO] [shard %d] ✅ %s is ready on %d guild(s)", sh.id, r.User.Username, len(r.Guilds))

	go sh.bot.reportReady(context.Background(), sh)
}

// reportReady pushes the counts that are known once sh is ready. A
// secondary shard pushes its own shard stats. The account-wide total goes
// out through shard 0 only when every shard is ready, whichever shard
// became ready last.
func (b *Bot) reportReady(ctx context.Context, sh *shard) {
	if sh.id != 0 {
		sh.reporter.UpdateOnDemand(ctx, sh.LocalGuildCount())
	}

	primary := b.shards[0]
	counts, err := primary.CrossShardGuildCounts(ctx)
	if err != nil {
		b.logger.Printf("[DEBUG] [shard %d] Guild total deferred: %v", sh.id, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	primary.reporter.UpdateOnDemand(ctx, total)
}

func (sh *shard) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	sh.bot.logger.Printf("[DEBUG] [shard %d] Guild available: %s (%s)", sh.id, g.Guild.ID, g.Guild.Name)
}
