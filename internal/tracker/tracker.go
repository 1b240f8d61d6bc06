// Package tracker reports the bot's guild count to external stat trackers.
//
// Every destination is scheduled on its own interval and pushed
// independently: a failing or slow destination never affects another one,
// and nothing here is retried. A failed push is logged and the next tick is
// a fresh attempt.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/pkg/jobmgr"
	"github.com/keshon/genesis/pkg/util"

	"golang.org/x/time/rate"
)

// GuildSource is the read-only view of the chat transport the reporter
// needs.
type GuildSource interface {
	// LocalGuildCount is the number of guilds on this shard.
	LocalGuildCount() int
	// CrossShardGuildCounts returns one count per shard.
	CrossShardGuildCounts(ctx context.Context) ([]int, error)
	// Username is the bot's user name, for logs.
	Username() string
}

// Shard identifies the shard a reporter runs on. Shard 0 pushes the
// account-wide aggregates.
type Shard struct {
	ID    int
	Count int
}

// Primary reports whether s leads cross-shard reporting.
func (s Shard) Primary() bool { return s.ID == 0 }

// Snapshot is a point-in-time guild count.
type Snapshot struct {
	TotalGuilds int
	ShardID     int
	ShardCount  int
}

// Reporter owns the scheduled pushes of one shard.
type Reporter struct {
	dests   []Destination
	shard   Shard
	src     GuildSource
	client  *http.Client
	logger  *log.Logger
	limiter *rate.Limiter
	jobs    *jobmgr.Manager
}

// Option configures a Reporter.
type Option func(*Reporter)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Reporter) {
		if c != nil {
			r.client = c
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOnDemandLimit throttles UpdateOnDemand. Calls over the limit are
// dropped.
func WithOnDemandLimit(l *rate.Limiter) Option {
	return func(r *Reporter) {
		if l != nil {
			r.limiter = l
		}
	}
}

// New builds a reporter for shard. Nothing is scheduled until Start.
func New(cfg config.Trackers, shard Shard, src GuildSource, opts ...Option) *Reporter {
	if shard.Count < 1 {
		shard.Count = 1
	}
	r := &Reporter{
		dests:   Destinations(cfg),
		shard:   shard,
		src:     src,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.Default(),
		limiter: rate.NewLimiter(rate.Every(time.Minute), 2),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.jobs = jobmgr.NewManager(func(s string) {
		r.logger.Printf("[DEBUG] [shard %d] tracker job %s", r.shard.ID, s)
	})
	return r
}

// Destinations returns the destinations this reporter knows about, enabled
// or not.
func (r *Reporter) Destinations() []Destination {
	out := make([]Destination, len(r.dests))
	copy(out, r.dests)
	return out
}

// Start schedules one job per enabled destination. Guild count pushes are
// only scheduled on the primary shard; shard stats and heartbeats run on
// every shard.
func (r *Reporter) Start(ctx context.Context) error {
	for _, d := range r.dests {
		if !d.Enabled {
			r.logger.Printf("[INFO] [shard %d] %s tracker disabled: credentials not configured", r.shard.ID, d.Name)
			continue
		}
		if d.Kind == KindGuildCount && !r.shard.Primary() {
			continue
		}

		d := d
		if err := r.jobs.StartEvery(ctx, d.Name, d.Interval, func(ctx context.Context) {
			r.tick(ctx, d)
		}); err != nil {
			r.jobs.StopAll()
			return fmt.Errorf("schedule %s tracker: %w", d.Name, err)
		}
		r.logger.Printf("[INFO] [shard %d] %s tracker scheduled every %v", r.shard.ID, d.Name, d.Interval)
	}
	return nil
}

// Stop cancels every scheduled push.
func (r *Reporter) Stop() {
	r.jobs.StopAll()
}

// Scheduled returns the names of the scheduled destinations.
func (r *Reporter) Scheduled() []string {
	return r.jobs.List()
}

// Status summarizes the scheduled destinations for logs.
func (r *Reporter) Status() string {
	return fmt.Sprintf("[shard %d] trackers: %s", r.shard.ID, r.jobs.Status())
}

// UpdateOnDemand pushes counts right away, outside the schedule. guildCount
// is the account-wide total and goes to the guild count destination of the
// primary shard. Shard stats always carry this shard's own count.
// Heartbeats are not sent. Each destination is pushed concurrently and
// independently.
func (r *Reporter) UpdateOnDemand(ctx context.Context, guildCount int) {
	if !r.limiter.Allow() {
		r.logger.Printf("[WARN] [shard %d] on-demand tracker update dropped: rate limited", r.shard.ID)
		return
	}

	var targets []Destination
	for _, d := range r.dests {
		if !d.Enabled || d.Kind == KindHeartbeat {
			continue
		}
		if d.Kind == KindGuildCount && !r.shard.Primary() {
			continue
		}
		targets = append(targets, d)
	}

	_ = util.Parallel(ctx, targets, len(targets), func(ctx context.Context, d Destination) error {
		count := guildCount
		if d.Kind == KindShardStats {
			count = r.src.LocalGuildCount()
		}
		if err := r.push(ctx, d, count); err != nil {
			r.logError(d, count, err)
		}
		return nil
	})
}

// Snapshot counts guilds now. With crossShard the total is summed over
// every shard; otherwise it is this shard's count.
func (r *Reporter) Snapshot(ctx context.Context, crossShard bool) (Snapshot, error) {
	snap := Snapshot{ShardID: r.shard.ID, ShardCount: r.shard.Count}
	if !crossShard {
		snap.TotalGuilds = r.src.LocalGuildCount()
		return snap, nil
	}

	counts, err := r.src.CrossShardGuildCounts(ctx)
	if err != nil {
		return snap, fmt.Errorf("fetch cross-shard guild counts: %w", err)
	}
	for _, n := range counts {
		snap.TotalGuilds += n
	}
	return snap, nil
}

func (r *Reporter) tick(ctx context.Context, d Destination) {
	if d.Kind == KindHeartbeat {
		if err := r.postHeartbeat(ctx, d); err != nil {
			r.logError(d, -1, err)
		}
		return
	}

	snap, err := r.Snapshot(ctx, d.Kind == KindGuildCount)
	if err != nil {
		r.logger.Printf("[ERR] [shard %d] Error updating %s: %v", r.shard.ID, d.Name, err)
		return
	}
	if err := r.push(ctx, d, snap.TotalGuilds); err != nil {
		r.logError(d, snap.TotalGuilds, err)
	}
}

func (r *Reporter) logError(d Destination, guilds int, err error) {
	code := 0
	var te *TransportError
	if errors.As(err, &te) {
		code = te.StatusCode()
	}
	if guilds >= 0 {
		r.logger.Printf("[ERR] [shard %d] Error updating %s. Error Code: %d | Guilds: %d | %v", r.shard.ID, d.Name, code, guilds, err)
		return
	}
	r.logger.Printf("[ERR] [shard %d] Error updating %s. Error Code: %d | %v", r.shard.ID, d.Name, code, err)
}
