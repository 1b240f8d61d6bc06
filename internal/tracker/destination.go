package tracker

import (
	"net/url"
	"strings"
	"time"

	"github.com/keshon/genesis/internal/config"
)

// Kind selects the wire protocol of a destination.
type Kind int

const (
	// KindGuildCount pushes the guild total across all shards.
	KindGuildCount Kind = iota
	// KindShardStats pushes this shard's own guild count.
	KindShardStats
	// KindHeartbeat posts a fixed liveness point.
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindGuildCount:
		return "guild-count"
	case KindShardStats:
		return "shard-stats"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Destination is one external tracking service.
type Destination struct {
	Kind     Kind
	Name     string
	Endpoint string
	Interval time.Duration
	Token    string
	// Enabled is false when any credential is missing. A disabled
	// destination is never scheduled and never contacted.
	Enabled bool
}

// Destinations builds the tracker destinations from configuration, in a
// fixed order: carbonitex, bots.discord.pw, cachet.
func Destinations(cfg config.Trackers) []Destination {
	botsWeb := strings.TrimRight(cfg.BotsWebHost, "/") + "/api/bots/" + url.PathEscape(cfg.BotsWebUser) + "/stats"
	cachet := strings.TrimRight(cfg.CachetHost, "/") + "/api/v1/metrics/" + url.PathEscape(cfg.CachetMetricID) + "/points"

	return []Destination{
		{
			Kind:     KindGuildCount,
			Name:     "carbonitex",
			Endpoint: cfg.CarbonURL,
			Interval: cfg.UpdateInterval(),
			Token:    cfg.CarbonToken,
			Enabled:  cfg.CarbonToken != "" && cfg.CarbonURL != "",
		},
		{
			Kind:     KindShardStats,
			Name:     "bots.discord.pw",
			Endpoint: botsWeb,
			Interval: cfg.UpdateInterval(),
			Token:    cfg.BotsWebToken,
			Enabled:  cfg.BotsWebToken != "" && cfg.BotsWebUser != "" && cfg.BotsWebHost != "",
		},
		{
			Kind:     KindHeartbeat,
			Name:     "cachet",
			Endpoint: cachet,
			Interval: cfg.HeartbeatInterval(),
			Token:    cfg.CachetToken,
			Enabled:  cfg.CachetToken != "" && cfg.CachetHost != "" && cfg.CachetMetricID != "",
		},
	}
}
