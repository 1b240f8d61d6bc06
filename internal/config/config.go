// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration. It is built once at startup and
// passed by value or pointer into every component; nothing reads the
// environment after Load returns.
type Config struct {
	DiscordToken string        `env:"DISCORD_TOKEN"`
	StoragePath  string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	Prefix       string        `env:"PREFIX" envDefault:"/"`
	OwnerID      string        `env:"OWNER_ID"`
	ShardCount   int           `env:"SHARD_COUNT" envDefault:"1"`
	ReplyTTL     time.Duration `env:"REPLY_TTL" envDefault:"10s"`

	WorldStateURL string        `env:"WORLDSTATE_URL" envDefault:"https://ws.warframestat.us"`
	WorldStateTTL time.Duration `env:"WORLDSTATE_TTL" envDefault:"60s"`

	Trackers Trackers
}

// Trackers holds credentials and schedules for the external stat trackers.
// Intervals are in milliseconds, as in the historical deployment env files.
type Trackers struct {
	CarbonToken string `env:"DISCORD_CARBON_TOKEN"`
	CarbonURL   string `env:"CARBON_URL" envDefault:"https://www.carbonitex.net/discord/data/botdata.php"`

	BotsWebToken string `env:"DISCORD_BOTS_WEB_TOKEN"`
	BotsWebUser  string `env:"DISCORD_BOTS_WEB_USER"`
	BotsWebHost  string `env:"BOTS_WEB_HOST" envDefault:"https://bots.discord.pw"`

	UpdateIntervalMS int64 `env:"TRACKERS_UPDATE_INTERVAL" envDefault:"3660000"`

	CachetHost     string `env:"CACHET_HOST"`
	CachetToken    string `env:"CACHET_TOKEN"`
	CachetMetricID string `env:"CACHET_BOT_METRIC_ID"`

	HeartbeatIntervalMS int64 `env:"CACHET_HEARTBEAT" envDefault:"600000"`
}

// UpdateInterval is the schedule of the guild count and shard stats pushes.
func (t Trackers) UpdateInterval() time.Duration {
	return time.Duration(t.UpdateIntervalMS) * time.Millisecond
}

// HeartbeatInterval is the schedule of the cachet heartbeat.
func (t Trackers) HeartbeatInterval() time.Duration {
	return time.Duration(t.HeartbeatIntervalMS) * time.Millisecond
}

// New loads .env (if any) and the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
	return parse(env.Options{})
}

// Load builds a Config from the given key/value pairs only. The process
// environment is ignored, which keeps tests free of global state.
func Load(environment map[string]string) (*Config, error) {
	if environment == nil {
		environment = map[string]string{}
	}
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ShardCount < 1 {
		return fmt.Errorf("SHARD_COUNT must be at least 1, got %d", c.ShardCount)
	}
	if c.Trackers.UpdateIntervalMS <= 0 {
		return fmt.Errorf("TRACKERS_UPDATE_INTERVAL must be positive, got %d", c.Trackers.UpdateIntervalMS)
	}
	if c.Trackers.HeartbeatIntervalMS <= 0 {
		return fmt.Errorf("CACHET_HEARTBEAT must be positive, got %d", c.Trackers.HeartbeatIntervalMS)
	}
	return nil
}
