// Package worldstate fetches and caches the Warframe world-state document
// per platform.
package worldstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/keshon/genesis/pkg/retrylimit"
)

// Platforms are the platforms the world-state service knows about.
var Platforms = []string{"pc", "ps4", "xb1", "swi"}

var ErrUnknownPlatform = errors.New("unknown platform")

// IsPlatform reports whether p is a known platform.
func IsPlatform(p string) bool {
	p = strings.ToLower(p)
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

type Reward struct {
	AsString string `json:"asString"`
}

type Invasion struct {
	ID               string  `json:"id"`
	Node             string  `json:"node"`
	Desc             string  `json:"desc"`
	AttackingFaction string  `json:"attackingFaction"`
	DefendingFaction string  `json:"defendingFaction"`
	AttackerReward   Reward  `json:"attackerReward"`
	DefenderReward   Reward  `json:"defenderReward"`
	Completion       float64 `json:"completion"`
	Completed        bool    `json:"completed"`
	Eta              string  `json:"eta"`
}

type Simaris struct {
	Target         string `json:"target"`
	IsTargetActive bool   `json:"isTargetActive"`
	AsString       string `json:"asString"`
}

// WorldState is the subset of the document the commands read. Unknown keys
// are ignored.
type WorldState struct {
	Timestamp time.Time  `json:"timestamp"`
	Invasions []Invasion `json:"invasions"`
	Simaris   Simaris    `json:"simaris"`
}

// ActiveInvasions returns the invasions that are not completed.
func (ws *WorldState) ActiveInvasions() []Invasion {
	out := make([]Invasion, 0, len(ws.Invasions))
	for _, inv := range ws.Invasions {
		if !inv.Completed {
			out = append(out, inv)
		}
	}
	return out
}

type entry struct {
	ws      *WorldState
	fetched time.Time
}

// Cache keeps one world-state document per platform for a TTL.
type Cache struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client
	retry   retrylimit.Config
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Option configures a Cache.
type Option func(*Cache)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRetry sets the backoff used for a single refresh. Only 429, 5xx and
// network failures are retried.
func WithRetry(cfg retrylimit.Config) Option {
	return func(c *Cache) { c.retry = cfg }
}

// NewCache returns a cache reading <baseURL>/<platform>.
func NewCache(baseURL string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		client:  &http.Client{Timeout: 15 * time.Second},
		retry:   retrylimit.DefaultConfig(),
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DataJSON returns the world-state for platform, fetching it when the
// cached copy is missing or older than the TTL. On a failed refresh a
// stale copy is returned if there is one.
func (c *Cache) DataJSON(ctx context.Context, platform string) (*WorldState, error) {
	platform = strings.ToLower(platform)
	if !IsPlatform(platform) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}

	c.mu.Lock()
	e, ok := c.entries[platform]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetched) < c.ttl {
		return e.ws, nil
	}

	var ws *WorldState
	err := retrylimit.Do(ctx, c.retry, func(ctx context.Context) error {
		var err error
		ws, err = c.fetch(ctx, platform)
		return err
	})
	if err != nil {
		if ok {
			return e.ws, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[platform] = entry{ws: ws, fetched: c.now()}
	c.mu.Unlock()
	return ws, nil
}

func (c *Cache) fetch(ctx context.Context, platform string) (*WorldState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+platform, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch worldstate %s: %w", platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("fetch worldstate %s: %w", platform, &retrylimit.StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(body)),
		})
	}

	var ws WorldState
	if err := json.NewDecoder(resp.Body).Decode(&ws); err != nil {
		return nil, retrylimit.Permanent(fmt.Errorf("decode worldstate %s: %w", platform, err))
	}
	return &ws, nil
}
