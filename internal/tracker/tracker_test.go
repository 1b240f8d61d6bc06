package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keshon/genesis/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeSource struct {
	local  int
	shards []int
	err    error
}

func (f fakeSource) LocalGuildCount() int { return f.local }

func (f fakeSource) CrossShardGuildCounts(context.Context) ([]int, error) {
	return f.shards, f.err
}

func (f fakeSource) Username() string { return "genesis" }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type hit struct {
	path   string
	header http.Header
	body   map[string]any
}

type recorder struct {
	mu     sync.Mutex
	hits   []hit
	status int
}

func newRecorder(t *testing.T, status int) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)

		rec.mu.Lock()
		rec.hits = append(rec.hits, hit{path: r.URL.Path, header: r.Header.Clone(), body: body})
		rec.mu.Unlock()

		w.WriteHeader(rec.status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hits)
}

func (r *recorder) first() hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[0]
}

func fastIntervals() config.Trackers {
	return config.Trackers{
		UpdateIntervalMS:    10,
		HeartbeatIntervalMS: 10,
	}
}

func newReporter(cfg config.Trackers, shard Shard, src GuildSource, logs io.Writer) *Reporter {
	if logs == nil {
		logs = io.Discard
	}
	return New(cfg, shard, src,
		WithLogger(log.New(logs, "", 0)),
		WithOnDemandLimit(rate.NewLimiter(rate.Inf, 1)),
	)
}

func TestDestinationsEnabledOnlyWithCredentials(t *testing.T) {
	dests := Destinations(config.Trackers{
		CarbonURL:    "https://carbon.example",
		BotsWebHost:  "https://bots.example/",
		BotsWebUser:  "1234",
		BotsWebToken: "bots-token",
		CachetHost:   "https://status.example",
		CachetToken:  "cachet-token",
	})
	require.Len(t, dests, 3)

	assert.Equal(t, "carbonitex", dests[0].Name)
	assert.False(t, dests[0].Enabled, "no carbon key")

	assert.Equal(t, "bots.discord.pw", dests[1].Name)
	assert.True(t, dests[1].Enabled)
	assert.Equal(t, "https://bots.example/api/bots/1234/stats", dests[1].Endpoint)

	assert.Equal(t, "cachet", dests[2].Name)
	assert.False(t, dests[2].Enabled, "no metric id")
}

func TestAbsentCredentialsNeverContactDestinations(t *testing.T) {
	rec, srv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CarbonURL = srv.URL
	cfg.BotsWebHost = srv.URL
	cfg.CachetHost = srv.URL

	logs := &syncBuffer{}
	r := newReporter(cfg, Shard{ID: 0, Count: 1}, fakeSource{local: 3, shards: []int{3}}, logs)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Empty(t, r.Scheduled())

	time.Sleep(50 * time.Millisecond) // several intervals
	assert.Zero(t, rec.count())
	assert.Contains(t, logs.String(), "carbonitex tracker disabled")
	assert.Contains(t, logs.String(), "cachet tracker disabled")
}

func TestWireContracts(t *testing.T) {
	carbon, carbonSrv := newRecorder(t, http.StatusOK)
	bots, botsSrv := newRecorder(t, http.StatusOK)
	cachet, cachetSrv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CarbonToken = "carbon-key"
	cfg.CarbonURL = carbonSrv.URL
	cfg.BotsWebToken = "bots-token"
	cfg.BotsWebUser = "42"
	cfg.BotsWebHost = botsSrv.URL
	cfg.CachetToken = "cachet-token"
	cfg.CachetHost = cachetSrv.URL
	cfg.CachetMetricID = "7"

	r := newReporter(cfg, Shard{ID: 0, Count: 2}, fakeSource{local: 5, shards: []int{5, 8}}, nil)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Equal(t, []string{"bots.discord.pw", "cachet", "carbonitex"}, r.Scheduled())
	assert.Equal(t, "[shard 0] trackers: Running jobs: bots.discord.pw, cachet, carbonitex", r.Status())

	assert.Eventually(t, func() bool {
		return carbon.count() > 0 && bots.count() > 0 && cachet.count() > 0
	}, time.Second, 5*time.Millisecond)

	c := carbon.first()
	assert.Equal(t, "carbon-key", c.body["key"])
	assert.EqualValues(t, 13, c.body["servercount"], "summed across shards")
	assert.Equal(t, "application/json", c.header.Get("Content-Type"))

	b := bots.first()
	assert.Equal(t, "/api/bots/42/stats", b.path)
	assert.Equal(t, "bots-token", b.header.Get("Authorization"))
	assert.EqualValues(t, 0, b.body["shard_id"])
	assert.EqualValues(t, 2, b.body["shard_count"])
	assert.EqualValues(t, 5, b.body["server_count"])

	h := cachet.first()
	assert.Equal(t, "/api/v1/metrics/7/points", h.path)
	assert.Equal(t, "cachet-token", h.header.Get("X-Cachet-Token"))
	assert.EqualValues(t, 1, h.body["value"])
}

func TestNonPrimaryShardSkipsGuildCount(t *testing.T) {
	carbon, carbonSrv := newRecorder(t, http.StatusOK)
	bots, botsSrv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CarbonToken = "carbon-key"
	cfg.CarbonURL = carbonSrv.URL
	cfg.BotsWebToken = "bots-token"
	cfg.BotsWebUser = "42"
	cfg.BotsWebHost = botsSrv.URL

	r := newReporter(cfg, Shard{ID: 1, Count: 2}, fakeSource{local: 8, shards: []int{5, 8}}, nil)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Equal(t, []string{"bots.discord.pw"}, r.Scheduled())
	assert.Eventually(t, func() bool { return bots.count() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, carbon.count())
	assert.EqualValues(t, 1, bots.first().body["shard_id"])
}

func TestFailingDestinationDoesNotAffectOthers(t *testing.T) {
	_, failing := newRecorder(t, http.StatusInternalServerError)
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	cachet, cachetSrv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CarbonToken = "carbon-key"
	cfg.CarbonURL = failing.URL
	cfg.BotsWebToken = "bots-token"
	cfg.BotsWebUser = "42"
	cfg.BotsWebHost = dead.URL
	cfg.CachetToken = "cachet-token"
	cfg.CachetHost = cachetSrv.URL
	cfg.CachetMetricID = "7"

	logs := &syncBuffer{}
	r := newReporter(cfg, Shard{ID: 0, Count: 1}, fakeSource{local: 4, shards: []int{4}}, logs)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Eventually(t, func() bool { return cachet.count() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, "Error updating carbonitex. Error Code: 500 | Guilds: 4") &&
			strings.Contains(out, "Error updating bots.discord.pw. Error Code: 0")
	}, time.Second, 5*time.Millisecond)

	assert.NotContains(t, logs.String(), "carbon-key")
	assert.NotContains(t, logs.String(), "bots-token")
}

func TestCrossShardErrorSkipsPush(t *testing.T) {
	carbon, carbonSrv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CarbonToken = "carbon-key"
	cfg.CarbonURL = carbonSrv.URL

	logs := &syncBuffer{}
	r := newReporter(cfg, Shard{ID: 0, Count: 2}, fakeSource{err: errors.New("shard 1 not ready")}, logs)
	require.NoError(t, r.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "shard 1 not ready")
	}, time.Second, 5*time.Millisecond)
	r.Stop()
	assert.Zero(t, carbon.count())
}

func TestStopHaltsTicks(t *testing.T) {
	cachet, cachetSrv := newRecorder(t, http.StatusOK)

	cfg := fastIntervals()
	cfg.CachetToken = "cachet-token"
	cfg.CachetHost = cachetSrv.URL
	cfg.CachetMetricID = "7"

	r := newReporter(cfg, Shard{}, fakeSource{}, nil)
	require.NoError(t, r.Start(context.Background()))
	assert.Eventually(t, func() bool { return cachet.count() >= 1 }, time.Second, 5*time.Millisecond)

	r.Stop()
	time.Sleep(20 * time.Millisecond) // let in-flight ticks land
	after := cachet.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, cachet.count())
	assert.Empty(t, r.Scheduled())
	assert.Equal(t, "[shard 0] trackers: No jobs are running.", r.Status())
}

func TestUpdateOnDemandPushesCountDestinations(t *testing.T) {
	carbon, carbonSrv := newRecorder(t, http.StatusOK)
	bots, botsSrv := newRecorder(t, http.StatusOK)
	cachet, cachetSrv := newRecorder(t, http.StatusOK)

	cfg := config.Trackers{
		UpdateIntervalMS:    int64(time.Hour / time.Millisecond),
		HeartbeatIntervalMS: int64(time.Hour / time.Millisecond),
		CarbonToken:         "carbon-key",
		CarbonURL:           carbonSrv.URL,
		BotsWebToken:        "bots-token",
		BotsWebUser:         "42",
		BotsWebHost:         botsSrv.URL,
		CachetToken:         "cachet-token",
		CachetHost:          cachetSrv.URL,
		CachetMetricID:      "7",
	}

	r := newReporter(cfg, Shard{ID: 0, Count: 2}, fakeSource{local: 3}, nil)
	r.UpdateOnDemand(context.Background(), 99)

	require.Equal(t, 1, carbon.count())
	require.Equal(t, 1, bots.count())
	assert.Zero(t, cachet.count(), "heartbeats are schedule only")
	assert.EqualValues(t, 99, carbon.first().body["servercount"])
	assert.EqualValues(t, 3, bots.first().body["server_count"], "shard stats carry the local count")
	assert.EqualValues(t, 0, bots.first().body["shard_id"])
}

func TestUpdateOnDemandIsThrottled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := fastIntervals()
	cfg.CarbonToken = "carbon-key"
	cfg.CarbonURL = srv.URL

	logs := &syncBuffer{}
	r := New(cfg, Shard{}, fakeSource{}, WithLogger(log.New(logs, "", 0)),
		WithOnDemandLimit(rate.NewLimiter(rate.Every(time.Hour), 1)))

	r.UpdateOnDemand(context.Background(), 1)
	r.UpdateOnDemand(context.Background(), 2)

	assert.EqualValues(t, 1, hits.Load())
	assert.Contains(t, logs.String(), "rate limited")
}

func TestTransportErrorUnwraps(t *testing.T) {
	base := errors.New("boom")
	err := error(&TransportError{Destination: "cachet", Code: 503, Err: base})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 503, te.StatusCode())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "cachet: http 503: boom", err.Error())
}
