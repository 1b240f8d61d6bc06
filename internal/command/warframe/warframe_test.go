package warframe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/worldstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replies struct {
	mu  sync.Mutex
	got []command.Reply
}

func (r *replies) Respond(_ context.Context, _ *command.Message, reply command.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, reply)
	return nil
}

type settings struct {
	platform string
	calls    int
}

func (s *settings) ChannelPlatform(context.Context, string, string) (string, error) {
	s.calls++
	return s.platform, nil
}

type cache struct {
	requested []string
	ws        *worldstate.WorldState
	err       error
}

func (c *cache) DataJSON(_ context.Context, platform string) (*worldstate.WorldState, error) {
	c.requested = append(c.requested, platform)
	if !worldstate.IsPlatform(platform) {
		return nil, fmt.Errorf("%w: %q", worldstate.ErrUnknownPlatform, platform)
	}
	return c.ws, c.err
}

func sample() *worldstate.WorldState {
	return &worldstate.WorldState{
		Invasions: []worldstate.Invasion{
			{Node: "Kiliken (Venus)", Desc: "Grineer Offensive", AttackingFaction: "Grineer", DefendingFaction: "Corpus",
				AttackerReward: worldstate.Reward{AsString: "Detonite Injector"}, Completion: 42.5},
			{Node: "Cameria (Jupiter)", Desc: "Corpus Siege", Completed: true},
		},
		Simaris: worldstate.Simaris{Target: "Kuaka", IsTargetActive: true, AsString: "Simaris's target is Kuaka"},
	}
}

func run(t *testing.T, cmd command.Command, content string) command.Status {
	t.Helper()
	reg := command.NewRegistry()
	require.NoError(t, reg.Register(cmd))
	return command.NewDispatcher(reg).Dispatch(context.Background(), &command.Message{
		Content: content, GuildID: "g1", ChannelID: "c1",
	})
}

func TestInvasionsPlatformFromCapture(t *testing.T) {
	out, s, c := &replies{}, &settings{platform: "pc"}, &cache{ws: sample()}
	cmd := &InvasionsCommand{Deps{Settings: s, Cache: c, Responder: out}}

	assert.Equal(t, command.StatusSuccess, run(t, cmd, "invasions on ps4"))
	assert.Equal(t, []string{"ps4"}, c.requested)
	assert.Zero(t, s.calls, "explicit platform skips the channel setting")
}

func TestInvasionsPlatformFallsBackToChannel(t *testing.T) {
	out, s, c := &replies{}, &settings{platform: "xb1"}, &cache{ws: sample()}
	cmd := &InvasionsCommand{Deps{Settings: s, Cache: c, Responder: out}}

	assert.Equal(t, command.StatusSuccess, run(t, cmd, "Invasion"))
	assert.Equal(t, []string{"xb1"}, c.requested)
	assert.Equal(t, 1, s.calls)
}

func TestInvasionsListsOnlyActive(t *testing.T) {
	out := &replies{}
	cmd := &InvasionsCommand{Deps{Settings: &settings{platform: "pc"}, Cache: &cache{ws: sample()}, Responder: out}}

	require.Equal(t, command.StatusSuccess, run(t, cmd, "invasions"))
	require.Len(t, out.got, 1)

	embed := out.got[0].Embed
	require.NotNil(t, embed)
	assert.Equal(t, "Worldstate - Invasions (PC)", embed.Title)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Grineer Offensive on Kiliken (Venus)", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "Grineer (Detonite Injector) vs Corpus")
	assert.Contains(t, embed.Fields[0].Value, "42.50% complete")
}

func TestInvasionsNoneActive(t *testing.T) {
	out := &replies{}
	ws := &worldstate.WorldState{Invasions: []worldstate.Invasion{{Completed: true}}}
	cmd := &InvasionsCommand{Deps{Settings: &settings{platform: "pc"}, Cache: &cache{ws: ws}, Responder: out}}

	require.Equal(t, command.StatusSuccess, run(t, cmd, "invasions"))
	assert.Equal(t, "Currently no invasions", out.got[0].Embed.Description)
}

func TestInvasionsUnknownPlatformFails(t *testing.T) {
	out := &replies{}
	cmd := &InvasionsCommand{Deps{Settings: &settings{platform: "pc"}, Cache: &cache{ws: sample()}, Responder: out}}

	assert.Equal(t, command.StatusFailure, run(t, cmd, "invasions on xp"))
	require.Len(t, out.got, 1)
	assert.Equal(t, "Unknown platform", out.got[0].Embed.Title)
}

func TestInvasionsGrammarRejectsOtherSuffixes(t *testing.T) {
	cmd := &InvasionsCommand{Deps{Settings: &settings{}, Cache: &cache{}, Responder: &replies{}}}
	assert.Equal(t, command.StatusNotApplicable, run(t, cmd, "invasions at pc"))
	assert.Equal(t, command.StatusNotApplicable, run(t, cmd, "invasionss"))
}

func TestInvasionsCacheErrorIsFailure(t *testing.T) {
	out := &replies{}
	cmd := &InvasionsCommand{Deps{Settings: &settings{platform: "pc"}, Cache: &cache{err: fmt.Errorf("upstream down")}, Responder: out}}

	assert.Equal(t, command.StatusFailure, run(t, cmd, "invasions"))
	assert.Empty(t, out.got)
}

func TestSimaris(t *testing.T) {
	out, c := &replies{}, &cache{ws: sample()}
	cmd := &SimarisCommand{Deps{Settings: &settings{platform: "swi"}, Cache: c, Responder: out}}

	require.Equal(t, command.StatusSuccess, run(t, cmd, "simaris"))
	assert.Equal(t, []string{"swi"}, c.requested)

	embed := out.got[0].Embed
	assert.Equal(t, "Simaris's target is Kuaka", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Kuaka (active)", embed.Fields[0].Value)
}

func TestSimarisRejectsPluralTrigger(t *testing.T) {
	cmd := &SimarisCommand{Deps{Settings: &settings{}, Cache: &cache{}, Responder: &replies{}}}
	assert.Equal(t, command.StatusNotApplicable, run(t, cmd, "simariss"))
}

func TestEveryKnownPlatformCanBeNamed(t *testing.T) {
	for _, platform := range worldstate.Platforms {
		c := &cache{ws: sample()}
		invasions := &InvasionsCommand{Deps{Settings: &settings{}, Cache: c, Responder: &replies{}}}
		simaris := &SimarisCommand{Deps{Settings: &settings{}, Cache: c, Responder: &replies{}}}

		assert.Equal(t, command.StatusSuccess, run(t, invasions, "invasion on "+platform), platform)
		assert.Equal(t, command.StatusSuccess, run(t, simaris, "simaris on "+strings.ToUpper(platform)), platform)
		assert.Equal(t, []string{platform, platform}, c.requested)
	}
}
