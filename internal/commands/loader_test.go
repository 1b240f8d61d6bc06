package commands

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"sync"
	"testing"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/storage"
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

func (r *replies) last() command.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[len(r.got)-1]
}

type staticCache struct{}

func (staticCache) DataJSON(context.Context, string) (*worldstate.WorldState, error) {
	return &worldstate.WorldState{}, nil
}

func setup(t *testing.T) (*command.Dispatcher, *storage.Storage, *replies) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	out := &replies{}
	reg := command.NewRegistry()
	loader := NewLoader(reg, Deps{
		Settings:  store,
		Cache:     staticCache{},
		Responder: out,
		Logger:    log.New(io.Discard, "", 0),
	})
	require.NoError(t, loader.ReloadCommands(context.Background()))
	return command.NewDispatcher(reg), store, out
}

func manager(content string) *command.Message {
	return &command.Message{Content: content, GuildID: "g1", ChannelID: "c1", AuthorID: "u1", AuthorLevel: command.LevelManager}
}

func TestBuiltinsAreRegisteredInOrder(t *testing.T) {
	d, _, _ := setup(t)

	var names []string
	for _, c := range d.Registry().Commands() {
		names = append(names, c.Definition().Name)
	}
	assert.Equal(t, []string{
		"core.help",
		"core.ping",
		"settings.platform",
		"warframe.worldstate.invasions",
		"warframe.worldstate.simaris",
		"customcommands.add",
		"customcommands.delete",
		"customcommands.list",
	}, names)
}

func TestCustomCommandLifecycle(t *testing.T) {
	d, store, out := setup(t)
	ctx := context.Background()

	assert.Equal(t, command.StatusNotApplicable, d.Dispatch(ctx, manager("rules")))

	require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc add rules be excellent")))
	assert.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("rules")))
	assert.Equal(t, "be excellent", out.last().Content)

	cmds, err := store.CustomCommands(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc delete rules")))
	assert.Equal(t, command.StatusNotApplicable, d.Dispatch(ctx, manager("rules")))
}

func TestCallsWithPunctuationCanBeDeleted(t *testing.T) {
	d, store, out := setup(t)
	ctx := context.Background()

	for _, call := range []string{"hi!", "foo-bar"} {
		require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc add "+call+" hello")), call)
		assert.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager(call)), call)

		require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc delete "+call)), call)
		assert.Equal(t, "✅ Custom command `"+call+"` deleted", out.last().Content)
		assert.Equal(t, command.StatusNotApplicable, d.Dispatch(ctx, manager(call)), call)
	}

	cmds, err := store.CustomCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestAddRejectsBuiltinTriggers(t *testing.T) {
	d, store, out := setup(t)
	ctx := context.Background()

	for _, call := range []string{"ping", "HELP", "invasions", "simaris"} {
		assert.Equal(t, command.StatusFailure, d.Dispatch(ctx, manager("cc add "+call+" shadowed")), call)
		assert.Contains(t, out.last().Content, "is a builtin command", call)
	}

	cmds, err := store.CustomCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, cmds, "nothing stored")

	require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc add pingpong ok")))
}

func TestBuiltinTriggerWinsOverStoredCustom(t *testing.T) {
	d, store, out := setup(t)
	ctx := context.Background()

	// Stored before the builtin existed.
	require.NoError(t, store.AddCustomCommand(ctx, "g1", "ping", "shadowed", "u1"))
	require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("cc add rules be excellent")))

	require.Equal(t, command.StatusSuccess, d.Dispatch(ctx, manager("ping")))
	assert.Equal(t, "🏓 Pong!", out.last().Content)
}
