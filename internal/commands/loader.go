// Package commands assembles the bot's command set: the builtin commands
// followed by the custom commands stored for every guild.
package commands

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/command/core"
	"github.com/keshon/genesis/internal/command/custom"
	"github.com/keshon/genesis/internal/command/warframe"
	"github.com/keshon/genesis/internal/storage"
)

// Settings is everything the command set reads from or writes to the
// settings store.
type Settings interface {
	core.PlatformStore
	custom.Store
	AllCustomCommands(ctx context.Context) ([]storage.CustomCommand, error)
}

type Deps struct {
	Settings  Settings
	Cache     warframe.WorldStates
	Responder command.Responder
	// Latency is reported by ping. Optional.
	Latency func() time.Duration
	Logger  *log.Logger
}

// Loader owns the contents of a registry. It implements custom.Reloader so
// the management commands can refresh the set they belong to.
type Loader struct {
	reg  *command.Registry
	deps Deps
	mu   sync.Mutex // serializes reloads
}

func NewLoader(reg *command.Registry, deps Deps) *Loader {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Loader{reg: reg, deps: deps}
}

// Builtins returns the builtin commands in match order. More specific
// triggers come first.
func (l *Loader) Builtins() []command.Command {
	wf := warframe.Deps{Settings: l.deps.Settings, Cache: l.deps.Cache, Responder: l.deps.Responder}
	cc := custom.Deps{Store: l.deps.Settings, Reloader: l, Reserved: l, Responder: l.deps.Responder}

	return []command.Command{
		&core.HelpCommand{Commands: l.reg, Responder: l.deps.Responder},
		&core.PingCommand{Responder: l.deps.Responder, Latency: l.deps.Latency},
		&core.PlatformCommand{Settings: l.deps.Settings, Responder: l.deps.Responder},
		&warframe.InvasionsCommand{Deps: wf},
		&warframe.SimarisCommand{Deps: wf},
		&custom.AddCommand{Deps: cc},
		&custom.DeleteCommand{Deps: cc},
		&custom.ListCommand{Deps: cc},
	}
}

// Reserved reports whether a message consisting of call alone would be
// answered by a builtin. A custom command with that call could never run.
func (l *Loader) Reserved(call string) bool {
	for _, c := range l.Builtins() {
		re, err := c.Definition().Compile()
		if err == nil && re.MatchString(call) {
			return true
		}
	}
	return false
}

// ReloadCommands rebuilds the registry from the builtins and the stored
// custom commands and swaps it in at once. Custom commands are registered
// last, so a builtin trigger always wins.
func (l *Loader) ReloadCommands(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := l.deps.Settings.AllCustomCommands(ctx)
	if err != nil {
		return fmt.Errorf("load custom commands: %w", err)
	}

	builtins := l.Builtins()
	variants := custom.Variants(stored, l.deps.Responder)
	cmds := append(builtins, variants...)

	if err := l.reg.Reload(cmds); err != nil {
		return fmt.Errorf("reload commands: %w", err)
	}
	l.deps.Logger.Printf("[INFO] Loaded %d commands (%d custom)", len(cmds), len(variants))
	return nil
}
