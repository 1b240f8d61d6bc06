// Package custom implements guild-defined text commands and the commands
// that manage them.
package custom

import (
	"context"
	"sort"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/storage"
)

const category = "🧩 Custom Commands"

// callGrammar is the call argument shared by cc add and cc delete, so every
// call that can be added can also be deleted.
const callGrammar = `\s+(\S+)`

// Store persists custom commands per guild.
type Store interface {
	CustomCommands(ctx context.Context, guildID string) ([]storage.CustomCommand, error)
	AddCustomCommand(ctx context.Context, guildID, call, response, createdBy string) error
	DeleteCustomCommand(ctx context.Context, guildID, call string) error
}

// Reloader rebuilds the live command set after custom commands changed.
type Reloader interface {
	ReloadCommands(ctx context.Context) error
}

// Reserver reports whether a call is already taken by a builtin command.
type Reserver interface {
	Reserved(call string) bool
}

// Deps are the collaborators of the management commands. Reserved is
// optional.
type Deps struct {
	Store     Store
	Reloader  Reloader
	Reserved  Reserver
	Responder command.Responder
}

func (d Deps) reply(ctx context.Context, msg *command.Message, r command.Reply, status command.Status) (command.Status, error) {
	if err := d.Responder.Respond(ctx, msg, r); err != nil {
		return command.StatusFailure, err
	}
	return status, nil
}

// settingsChanged reloads the command set and confirms the change. The
// invoking message is removed and the confirmation expires.
func (d Deps) settingsChanged(ctx context.Context, msg *command.Message, text string) (command.Status, error) {
	if err := d.Reloader.ReloadCommands(ctx); err != nil {
		return command.StatusFailure, err
	}
	return d.reply(ctx, msg, command.Reply{
		Content:        "✅ " + text,
		DeleteOriginal: true,
		Ephemeral:      true,
	}, command.StatusSuccess)
}

// VariantCommand answers one call with the response stored by the guild
// the message came from.
type VariantCommand struct {
	Call      string
	Responses map[string]string // guild id -> response
	Responder command.Responder
}

func (c *VariantCommand) Definition() *command.Definition {
	// No category: variants are listed by cc list, not by help.
	return &command.Definition{
		Name:    "customcommands.custom." + c.Call,
		Trigger: c.Call,
	}
}

func (c *VariantCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	response, ok := c.Responses[inv.Message.GuildID]
	if !ok {
		return command.StatusFailure, nil
	}
	if err := c.Responder.Respond(ctx, inv.Message, command.Reply{Content: response}); err != nil {
		return command.StatusFailure, err
	}
	return command.StatusSuccess, nil
}

// Variants builds one command per distinct call, sorted by call.
func Variants(stored []storage.CustomCommand, responder command.Responder) []command.Command {
	byCall := make(map[string]*VariantCommand)
	for _, cc := range stored {
		v, ok := byCall[cc.Call]
		if !ok {
			v = &VariantCommand{Call: cc.Call, Responses: make(map[string]string), Responder: responder}
			byCall[cc.Call] = v
		}
		v.Responses[cc.GuildID] = cc.Response
	}

	calls := make([]string, 0, len(byCall))
	for call := range byCall {
		calls = append(calls, call)
	}
	sort.Strings(calls)

	out := make([]command.Command, 0, len(calls))
	for _, call := range calls {
		out = append(out, byCall[call])
	}
	return out
}
