package custom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/storage"
)

type AddCommand struct {
	Deps
}

func (c *AddCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "customcommands.add",
		Trigger:     "cc add",
		Grammar:     `(?:` + callGrammar + `(?:\s+(.+))?)?\s*`,
		Description: "Add a custom command",
		Category:    category,
		Usages: []command.Usage{
			{Description: "Add a custom command that replies with a fixed text", Parameters: []string{"command call", "response"}},
		},
		RequiresAuth: true,
	}
}

func (c *AddCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	msg := inv.Message
	call, response := strings.ToLower(inv.Arg(0)), strings.TrimSpace(inv.Arg(1))
	if call == "" || response == "" {
		return c.reply(ctx, msg, command.Reply{Embed: command.UsageEmbed(c.Definition())}, command.StatusFailure)
	}
	if c.Reserved != nil && c.Reserved.Reserved(call) {
		return c.reply(ctx, msg, command.Reply{
			Content:   fmt.Sprintf("`%s` is a builtin command and cannot be used as a custom command", call),
			Ephemeral: true,
		}, command.StatusFailure)
	}

	err := c.Store.AddCustomCommand(ctx, msg.GuildID, call, response, msg.AuthorID)
	if errors.Is(err, storage.ErrCommandExists) {
		return c.reply(ctx, msg, command.Reply{
			Content:   fmt.Sprintf("Custom command `%s` already exists", call),
			Ephemeral: true,
		}, command.StatusFailure)
	}
	if err != nil {
		return command.StatusFailure, fmt.Errorf("add custom command %s: %w", call, err)
	}
	return c.settingsChanged(ctx, msg, fmt.Sprintf("Custom command `%s` added", call))
}
