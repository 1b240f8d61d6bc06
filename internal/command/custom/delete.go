package custom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/storage"
)

type DeleteCommand struct {
	Deps
}

func (c *DeleteCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "customcommands.delete",
		Trigger:     "cc delete",
		Grammar:     `(?:` + callGrammar + `)?\s*`,
		Description: "Delete a custom command",
		Category:    category,
		Usages: []command.Usage{
			{Description: "Delete a custom command", Parameters: []string{"command call"}},
		},
		RequiresAuth: true,
	}
}

// Execute without a call only shows the usage; the store is not touched.
func (c *DeleteCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	msg := inv.Message
	call := strings.ToLower(inv.Arg(0))
	if call == "" {
		return c.reply(ctx, msg, command.Reply{Embed: command.UsageEmbed(c.Definition())}, command.StatusFailure)
	}

	err := c.Store.DeleteCustomCommand(ctx, msg.GuildID, call)
	if errors.Is(err, storage.ErrCommandNotFound) {
		return c.reply(ctx, msg, command.Reply{
			Content:   fmt.Sprintf("No custom command `%s`", call),
			Ephemeral: true,
		}, command.StatusFailure)
	}
	if err != nil {
		return command.StatusFailure, fmt.Errorf("delete custom command %s: %w", call, err)
	}
	return c.settingsChanged(ctx, msg, fmt.Sprintf("Custom command `%s` deleted", call))
}
