package custom

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
)

type ListCommand struct {
	Deps
}

func (c *ListCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "customcommands.list",
		Trigger:     "cc list",
		Description: "List the custom commands of this server",
		Category:    category,
	}
}

func (c *ListCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	cmds, err := c.Store.CustomCommands(ctx, inv.Message.GuildID)
	if err != nil {
		return command.StatusFailure, fmt.Errorf("list custom commands: %w", err)
	}

	embed := &command.Embed{Title: "Custom Commands"}
	if len(cmds) == 0 {
		embed.Description = "No custom commands"
	} else {
		calls := make([]string, 0, len(cmds))
		for _, cc := range cmds {
			calls = append(calls, "`"+cc.Call+"`")
		}
		embed.Description = strings.Join(calls, "\n")
	}
	return c.reply(ctx, inv.Message, command.Reply{Embed: embed}, command.StatusSuccess)
}
