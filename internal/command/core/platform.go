package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/worldstate"
)

// PlatformStore reads and writes the per channel platform setting.
type PlatformStore interface {
	ChannelPlatform(ctx context.Context, guildID, channelID string) (string, error)
	SetChannelPlatform(ctx context.Context, guildID, channelID, platform string) error
}

type PlatformCommand struct {
	Settings  PlatformStore
	Responder command.Responder
}

func (c *PlatformCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "settings.platform",
		Trigger:     "platform",
		Grammar:     `(?:\s+(\w+))?`,
		Description: "Change the platform for this channel",
		Category:    "⚙️ Settings",
		Usages: []command.Usage{
			{Description: "Show the platform of this channel"},
			{Description: "Set the platform of this channel", Parameters: []string{strings.Join(worldstate.Platforms, "|")}},
		},
		RequiresAuth: true,
	}
}

func (c *PlatformCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	msg := inv.Message
	platform := strings.ToLower(inv.Arg(0))

	if platform == "" {
		current, err := c.Settings.ChannelPlatform(ctx, msg.GuildID, msg.ChannelID)
		if err != nil {
			return command.StatusFailure, fmt.Errorf("read channel platform: %w", err)
		}
		return c.reply(ctx, msg, command.Reply{
			Content: fmt.Sprintf("Platform for this channel is **%s**", current),
		}, command.StatusSuccess)
	}

	if !worldstate.IsPlatform(platform) {
		return c.reply(ctx, msg, command.Reply{Embed: &command.Embed{
			Title:       "Unknown platform",
			Description: fmt.Sprintf("`%s` is not one of: %s", platform, strings.Join(worldstate.Platforms, ", ")),
		}}, command.StatusFailure)
	}

	if err := c.Settings.SetChannelPlatform(ctx, msg.GuildID, msg.ChannelID, platform); err != nil {
		return command.StatusFailure, fmt.Errorf("set channel platform: %w", err)
	}
	return c.reply(ctx, msg, command.Reply{
		Content:        fmt.Sprintf("Platform for this channel set to **%s**", platform),
		DeleteOriginal: true,
		Ephemeral:      true,
	}, command.StatusSuccess)
}

func (c *PlatformCommand) reply(ctx context.Context, msg *command.Message, r command.Reply, status command.Status) (command.Status, error) {
	if err := c.Responder.Respond(ctx, msg, r); err != nil {
		return command.StatusFailure, err
	}
	return status, nil
}
