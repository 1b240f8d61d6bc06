// Package warframe holds the world-state commands.
package warframe

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/worldstate"
)

const category = "🌍 Worldstate"

// platformGrammar accepts an optional "on <platform>" suffix. The class
// covers the letters of every name in worldstate.Platforms; unknown names
// that fit it get an "Unknown platform" reply.
const platformGrammar = `(?:\s+on\s+([pcsxbwi14]{2,3}))?`

// PlatformSource resolves the platform configured for a channel.
type PlatformSource interface {
	ChannelPlatform(ctx context.Context, guildID, channelID string) (string, error)
}

// WorldStates serves world-state documents per platform.
type WorldStates interface {
	DataJSON(ctx context.Context, platform string) (*worldstate.WorldState, error)
}

// Deps are the collaborators of every world-state command.
type Deps struct {
	Settings  PlatformSource
	Cache     WorldStates
	Responder command.Responder
}

// worldState resolves the platform (explicit argument first, then the
// channel setting) and loads its world-state.
func (d Deps) worldState(ctx context.Context, inv *command.Invocation) (*worldstate.WorldState, string, error) {
	platform := strings.ToLower(inv.Arg(0))
	if platform == "" {
		p, err := d.Settings.ChannelPlatform(ctx, inv.Message.GuildID, inv.Message.ChannelID)
		if err != nil {
			return nil, "", fmt.Errorf("read channel platform: %w", err)
		}
		platform = p
	}

	ws, err := d.Cache.DataJSON(ctx, platform)
	if err != nil {
		return nil, platform, err
	}
	return ws, platform, nil
}

// respond sends embed as the reply.
func (d Deps) respond(ctx context.Context, msg *command.Message, embed *command.Embed) (command.Status, error) {
	if err := d.Responder.Respond(ctx, msg, command.Reply{Embed: embed}); err != nil {
		return command.StatusFailure, err
	}
	return command.StatusSuccess, nil
}

func (d Deps) unknownPlatform(ctx context.Context, msg *command.Message, platform string) (command.Status, error) {
	_, err := d.respond(ctx, msg, &command.Embed{
		Title:       "Unknown platform",
		Description: fmt.Sprintf("`%s` is not one of: %s", platform, strings.Join(worldstate.Platforms, ", ")),
	})
	return command.StatusFailure, err
}
