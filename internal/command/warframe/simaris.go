package warframe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/worldstate"
)

// SimarisCommand shows the current Sanctuary target.
type SimarisCommand struct {
	Deps
}

func (c *SimarisCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "warframe.worldstate.simaris",
		Trigger:     "simaris",
		Grammar:     platformGrammar,
		Description: "Display current Sanctuary status",
		Category:    category,
		Usages: []command.Usage{
			{Description: "Sanctuary status for this channel's platform"},
			{Description: "Sanctuary status on another platform", Parameters: []string{"on platform"}},
		},
		AllowDM: true,
	}
}

func (c *SimarisCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	ws, platform, err := c.worldState(ctx, inv)
	if errors.Is(err, worldstate.ErrUnknownPlatform) {
		return c.unknownPlatform(ctx, inv.Message, platform)
	}
	if err != nil {
		return command.StatusFailure, err
	}
	return c.respond(ctx, inv.Message, simarisEmbed(platform, ws.Simaris))
}

func simarisEmbed(platform string, s worldstate.Simaris) *command.Embed {
	e := &command.Embed{
		Title: fmt.Sprintf("Worldstate - Sanctuary (%s)", strings.ToUpper(platform)),
	}
	switch {
	case s.AsString != "":
		e.Description = s.AsString
	case s.Target != "":
		e.Description = "Simaris's target is " + s.Target
	default:
		e.Description = "Simaris has no target"
	}
	if s.Target != "" {
		state := "inactive"
		if s.IsTargetActive {
			state = "active"
		}
		e.Fields = append(e.Fields, command.Field{Name: "Target", Value: fmt.Sprintf("%s (%s)", s.Target, state), Inline: true})
	}
	return e
}
