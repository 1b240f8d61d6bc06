package warframe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/worldstate"
)

// InvasionsCommand lists the invasions that are still running.
type InvasionsCommand struct {
	Deps
}

func (c *InvasionsCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "warframe.worldstate.invasions",
		Trigger:     "invasion",
		Grammar:     "s?" + platformGrammar,
		Description: "Display the currently active Invasions",
		Category:    category,
		Usages: []command.Usage{
			{Description: "Invasions for this channel's platform"},
			{Description: "Invasions on another platform", Parameters: []string{"on platform"}},
		},
		AllowDM: true,
	}
}

func (c *InvasionsCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	ws, platform, err := c.worldState(ctx, inv)
	if errors.Is(err, worldstate.ErrUnknownPlatform) {
		return c.unknownPlatform(ctx, inv.Message, platform)
	}
	if err != nil {
		return command.StatusFailure, err
	}
	return c.respond(ctx, inv.Message, invasionEmbed(platform, ws.ActiveInvasions()))
}

func invasionEmbed(platform string, invasions []worldstate.Invasion) *command.Embed {
	e := &command.Embed{
		Title:       fmt.Sprintf("Worldstate - Invasions (%s)", strings.ToUpper(platform)),
		Description: "Currently in-progress invasions:",
	}
	if len(invasions) == 0 {
		e.Description = "Currently no invasions"
		return e
	}
	for _, inv := range invasions {
		value := fmt.Sprintf("%s vs %s", side(inv.AttackingFaction, inv.AttackerReward), side(inv.DefendingFaction, inv.DefenderReward))
		value += fmt.Sprintf("\n%.2f%% complete", inv.Completion)
		if inv.Eta != "" {
			value += " | ETA " + inv.Eta
		}
		e.Fields = append(e.Fields, command.Field{
			Name:  fmt.Sprintf("%s on %s", inv.Desc, inv.Node),
			Value: value,
		})
	}
	return e
}

func side(faction string, reward worldstate.Reward) string {
	if reward.AsString == "" {
		return faction
	}
	return fmt.Sprintf("%s (%s)", faction, reward.AsString)
}
