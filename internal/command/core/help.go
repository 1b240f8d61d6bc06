package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/version"
)

// Lister exposes the registered commands in registration order.
type Lister interface {
	Commands() []command.Command
}

type HelpCommand struct {
	Commands  Lister
	Responder command.Responder
}

func (c *HelpCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "core.help",
		Trigger:     "help",
		Description: "Get a list of available commands",
		Category:    "🕯️ Information",
		AllowDM:     true,
	}
}

func (c *HelpCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	embed := &command.Embed{
		Title:       version.AppName + " Help",
		Description: buildHelpByCategory(c.Commands.Commands()),
	}
	if err := c.Responder.Respond(ctx, inv.Message, command.Reply{Embed: embed}); err != nil {
		return command.StatusFailure, fmt.Errorf("send help: %w", err)
	}
	return command.StatusSuccess, nil
}

// buildHelpByCategory groups commands by category, ordered by
// config.CategoryWeights. Commands without a category are not listed.
func buildHelpByCategory(all []command.Command) string {
	categoryMap := make(map[string][]*command.Definition)
	for _, cmd := range all {
		def := cmd.Definition()
		if def.Category == "" {
			continue
		}
		categoryMap[def.Category] = append(categoryMap[def.Category], def)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeights[cats[i]], config.CategoryWeights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		defs := categoryMap[cat]
		sort.SliceStable(defs, func(i, j int) bool { return defs[i].Trigger < defs[j].Trigger })
		for _, def := range defs {
			sb.WriteString(fmt.Sprintf("`%s` - %s\n", def.Trigger, def.Description))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
