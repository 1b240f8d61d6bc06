package core

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/genesis/internal/command"
)

type PingCommand struct {
	Responder command.Responder
	// Latency reports the gateway heartbeat latency. Optional.
	Latency func() time.Duration
}

func (c *PingCommand) Definition() *command.Definition {
	return &command.Definition{
		Name:        "core.ping",
		Trigger:     "ping",
		Description: "Check bot latency",
		Category:    "🕯️ Information",
		AllowDM:     true,
	}
}

func (c *PingCommand) Execute(ctx context.Context, inv *command.Invocation) (command.Status, error) {
	content := "🏓 Pong!"
	if c.Latency != nil {
		content = fmt.Sprintf("🏓 Pong! %dms", c.Latency().Milliseconds())
	}
	if err := c.Responder.Respond(ctx, inv.Message, command.Reply{Content: content}); err != nil {
		return command.StatusFailure, err
	}
	return command.StatusSuccess, nil
}
