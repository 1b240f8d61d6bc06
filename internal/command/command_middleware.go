package command

import (
	"context"
	"log"
	"time"
)

// HandlerFunc runs a matched and authorized command.
type HandlerFunc func(ctx context.Context, cmd Command, inv *Invocation) (Status, error)

// Middleware wraps command execution (logging, metrics, history).
// It only sees commands that already passed authorization.
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies middlewares in order; the first in the list is the outermost.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func execute(ctx context.Context, cmd Command, inv *Invocation) (Status, error) {
	return cmd.Execute(ctx, inv)
}

// HistoryRecord is one executed command.
type HistoryRecord struct {
	GuildID   string
	ChannelID string
	UserID    string
	Username  string
	Command   string
	Content   string
	Status    Status
	At        time.Time
}

// HistoryRecorder persists command history.
type HistoryRecorder interface {
	AppendCommandHistory(ctx context.Context, rec HistoryRecord) error
}

// WithCommandLog records every execution after it finished. Recording
// failures are logged and never change the command's status.
func WithCommandLog(rec HistoryRecorder, logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command, inv *Invocation) (Status, error) {
			status, err := next(ctx, cmd, inv)

			msg := inv.Message
			if e := rec.AppendCommandHistory(ctx, HistoryRecord{
				GuildID:   msg.GuildID,
				ChannelID: msg.ChannelID,
				UserID:    msg.AuthorID,
				Username:  msg.AuthorName,
				Command:   cmd.Definition().Name,
				Content:   msg.Content,
				Status:    status,
				At:        time.Now().UTC(),
			}); e != nil {
				logger.Printf("[WARN] Failed to log command %s: %v", cmd.Definition().Name, e)
			}
			return status, err
		}
	}
}
