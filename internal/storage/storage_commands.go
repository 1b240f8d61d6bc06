package storage

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/keshon/genesis/internal/command"
)

// AppendCommandHistory keeps the last commandHistoryLimit executions per guild.
func (s *Storage) AppendCommandHistory(_ context.Context, rec command.HistoryRecord) error {
	return s.update(rec.GuildID, func(r *Record) error {
		r.CommandHistory = append(r.CommandHistory, CommandHistoryRecord{
			ChannelID: rec.ChannelID,
			UserID:    rec.UserID,
			Username:  rec.Username,
			Command:   rec.Command,
			Param:     rec.Content,
			Status:    rec.Status.String(),
			Datetime:  rec.At,
		})
		if n := len(r.CommandHistory); n > commandHistoryLimit {
			r.CommandHistory = r.CommandHistory[n-commandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) CommandHistory(_ context.Context, guildID string) ([]CommandHistoryRecord, error) {
	rec, err := s.view(guildID)
	if err != nil {
		return nil, err
	}
	return rec.CommandHistory, nil
}

// CustomCommands returns the custom commands of one guild.
func (s *Storage) CustomCommands(_ context.Context, guildID string) ([]CustomCommand, error) {
	rec, err := s.view(guildID)
	if err != nil {
		return nil, err
	}
	return rec.CustomCommands, nil
}

// AllCustomCommands returns the custom commands of every guild, ordered by
// guild then creation.
func (s *Storage) AllCustomCommands(ctx context.Context) ([]CustomCommand, error) {
	var out []CustomCommand
	for _, key := range s.ds.Keys() {
		if key == directMessageKey {
			continue
		}
		cmds, err := s.CustomCommands(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, cmds...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (s *Storage) AddCustomCommand(_ context.Context, guildID, call, response, createdBy string) error {
	call = strings.ToLower(call)
	return s.update(guildID, func(r *Record) error {
		for _, cc := range r.CustomCommands {
			if cc.Call == call {
				return ErrCommandExists
			}
		}
		r.CustomCommands = append(r.CustomCommands, CustomCommand{
			Call:      call,
			Response:  response,
			GuildID:   guildID,
			CreatedBy: createdBy,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

func (s *Storage) DeleteCustomCommand(_ context.Context, guildID, call string) error {
	call = strings.ToLower(call)
	return s.update(guildID, func(r *Record) error {
		for i, cc := range r.CustomCommands {
			if cc.Call == call {
				r.CustomCommands = append(r.CustomCommands[:i], r.CustomCommands[i+1:]...)
				return nil
			}
		}
		return ErrCommandNotFound
	})
}
