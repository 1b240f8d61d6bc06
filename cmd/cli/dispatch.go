package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/commands"
	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/storage"
	"github.com/keshon/genesis/internal/worldstate"

	"github.com/spf13/cobra"
)

func newDispatchCommand(conf func() *config.Config) *cobra.Command {
	var (
		channelID string
		guildID   string
		dm        bool
		level     string
	)

	cmd := &cobra.Command{
		Use:     "dispatch <text>",
		Short:   "Run a chat command locally and print the reply",
		Example: `genesis-cli dispatch "invasions on pc" --guild 123 --level manager`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conf()
			store, err := storage.New(cfg.StoragePath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

			reg := command.NewRegistry()
			d := command.NewDispatcher(reg, command.WithLogger(logger))
			d.Use(command.WithCommandLog(store, logger))
			loader := commands.NewLoader(reg, commands.Deps{
				Settings:  store,
				Cache:     worldstate.NewCache(cfg.WorldStateURL, cfg.WorldStateTTL),
				Responder: consoleResponder{w: out},
				Logger:    logger,
			})
			if err := loader.ReloadCommands(cmd.Context()); err != nil {
				return err
			}

			msg := &command.Message{
				Content:       strings.TrimSpace(strings.Join(args, " ")),
				ChannelID:     channelID,
				AuthorID:      "cli",
				AuthorName:    "cli",
				AuthorLevel:   command.ParseLevel(level),
				DirectMessage: dm,
			}
			if !dm {
				msg.GuildID = guildID
			}

			status := d.Dispatch(cmd.Context(), msg)
			fmt.Fprintf(out, "status: %s\n", status)
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel", "cli", "channel id the message is sent in")
	cmd.Flags().StringVar(&guildID, "guild", "cli", "guild id the message is sent in")
	cmd.Flags().BoolVar(&dm, "dm", false, "send as a direct message")
	cmd.Flags().StringVar(&level, "level", "member", "author level: member, manager or owner")
	return cmd
}

// consoleResponder prints replies as plain text.
type consoleResponder struct {
	w io.Writer
}

func (c consoleResponder) Respond(_ context.Context, _ *command.Message, reply command.Reply) error {
	_, err := io.WriteString(c.w, renderText(reply))
	return err
}

func renderText(reply command.Reply) string {
	var sb strings.Builder
	if reply.Content != "" {
		sb.WriteString(reply.Content + "\n")
	}
	if e := reply.Embed; e != nil {
		if e.Title != "" {
			sb.WriteString("== " + e.Title + " ==\n")
		}
		if e.Description != "" {
			sb.WriteString(e.Description + "\n")
		}
		for _, f := range e.Fields {
			if f.Name != "" && f.Name != "_ _" {
				sb.WriteString("* " + f.Name + "\n")
			}
			sb.WriteString("  " + strings.ReplaceAll(f.Value, "\n", "\n  ") + "\n")
		}
	}
	return sb.String()
}
