package main

import (
	"context"
	"fmt"
	"log"
	"text/tabwriter"

	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/tracker"

	"github.com/spf13/cobra"
)

func newTrackersCommand(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trackers",
		Short: "Inspect and push guild count trackers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTrackersListCommand(conf), newTrackersPushCommand(conf))
	return cmd
}

func newTrackersListCommand(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracker destinations and whether they are configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tENABLED\tINTERVAL\tENDPOINT")
			for _, d := range tracker.Destinations(conf().Trackers) {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%v\t%s\n", d.Name, d.Kind, d.Enabled, d.Interval, d.Endpoint)
			}
			return tw.Flush()
		},
	}
}

func newTrackersPushCommand(conf func() *config.Config) *cobra.Command {
	var guilds int

	cmd := &cobra.Command{
		Use:     "push",
		Short:   "Push a guild count to every configured tracker once",
		Example: `genesis-cli trackers push --guilds 1200`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guilds < 0 {
				return fmt.Errorf("--guilds must not be negative")
			}
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			r := tracker.New(conf().Trackers, tracker.Shard{ID: 0, Count: 1}, fixedCount(guilds), tracker.WithLogger(logger))
			r.UpdateOnDemand(cmd.Context(), guilds)
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d guild(s)\n", guilds)
			return nil
		},
	}
	cmd.Flags().IntVar(&guilds, "guilds", 0, "guild count to report")
	return cmd
}

// fixedCount is a guild source that always reports the same count.
type fixedCount int

func (f fixedCount) LocalGuildCount() int { return int(f) }

func (f fixedCount) CrossShardGuildCounts(context.Context) ([]int, error) {
	return []int{int(f)}, nil
}

func (f fixedCount) Username() string { return "cli" }
