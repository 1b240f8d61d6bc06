// Command cli runs the bot's commands and trackers from a terminal, without
// a Discord connection.
package main

import (
	"fmt"
	"os"

	"github.com/keshon/genesis/internal/config"
	v "github.com/keshon/genesis/internal/version"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "genesis-cli",
		Short:         v.AppName + " command line tools",
		Version:       v.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.New()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		newDispatchCommand(conf),
		newTrackersCommand(conf),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERR]", err)
		os.Exit(1)
	}
}
