package main

import (
	"context"

	"github.com/spf13/cobra"
)

// statusConfig holds flags for the status command.
type statusConfig struct {
	watch bool
}

func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the local session state",
		Long: `Show the persisted session (tokens redacted). With --watch, keep
printing a new snapshot every time the session changes.`,
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			if !cfg.watch {
				current, err := d.store.Read(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, redacted(current))
			}

			snapshots, stop, err := d.store.Watch(ctx)
			if err != nil {
				return err
			}
			defer stop()
			for snapshot := range snapshots {
				if err := printJSON(cmd, redacted(snapshot)); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&cfg.watch, "watch", "w", false, "stream session changes until interrupted")

	return cmd
}
