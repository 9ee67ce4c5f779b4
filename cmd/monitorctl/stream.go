package main

import (
	"context"

	"github.com/spf13/cobra"
)

// streamConfig holds the shared device flag for stream commands.
type streamConfig struct {
	deviceID string
}

func newStreamCmd() *cobra.Command {
	cfg := &streamConfig{}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Control a device's video stream",
	}
	cmd.PersistentFlags().StringVarP(&cfg.deviceID, "device", "d", "", "target device id (defaults to this installation's device)")

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the video stream",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			reply, err := d.monitorMgr.StartStream(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the video stream",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			reply, err := d.monitorMgr.StopStream(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the stream state",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			status, err := d.monitorMgr.StreamStatus(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		}),
	})

	return cmd
}
