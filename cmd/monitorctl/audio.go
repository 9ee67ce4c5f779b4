package main

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// audioConfig holds the shared device flag for audio commands.
type audioConfig struct {
	deviceID string
}

func newAudioCmd() *cobra.Command {
	cfg := &audioConfig{}

	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Control a device's audio channel",
	}
	cmd.PersistentFlags().StringVarP(&cfg.deviceID, "device", "d", "", "target device id (defaults to this installation's device)")

	cmd.AddCommand(&cobra.Command{
		Use:   "talk",
		Short: "Open the talkback channel",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			reply, err := d.monitorMgr.StartTalk(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Close the talkback channel",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			reply, err := d.monitorMgr.StopTalk(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the audio state",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			status, err := d.monitorMgr.AudioStatus(ctx, cfg.deviceID)
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		}),
	})

	muteCmd := &cobra.Command{
		Use:   "mute <on|off>",
		Short: "Mute or unmute the device",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error {
			var muted bool
			switch args[0] {
			case "on":
				muted = true
			case "off":
				muted = false
			default:
				return errors.Errorf("expected on or off, got %q", args[0])
			}
			reply, err := d.monitorMgr.Mute(ctx, cfg.deviceID, muted)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	}
	cmd.AddCommand(muteCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "volume <0-100>",
		Short: "Set the playback volume",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error {
			volume, err := strconv.Atoi(args[0])
			if err != nil || volume < 0 || volume > 100 {
				return errors.Errorf("volume must be an integer between 0 and 100, got %q", args[0])
			}
			reply, err := d.monitorMgr.SetVolume(ctx, cfg.deviceID, volume)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	})

	return cmd
}
