package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/babymonitor/go-monitor-client/api"
)

func newDeviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage camera and viewer devices",
	}

	cmd.AddCommand(newDeviceRegisterCmd())
	cmd.AddCommand(newDeviceListCmd())
	cmd.AddCommand(newDevicePairCmd())
	cmd.AddCommand(newDeviceUnpairCmd())
	cmd.AddCommand(newDeviceRemoveCmd())
	cmd.AddCommand(newDeviceRenameCmd())

	return cmd
}

// deviceRegisterConfig holds flags for device register.
type deviceRegisterConfig struct {
	name       string
	deviceType string
}

func newDeviceRegisterCmd() *cobra.Command {
	cfg := &deviceRegisterConfig{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register this installation as a camera or viewer device",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			device, err := d.monitorMgr.RegisterDevice(ctx, cfg.name, cfg.deviceType)
			if err != nil {
				return err
			}
			return printJSON(cmd, device)
		}),
	}

	cmd.Flags().StringVarP(&cfg.name, "name", "n", "", "device display name")
	cmd.Flags().StringVarP(&cfg.deviceType, "type", "t", api.DeviceTypeViewer, "device type (CAMERA or VIEWER)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newDeviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user's registered devices",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			devices, err := d.monitorMgr.Devices(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, devices)
		}),
	}
}

func newDevicePairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair <peer-device-id>",
		Short: "Pair this installation's device with a peer device",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error {
			reply, err := d.monitorMgr.PairDevice(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	}
}

func newDeviceUnpairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpair",
		Short: "Remove this installation's device pairing",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			reply, err := d.monitorMgr.UnpairDevice(ctx)
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	}
}

func newDeviceRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <device-id>",
		Short: "Delete a registered device",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error {
			reply, err := d.monitorMgr.RemoveDevice(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Println(reply.Status())
			return nil
		}),
	}
}

func newDeviceRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <device-id> <name>",
		Short: "Rename a registered device",
		Args:  cobra.ExactArgs(2),
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error {
			device, err := d.monitorMgr.RenameDevice(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, device)
		}),
	}
}
