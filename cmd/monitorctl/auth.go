package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/babymonitor/go-monitor-client/api"
	"github.com/babymonitor/go-monitor-client/internal/utils"
)

// loginConfig holds flags for the login command.
type loginConfig struct {
	username   string
	password   string
	rememberMe bool
}

func newLoginCmd() *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			result, err := d.authMgr.Login(ctx, api.LoginRequest{
				Username:   cfg.username,
				Password:   cfg.password,
				RememberMe: cfg.rememberMe,
			})
			if err != nil {
				return err
			}
			if result.User != nil {
				cmd.Printf("logged in as %s\n", result.User.Username)
			} else {
				cmd.Println("logged in")
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&cfg.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&cfg.password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&cfg.rememberMe, "remember", false, "request a long-lived session")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// registerConfig holds flags for the register command.
type registerConfig struct {
	username    string
	email       string
	password    string
	displayName string
}

func newRegisterCmd() *cobra.Command {
	cfg := &registerConfig{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and persist the session",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			request := api.RegisterRequest{
				Username: cfg.username,
				Email:    cfg.email,
				Password: cfg.password,
			}
			if cfg.displayName != "" {
				request.DisplayName = utils.Ptr(cfg.displayName)
			}
			if _, err := d.authMgr.Register(ctx, request); err != nil {
				return err
			}
			cmd.Printf("registered %s\n", cfg.username)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&cfg.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&cfg.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&cfg.password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&cfg.displayName, "display-name", "", "display name (optional)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session remotely and clear it locally",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			if err := d.authMgr.Logout(ctx); err != nil {
				return err
			}
			cmd.Println("logged out")
			return nil
		}),
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new token pair",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			if _, err := d.authMgr.RefreshToken(ctx); err != nil {
				return err
			}
			cmd.Println("tokens refreshed")
			return nil
		}),
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Fetch the current user's profile",
		RunE: withDeps(func(ctx context.Context, cmd *cobra.Command, d *deps, _ []string) error {
			user, err := d.authMgr.GetProfile(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		}),
	}
}
