package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/babymonitor/go-monitor-client/api/rest"
	"github.com/babymonitor/go-monitor-client/auth"
	"github.com/babymonitor/go-monitor-client/internal/config"
	"github.com/babymonitor/go-monitor-client/internal/utils"
	"github.com/babymonitor/go-monitor-client/monitor"
	"github.com/babymonitor/go-monitor-client/session"
	"github.com/babymonitor/go-monitor-client/session/sqlite"
)

// Global flags available to all subcommands.
var (
	verbose   bool
	serverURL string
)

const sessionDBName = "session.db"

// NewRootCmd creates the root command for the monitorctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitorctl",
		Short: "Baby monitor client",
		Long: `monitorctl is the command-line client for the baby monitor backend:
it manages the local session, registers and pairs camera/viewer devices,
and controls video streams and two-way audio.`,
		Run: func(cmd *cobra.Command, _ []string) {
			figure.NewFigure("monitorctl", "cybermedium", true).Print()
			fmt.Println()
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (persisted for later runs)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDeviceCmd())
	cmd.AddCommand(newStreamCmd())
	cmd.AddCommand(newAudioCmd())

	return cmd
}

// deps bundles everything a subcommand needs.
type deps struct {
	cfg        *config.Config
	logger     zerolog.Logger
	store      *sqlite.Store
	authMgr    *auth.Manager
	monitorMgr *monitor.Manager
}

// buildDeps opens the session store and wires the REST client and managers.
// Callers must Close the result.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := os.MkdirAll(cfg.DataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[buildDeps] create data folder")
	}
	store, err := sqlite.Open(filepath.Join(cfg.DataFolder, sessionDBName), logger)
	if err != nil {
		return nil, err
	}

	if err := seedServerURL(ctx, store, cfg); err != nil {
		_ = store.Close()
		return nil, err
	}

	baseURL := func(ctx context.Context) (string, error) {
		current, err := store.Read(ctx)
		if err != nil {
			return "", err
		}
		return current.ServerURL, nil
	}
	client, err := rest.New(baseURL, rest.WithTimeout(cfg.HTTPTimeout), rest.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	authMgr, err := auth.NewManager(client, store, auth.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	monitorMgr, err := monitor.NewManager(client, store, monitor.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &deps{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		authMgr:    authMgr,
		monitorMgr: monitorMgr,
	}, nil
}

// seedServerURL persists the --server flag, or the env-configured URL when
// the store still holds the built-in default. A previously persisted URL
// otherwise wins.
func seedServerURL(ctx context.Context, store *sqlite.Store, cfg *config.Config) error {
	if serverURL != "" {
		return store.Update(ctx, session.Fields{ServerURL: utils.Ptr(serverURL)})
	}
	current, err := store.Read(ctx)
	if err != nil {
		return err
	}
	if current.ServerURL == session.DefaultServerURL && cfg.ServerURL != session.DefaultServerURL {
		return store.Update(ctx, session.Fields{ServerURL: utils.Ptr(cfg.ServerURL)})
	}
	return nil
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("closing session store")
	}
}

// withDeps wraps a RunE body with dependency setup and teardown.
func withDeps(run func(ctx context.Context, cmd *cobra.Command, d *deps, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.Close()
		return run(ctx, cmd, d, args)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[printJSON] encode")
	}
	cmd.Println(string(encoded))
	return nil
}

// redacted hides token material for display.
func redacted(s session.Session) map[string]any {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return "(set)"
	}
	return map[string]any{
		session.KeyIsLoggedIn:   s.IsLoggedIn,
		session.KeyUserID:       s.UserID,
		session.KeyUsername:     s.Username,
		session.KeyEmail:        s.Email,
		session.KeyDisplayName:  s.DisplayName,
		session.KeyAccessToken:  mask(s.AccessToken),
		session.KeyRefreshToken: mask(s.RefreshToken),
		session.KeyDeviceID:     s.DeviceID,
		session.KeyServerURL:    s.ServerURL,
	}
}
