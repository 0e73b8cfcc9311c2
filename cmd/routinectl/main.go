// Package main provides routinectl, an offline tool for the routine store:
// backups, calendar files, tokens and a text playback of a routine.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"alcyxob/routine-builder/internal/calendar"
	"alcyxob/routine-builder/internal/config"
	"alcyxob/routine-builder/internal/observability"
	"alcyxob/routine-builder/internal/persist"
	"alcyxob/routine-builder/internal/repository/backend"
	"alcyxob/routine-builder/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// configDir is set by the --config-dir flag.
	configDir string
	// owner is set by the --owner flag; empty means server.default_owner.
	owner string

	cfg        config.Config
	app        *services
	closeStore backend.Closer
)

// services is the subset of the server's service graph the CLI drives.
type services struct {
	auth       service.AuthService
	workspaces service.WorkspaceService
	playback   service.PlaybackService
	exports    service.ExportService
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "routinectl",
	Short: "routinectl manages a routine builder store",
	Long: `routinectl works directly against the configured store backend
(file, redis, mongo or postgres). It reads the same config.yaml and
environment variables as the server.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openApp,
	PersistentPostRunE: closeApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.yaml")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "", "workspace owner (default: server.default_owner)")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(icsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statusCmd)
}

// openApp loads config, opens the store and builds the services.
func openApp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Commands print to stdout, so logs stay quiet unless asked for.
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	observability.SetupLogging(cfg.Log.Level, true)
	if owner == "" {
		owner = cfg.Server.DefaultOwner
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	store, closer, err := backend.Open(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closeStore = closer

	workspaces := service.NewWorkspaceService(store, []persist.Option{
		persist.WithDelay(cfg.Sync.Debounce),
		persist.WithWriteTimeout(cfg.Sync.WriteTimeout),
	})
	app = &services{
		auth:       service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration),
		workspaces: workspaces,
		playback:   service.NewPlaybackService(workspaces),
		exports: service.NewExportService(workspaces, nil, service.ExportOptions{
			Calendar: calendar.Options{StartTime: cfg.Calendar.StartTime, ProdID: cfg.Calendar.ProdID},
		}),
	}
	return nil
}

// closeApp writes pending edits and releases the store.
func closeApp(cmd *cobra.Command, args []string) error {
	if app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sync.WriteTimeout+5*time.Second)
	defer cancel()
	err := app.workspaces.Shutdown(ctx)
	if closeStore != nil {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}
