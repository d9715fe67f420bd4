package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lokhor/cleaning-scheduler/internal/app"
	"github.com/lokhor/cleaning-scheduler/internal/catalog"
	"github.com/lokhor/cleaning-scheduler/internal/config"
	"github.com/lokhor/cleaning-scheduler/internal/journal"
	"github.com/lokhor/cleaning-scheduler/internal/keep"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

var Version = "dev"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:           "chorewheel",
		Short:         "Household chore scheduling and checklist sync",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./chorewheel.yaml", "path to config yaml")

	rootCmd.AddCommand(runCmd(&cfgPath))
	rootCmd.AddCommand(resetDatesCmd(&cfgPath))
	rootCmd.AddCommand(serveCmd(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Perform one full day's scheduling pass and sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, cfg, cleanup, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer cleanup()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			return a.RunOnce(ctx, catalog.Today(loc))
		},
	}
}

func resetDatesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-dates",
		Short: "Clear every task's last-assigned date (marks everything due)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			log, closeLog, err := logx.Open(logCfg(cfg))
			if err != nil {
				return err
			}
			defer closeLog()

			store := catalog.NewStore(cfg.Catalog, log)
			snap, err := store.Load()
			if err != nil {
				return err
			}
			snap.ResetDueDates()
			if err := store.Save(snap); err != nil {
				return err
			}
			log.Info("due dates reset", logx.Int("tasks", len(snap.Tasks)))
			return nil
		},
	}
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run forever, triggering the daily pass on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, _, cleanup, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.Serve(ctx)
		},
	}
}

func buildApp(cfgPath string) (*app.App, *config.Config, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, closeLog, err := logx.Open(logCfg(cfg))
	if err != nil {
		return nil, nil, nil, err
	}

	timeout, err := cfg.KeepTimeout()
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	client := keep.NewHTTPClient(keep.HTTPConfig{
		BaseURL:    cfg.Keep.BaseURL,
		Token:      cfg.Keep.Token,
		Email:      cfg.Keep.Email,
		Password:   cfg.Keep.Password,
		RatePerSec: cfg.Keep.RatePerSec,
		Timeout:    timeout,
	}, log)

	busy, err := cfg.JournalBusyTimeout()
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	jstore, err := journal.Open(journal.Config{
		Driver:      cfg.Journal.Driver,
		Path:        cfg.Journal.Path,
		BusyTimeout: busy,
	}, log)
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if jstore != nil {
			_ = jstore.Close()
		}
		_ = closeLog()
	}
	return app.New(cfg, log, client, jstore), cfg, cleanup, nil
}

func logCfg(cfg *config.Config) logx.Config {
	console := true
	if cfg.Logging.Console != nil {
		console = *cfg.Logging.Console
	}
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
