package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enerhub/enerhub/pkg/archive"
	"github.com/enerhub/enerhub/pkg/scheduler"
	"github.com/enerhub/enerhub/pkg/snapshot"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled data collection",
	Long: `Fetch energy prices and weather forecasts on the configured interval and,
when archival is enabled, upload each run's snapshots to Google Drive.
Runs until interrupted.`,
	RunE: runScheduled,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScheduled(cmd *cobra.Command, args []string) error {
	archiving := false

	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	if cfg.Fetch.ArchiveAfterFetch {
		archiving = true

		if err := cfg.Validate(true); err != nil {
			return err
		}
	}

	ctx := cmd.Context()

	writer := snapshot.NewWriter(log, cfg.Fetch.OutputDir)
	groups := snapshot.DefaultGroups(cfg.Fetch.Latitude, cfg.Fetch.Longitude)
	service := snapshot.NewService(log, writer, groups)

	var archiver *archive.Archiver
	if archiving {
		archiver, err = newArchiver(ctx, cfg)
		if err != nil {
			return err
		}
	}

	interval := time.Duration(cfg.Fetch.IntervalMinutes) * time.Minute

	sched := scheduler.New(log, service, archiver, interval)
	if err := sched.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.WithField("signal", sig).Info("Received shutdown signal")

	sched.Stop()

	return nil
}
