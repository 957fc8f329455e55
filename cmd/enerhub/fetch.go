package main

import (
	"fmt"

	"github.com/enerhub/enerhub/pkg/snapshot"
	"github.com/spf13/cobra"
)

var fetchArchive bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect data and write snapshot files once",
	Long: `Pull day-ahead energy prices and weather forecasts from the configured
sources and write timestamped JSON snapshots to the output directory.
With --archive the written files are uploaded to Google Drive afterwards.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchArchive, "archive", false,
		"Upload the written snapshots to Google Drive")
}

func runFetch(cmd *cobra.Command, args []string) error {
	archiving := fetchArchive

	cfg, err := loadConfig(cmd, archiving)
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

	written, err := service.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("fetch run failed: %w", err)
	}

	if len(written) == 0 {
		return fmt.Errorf("no snapshots written: all collectors failed")
	}

	log.WithField("files", len(written)).Info("Fetch complete")

	if !archiving {
		return nil
	}

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	summary := archiver.UploadMany(ctx, written)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed to archive", summary.Failed, summary.Attempted)
	}

	return nil
}
