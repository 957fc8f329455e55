package main

import (
	"context"
	"fmt"

	"github.com/enerhub/enerhub/pkg/archive"
	"github.com/enerhub/enerhub/pkg/config"
	"github.com/enerhub/enerhub/pkg/gdrive"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// loadConfig loads and validates configuration for a command. requireDrive
// makes a missing credential source a startup error, before any remote call.
func loadConfig(cmd *cobra.Command, requireDrive bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(requireDrive); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// The config file may set a log level; an explicit flag wins.
	if !cmd.Flags().Changed("log-level") && cfg.Global.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.Global.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q in config: %w", cfg.Global.LogLevel, err)
		}

		log.SetLevel(level)
	}

	return cfg, nil
}

// newArchiver builds the Drive-backed archiver from config.
func newArchiver(ctx context.Context, cfg *config.Config) (*archive.Archiver, error) {
	client, err := gdrive.New(ctx, log, &cfg.Drive)
	if err != nil {
		return nil, fmt.Errorf("connecting to Google Drive: %w", err)
	}

	return archive.New(log, client, archive.Options{
		RootFolderName: cfg.Drive.RootFolderName,
		RootFolderID:   cfg.Drive.RootFolderID,
		MaxAttempts:    cfg.Drive.MaxAttempts,
	}), nil
}
