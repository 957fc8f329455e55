package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify Google Drive connectivity",
	Long: `Connect to Google Drive with the configured credentials and resolve the
archive root folder, creating it if needed. Exits nonzero on failure.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	rootID, err := archiver.ResolveRoot(ctx)
	if err != nil {
		return fmt.Errorf("resolving root folder: %w", err)
	}

	log.WithField("root_folder_id", rootID).Info("Successfully connected to Google Drive")

	return nil
}
