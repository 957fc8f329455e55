package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <glob>...",
	Short: "Archive snapshot files to Google Drive",
	Long: `Upload one or more local JSON snapshot files to Google Drive. Files named
<yymmdd>_<hhmmss>_<suffix>.json are placed under <root>/<year>/<month>/;
anything else lands in the root folder. Exits nonzero if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	paths, err := expandGlobs(args)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("no files found matching patterns")
	}

	ctx := cmd.Context()

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	log.WithField("files", len(paths)).Info("Uploading files to Google Drive")

	summary := archiver.UploadMany(ctx, paths)

	log.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Upload finished")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to upload", summary.Failed, summary.Attempted)
	}

	return nil
}

// expandGlobs resolves each pattern and returns the matched paths in a
// stable order. A literal path with no glob metacharacters passes through
// untouched so a missing file is reported per-file, not swallowed here.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})

	var paths []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		if matches == nil && !hasGlobMeta(pattern) {
			matches = []string{pattern}
		}

		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}

			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)

	return paths, nil
}

func hasGlobMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[':
			return true
		}
	}

	return false
}
