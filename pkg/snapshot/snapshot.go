// Package snapshot assembles collector datasets into timestamped JSON
// documents on disk, the artifacts the archiver later ships to Drive.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/enerhub/enerhub/pkg/collector"
	"github.com/sirupsen/logrus"
)

// timestampLayout produces the yymmdd_hhmmss filename prefix the archiver
// derives year/month placement from.
const timestampLayout = "060102_150405"

// Document is one snapshot file: every dataset collected for a suffix in a
// single run, wrapped with the generation time.
type Document struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Datasets    map[string]*collector.Dataset `json:"datasets"`
}

// Writer writes snapshot documents into the output directory. Alongside each
// timestamped file it refreshes a stable <suffix>.json copy so downstream
// consumers always find the latest snapshot at a fixed path.
type Writer struct {
	log       logrus.FieldLogger
	outputDir string
	now       func() time.Time
}

func NewWriter(log logrus.FieldLogger, outputDir string) *Writer {
	return &Writer{
		log:       log.WithField("component", "snapshot-writer"),
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Write marshals doc and writes <timestamp>_<suffix>.json plus the stable
// copy. It returns the timestamped path; only that file gets archived.
func (w *Writer) Write(suffix string, doc *Document) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot %s: %w", suffix, err)
	}

	name := fmt.Sprintf("%s_%s.json", w.now().Format(timestampLayout), suffix)
	path := filepath.Join(w.outputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", name, err)
	}

	latest := filepath.Join(w.outputDir, suffix+".json")
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing latest copy %s: %w", latest, err)
	}

	w.log.WithFields(logrus.Fields{
		"file":     name,
		"datasets": len(doc.Datasets),
	}).Info("Wrote snapshot")

	return path, nil
}
