package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// Artifact file names under the output directory.
const (
	RunArtifact      = "run.json"
	MetricsArtifact  = "metrics.csv"
	TimelineArtifact = "timeline.csv"
)

// WriteArtifacts renders the run into dir, creating the directory when
// missing. Existing artifacts are overwritten.
func WriteArtifacts(dir string, run *schemas.RunResult, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	artifacts := []struct {
		name   string
		render func(io.Writer) error
	}{
		{RunArtifact, func(w io.Writer) error { return WriteRunJSON(w, run) }},
		{MetricsArtifact, func(w io.Writer) error { return WriteMetricsCSV(w, run.Projects) }},
		{TimelineArtifact, func(w io.Writer) error { return WriteTimelineCSV(w, run.Cohort) }},
	}

	for _, a := range artifacts {
		path := filepath.Join(dir, a.name)
		if err := writeFile(path, a.render); err != nil {
			return err
		}
		logger.Debug("Artifact written", zap.String("path", path))
	}

	logger.Info("Artifacts written",
		zap.String("dir", dir),
		zap.String("run_id", run.RunID),
		zap.Int("projects", len(run.Projects)),
	)
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
