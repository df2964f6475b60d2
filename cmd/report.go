// File: cmd/report.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/observability"
	"github.com/enricoisidori/threadscape/internal/reporting"
)

func newReportCmd() *cobra.Command {
	var runID string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render the artifacts for an archived run",
		Long:  "Loads a run from the archive (the latest one unless --run-id is given) and re-writes its run.json, metrics.csv and timeline.csv artifacts without re-analyzing the corpus.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			components, err := newComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if components.Store == nil {
				return fmt.Errorf("report requires an archive (hint: set THREADSCAPE_POSTGRES_URL)")
			}
			return renderArchivedRun(ctx, components.Store, runID, cfg, logger)
		},
	}

	reportCmd.Flags().StringVar(&runID, "run-id", "", "the archived run to render (default: the latest)")
	reportCmd.Flags().StringP("out", "o", "", "directory for run artifacts")

	return reportCmd
}

// renderArchivedRun loads the requested run (the latest one when runID is
// empty) and re-writes its artifacts.
func renderArchivedRun(ctx context.Context, archive schemas.RunStore, runID string, cfg *config.Config, logger *zap.Logger) error {
	var err error
	if runID == "" {
		if runID, err = archive.LatestRunID(ctx); err != nil {
			return fmt.Errorf("resolving latest run: %w", err)
		}
	}

	run, err := archive.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("loading run %s: %w", runID, err)
	}

	// Flags are recomputed against the current thresholds and clock; the
	// archived metric values stay untouched.
	reporting.Annotate(run, cfg.Flags, time.Now())
	return reporting.WriteArtifacts(cfg.Output.Dir, run, logger)
}
