// File: cmd/analyze.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/corpus"
	"github.com/enricoisidori/threadscape/internal/engine"
	"github.com/enricoisidori/threadscape/internal/observability"
	"github.com/enricoisidori/threadscape/internal/reporting"
)

func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the metric battery over a corpus of project documents",
		Long:  "Scans the input directory for project documents, computes the per-project metric battery and the cohort summary, writes the run artifacts and, when an archive is configured, stores the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			components, err := newComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			run, err := runBatch(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return persistRun(ctx, components, cfg, logger, run)
		},
	}

	flags := analyzeCmd.Flags()
	flags.StringP("input", "i", "", "corpus directory holding the project documents")
	flags.BoolP("recursive", "r", false, "descend into subdirectories of the corpus")
	flags.StringSlice("ignore", nil, "glob patterns of document names to skip")
	flags.StringP("out", "o", "", "directory for run artifacts")

	return analyzeCmd
}

// runBatch executes one scan, analyze, aggregate pass and stamps the
// reporting flags.
func runBatch(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*schemas.RunResult, error) {
	sources, err := corpus.NewScanner(cfg.Input.Dir, cfg.Input.Recursive, cfg.Input.Ignore, logger).Scan()
	if err != nil {
		return nil, err
	}

	run := engine.Run(ctx, cfg, logger, sources)
	reporting.Annotate(run, cfg.Flags, time.Now())

	logger.Info("Cohort summary",
		zap.Int("projects", len(run.Projects)),
		zap.Int("errors", len(run.Errors)),
		zap.Int("aggregated_metrics", len(run.Cohort.Metrics)),
		zap.Int("timeline_weeks", len(run.Cohort.Timeline)),
	)
	return run, nil
}

// persistRun writes the artifacts and archives the run when a store is
// configured.
func persistRun(ctx context.Context, components *Components, cfg *config.Config, logger *zap.Logger, run *schemas.RunResult) error {
	if err := reporting.WriteArtifacts(cfg.Output.Dir, run, logger); err != nil {
		return err
	}
	if components.Store != nil {
		if err := components.Store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("archiving run %s: %w", run.RunID, err)
		}
		logger.Info("Run archived", zap.String("run_id", run.RunID))
	}
	return nil
}
