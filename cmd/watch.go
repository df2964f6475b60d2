// File: cmd/watch.go
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/observability"
	"github.com/enricoisidori/threadscape/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis whenever the corpus changes",
		Long:  "Runs one analysis pass, then watches the corpus directory and re-runs the batch after each settled burst of document changes until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			components, err := newComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			// The first pass must succeed; it proves the corpus and the
			// output directory are usable before we settle in to wait.
			run, err := runBatch(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if err := persistRun(ctx, components, cfg, logger, run); err != nil {
				return err
			}

			w, err := watcher.New(cfg.Input.Dir, watcher.DefaultDebounce, logger)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			for {
				select {
				case <-ctx.Done():
					logger.Info("Watch stopped")
					return nil
				case _, ok := <-w.Triggers():
					if !ok {
						return nil
					}
					run, err := runBatch(ctx, cfg, logger)
					if err != nil {
						// A corpus mid-sync can scan dirty; keep watching.
						logger.Error("Batch failed", zap.Error(err))
						continue
					}
					if err := persistRun(ctx, components, cfg, logger, run); err != nil {
						logger.Error("Persisting run failed", zap.Error(err))
					}
				}
			}
		},
	}

	flags := watchCmd.Flags()
	flags.StringP("input", "i", "", "corpus directory holding the project documents")
	flags.BoolP("recursive", "r", false, "descend into subdirectories of the corpus")
	flags.StringSlice("ignore", nil, "glob patterns of document names to skip")
	flags.StringP("out", "o", "", "directory for run artifacts")

	return watchCmd
}
