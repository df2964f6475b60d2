package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
	"github.com/enricoisidori/threadscape/internal/aggregate"
	"github.com/enricoisidori/threadscape/internal/analysis/core"
	"github.com/enricoisidori/threadscape/internal/compose"
	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/document"
)

// ProjectOutcome is one project's result on the fan-in channel: metrics on
// success, the absorbed error otherwise.
type ProjectOutcome struct {
	Name    string
	Metrics *schemas.ProjectMetrics
	Err     error
}

// BatchEngine distributes project documents across a pool of workers. A
// failing project is recorded and skipped; it never stops the batch.
type BatchEngine struct {
	cfg     *config.Config
	logger  *zap.Logger
	wg      sync.WaitGroup
	results chan ProjectOutcome
}

// New creates a new BatchEngine.
func New(cfg *config.Config, logger *zap.Logger) *BatchEngine {
	queue := cfg.Engine.QueueSize
	if queue <= 0 {
		queue = 64
	}
	return &BatchEngine{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "batch_engine")),
		results: make(chan ProjectOutcome, queue),
	}
}

// Start launches the worker pool and begins consuming sources from the
// provided channel. The caller closes the channel to signal the end of the
// corpus.
func (e *BatchEngine) Start(ctx context.Context, sources <-chan schemas.ProjectSource) {
	concurrency := e.cfg.Engine.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 4 // A sensible default.
	}

	e.logger.Info("Starting batch worker pool", zap.Int("concurrency", concurrency))

	for i := 0; i < concurrency; i++ {
		e.wg.Add(1)
		go e.runWorker(ctx, i+1, sources)
	}
}

// Stop waits for the workers to drain the source channel, then closes the
// results channel so collectors finish ranging.
func (e *BatchEngine) Stop() {
	e.wg.Wait()
	close(e.results)
	e.logger.Info("Batch engine stopped")
}

// Results is the fan-in channel. It is closed by Stop.
func (e *BatchEngine) Results() <-chan ProjectOutcome {
	return e.results
}

// runWorker is the main loop for a single worker goroutine.
func (e *BatchEngine) runWorker(ctx context.Context, workerID int, sources <-chan schemas.ProjectSource) {
	defer e.wg.Done()
	logger := e.logger.With(zap.Int("worker_id", workerID))
	logger.Debug("Worker goroutine started")

	for src := range sources {
		if err := ctx.Err(); err != nil {
			// Keep draining so the feeder never blocks, but stop doing work.
			e.results <- ProjectOutcome{Name: src.Name, Err: fmt.Errorf("run aborted: %w", err)}
			continue
		}
		e.results <- e.process(src, logger)
	}

	logger.Debug("Source channel drained, worker shutting down")
}

// process analyzes a single project document. A panic anywhere in the
// pipeline is converted into the project's error.
func (e *BatchEngine) process(src schemas.ProjectSource, logger *zap.Logger) (outcome ProjectOutcome) {
	outcome.Name = src.Name
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while analyzing project",
				zap.String("project", src.Name),
				zap.Any("panic", r))
			outcome.Metrics = nil
			outcome.Err = fmt.Errorf("panic while analyzing %s: %v", src.Name, r)
		}
	}()

	graph, err := document.LoadFile(src.Path)
	if err != nil {
		logger.Warn("Project skipped",
			zap.String("project", src.Name),
			zap.Error(err))
		outcome.Err = err
		return outcome
	}

	pm := compose.Compose(core.NewProjectContext(graph, e.cfg.Metrics.Options(), logger))
	outcome.Metrics = &pm
	return outcome
}

// Run is the whole fan-out/fan-in: analyze every source, order the
// outcomes by project name and reduce them into one RunResult with its
// cohort summary. Worker scheduling never leaks into the output.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, sources []schemas.ProjectSource) *schemas.RunResult {
	run := &schemas.RunResult{
		RunID:     uuid.NewString(),
		CorpusDir: cfg.Input.Dir,
		StartedAt: time.Now().UTC(),
		Options:   cfg.Metrics.Options().Normalize(),
	}
	runLogger := logger.With(zap.String("run_id", run.RunID))

	eng := New(cfg, runLogger)

	srcChan := make(chan schemas.ProjectSource, len(sources))
	for _, src := range sources {
		srcChan <- src
	}
	close(srcChan)
	eng.Start(ctx, srcChan)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for outcome := range eng.Results() {
			if outcome.Err != nil {
				run.Errors = append(run.Errors, schemas.ProjectError{
					Project: outcome.Name,
					Message: outcome.Err.Error(),
				})
				continue
			}
			run.Projects = append(run.Projects, *outcome.Metrics)
		}
	}()

	eng.Stop()
	<-done

	sort.Slice(run.Projects, func(i, j int) bool { return run.Projects[i].Project < run.Projects[j].Project })
	sort.Slice(run.Errors, func(i, j int) bool { return run.Errors[i].Project < run.Errors[j].Project })

	run.Cohort = aggregate.Aggregate(run.Projects, run.Options)
	run.FinishedAt = time.Now().UTC()

	runLogger.Info("Run complete",
		zap.Int("projects", len(run.Projects)),
		zap.Int("errors", len(run.Errors)),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	return run
}
