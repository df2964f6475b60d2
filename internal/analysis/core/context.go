package core

import (
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// ProjectContext carries everything an analyzer may consult while working on
// one project. Analyzers never see the filesystem, the clock or any other
// project; every result is a pure function of Graph and Options.
type ProjectContext struct {
	Graph   *schemas.ProjectGraph
	Options schemas.MetricOptions
	Logger  *zap.Logger
}

// NewProjectContext builds a context with normalized options and a non-nil
// logger.
func NewProjectContext(graph *schemas.ProjectGraph, opts schemas.MetricOptions, logger *zap.Logger) *ProjectContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectContext{
		Graph:   graph,
		Options: opts.Normalize(),
		Logger:  logger.With(zap.String("project", graph.Name)),
	}
}
