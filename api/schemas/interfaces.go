package schemas

import "context"

// -- Shared Interface Contracts --
// Interfaces live here so that command wiring, the engine and the mocks all
// agree on one contract without import cycles.

// ProjectSource locates one project document on disk. Name is the document
// file name without extension and doubles as the project identifier.
type ProjectSource struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// RunStore abstracts the archive behind the analyze and report commands.
type RunStore interface {
	SaveRun(ctx context.Context, run *RunResult) error
	GetRun(ctx context.Context, runID string) (*RunResult, error)
	LatestRunID(ctx context.Context) (string, error)
}
