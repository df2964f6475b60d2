package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// ErrRunNotFound is returned when the requested run id is not archived.
var ErrRunNotFound = errors.New("run not found")

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    corpus_dir  TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    options     JSONB NOT NULL,
    cohort      JSONB,
    errors      JSONB
);

CREATE TABLE IF NOT EXISTS project_metrics (
    run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    project TEXT NOT NULL,
    nodes   INTEGER NOT NULL,
    edges   INTEGER NOT NULL,
    payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS project_metrics_run_idx ON project_metrics (run_id, project);
`

// Store archives batch runs in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun archives one run and all of its per-project records in a single
// transaction.
func (s *Store) SaveRun(ctx context.Context, run *schemas.RunResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	options, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("failed to encode run options: %w", err)
	}
	var cohort []byte
	if run.Cohort != nil {
		if cohort, err = json.Marshal(run.Cohort); err != nil {
			return fmt.Errorf("failed to encode cohort summary: %w", err)
		}
	}
	var projectErrors []byte
	if len(run.Errors) > 0 {
		if projectErrors, err = json.Marshal(run.Errors); err != nil {
			return fmt.Errorf("failed to encode project errors: %w", err)
		}
	}

	insertRun := `
        INSERT INTO runs (id, corpus_dir, started_at, finished_at, options, cohort, errors)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	if _, err := tx.Exec(ctx, insertRun,
		run.RunID, run.CorpusDir, run.StartedAt, run.FinishedAt,
		options, cohort, projectErrors,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	if len(run.Projects) > 0 {
		if err := s.persistProjects(ctx, tx, run.RunID, run.Projects); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) persistProjects(ctx context.Context, tx pgx.Tx, runID string, projects []schemas.ProjectMetrics) error {
	rows := make([][]interface{}, len(projects))
	for i, pm := range projects {
		payload, err := json.Marshal(pm)
		if err != nil {
			return fmt.Errorf("failed to encode metrics for %s: %w", pm.Project, err)
		}
		rows[i] = []interface{}{runID, pm.Project, pm.Nodes, pm.Edges, payload}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"project_metrics"},
		[]string{"run_id", "project", "nodes", "edges", "payload"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy project metrics: %w", err)
	}
	if int(copyCount) != len(projects) {
		return fmt.Errorf("mismatch in copied metrics count: expected %d, got %d", len(projects), copyCount)
	}
	return nil
}

// GetRun loads an archived run, projects ordered by name.
func (s *Store) GetRun(ctx context.Context, runID string) (*schemas.RunResult, error) {
	query := `
        SELECT corpus_dir, started_at, finished_at, options, cohort, errors
        FROM runs
        WHERE id = $1;
    `
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error during row iteration: %w", err)
		}
		return nil, ErrRunNotFound
	}

	run := &schemas.RunResult{RunID: runID}
	var options, cohort, projectErrors []byte
	if err := rows.Scan(&run.CorpusDir, &run.StartedAt, &run.FinishedAt, &options, &cohort, &projectErrors); err != nil {
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}
	rows.Close()

	if err := json.Unmarshal(options, &run.Options); err != nil {
		return nil, fmt.Errorf("failed to decode run options: %w", err)
	}
	if len(cohort) > 0 {
		run.Cohort = &schemas.CohortSummary{}
		if err := json.Unmarshal(cohort, run.Cohort); err != nil {
			return nil, fmt.Errorf("failed to decode cohort summary: %w", err)
		}
	}
	if len(projectErrors) > 0 {
		if err := json.Unmarshal(projectErrors, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode project errors: %w", err)
		}
	}

	if run.Projects, err = s.runProjects(ctx, runID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) runProjects(ctx context.Context, runID string) ([]schemas.ProjectMetrics, error) {
	query := `
        SELECT payload
        FROM project_metrics
        WHERE run_id = $1
        ORDER BY project ASC;
    `
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project metrics: %w", err)
	}
	defer rows.Close()

	var projects []schemas.ProjectMetrics
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		var pm schemas.ProjectMetrics
		if err := json.Unmarshal(payload, &pm); err != nil {
			return nil, fmt.Errorf("failed to decode metrics payload: %w", err)
		}
		projects = append(projects, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return projects, nil
}

// LatestRunID returns the id of the most recently started run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	query := `
        SELECT id
        FROM runs
        ORDER BY started_at DESC
        LIMIT 1;
    `
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("error during row iteration: %w", err)
		}
		return "", ErrRunNotFound
	}
	var id string
	if err := rows.Scan(&id); err != nil {
		return "", fmt.Errorf("failed to scan run id: %w", err)
	}
	return id, nil
}
