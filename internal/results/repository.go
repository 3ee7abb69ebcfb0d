package results

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantum-menace/qtraj/internal/database"
)

// runSeries is the msgpack payload persisted per run: the time grid, the
// mean trace-weight series and the expectation series per observable.
type runSeries struct {
	Times    []float64            `msgpack:"times"`
	AvgTrace []float64            `msgpack:"avg_trace"`
	Expect   map[string][]float64 `msgpack:"expect"`
}

// RunRecord summarizes one persisted ensemble run.
type RunRecord struct {
	ID           string
	Model        string
	Trajectories int
	CreatedAt    time.Time
	Times        []float64
	AvgTrace     []float64
	Expect       map[string][]float64
}

// Repository persists ensemble runs to SQLite. Series data is stored as a
// single msgpack blob per run; runs are keyed by UUID.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a repository and ensures its schema exists.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("component", "results_repo").Logger(),
	}
	if err := r.migrate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id           TEXT PRIMARY KEY,
			model        TEXT NOT NULL,
			trajectories INTEGER NOT NULL,
			created_at   TEXT NOT NULL,
			series       BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create simulation_runs table: %w", err)
	}
	return nil
}

// SaveRun persists one ensemble result under the given model name and
// returns the generated run ID.
func (r *Repository) SaveRun(model string, ensemble *EnsembleResult) (string, error) {
	id := uuid.New().String()
	blob, err := msgpack.Marshal(runSeries{
		Times:    ensemble.Times,
		AvgTrace: ensemble.AvgTrace,
		Expect:   ensemble.Expect,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode run series: %w", err)
	}

	err = database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO simulation_runs (id, model, trajectories, created_at, series) VALUES (?, ?, ?, ?, ?)`,
			id, model, ensemble.NumTrajectories, time.Now().UTC().Format(time.RFC3339), blob,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	r.log.Info().
		Str("run_id", id).
		Str("model", model).
		Int("trajectories", ensemble.NumTrajectories).
		Msg("Saved ensemble run")
	return id, nil
}

// GetRun loads one persisted run by ID.
func (r *Repository) GetRun(id string) (*RunRecord, error) {
	var rec RunRecord
	var createdAt string
	var blob []byte

	row := r.db.QueryRow(
		`SELECT id, model, trajectories, created_at, series FROM simulation_runs WHERE id = ?`, id,
	)
	if err := row.Scan(&rec.ID, &rec.Model, &rec.Trajectories, &createdAt, &blob); err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	rec.CreatedAt = t

	var series runSeries
	if err := msgpack.Unmarshal(blob, &series); err != nil {
		return nil, fmt.Errorf("failed to decode run series: %w", err)
	}
	rec.Times = series.Times
	rec.AvgTrace = series.AvgTrace
	rec.Expect = series.Expect
	return &rec, nil
}

// ListRuns returns summaries of all persisted runs, newest first. Series
// blobs are not decoded.
func (r *Repository) ListRuns() ([]RunRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, model, trajectories, created_at FROM simulation_runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.Trajectories, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return records, nil
}
