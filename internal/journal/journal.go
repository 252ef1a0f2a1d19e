// Package journal keeps a SQLite history of composectl runs: which manifest
// was composed, by which command, and how every type resolved.
package journal

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/compose/internal/inspect"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the journal database inside the data directory.
const DBFileName = "journal.db"

// Fixed-width UTC timestamps sort lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Journal errors.
var (
	ErrJournalDetached = errors.New("journal is detached")
	ErrAlreadyAttached = errors.New("journal is already attached")
	ErrRunNotFound     = errors.New("run not found")
)

// Run is one recorded composectl invocation.
type Run struct {
	ID        string           `json:"run_id"`
	Command   string           `json:"command"`
	Manifest  string           `json:"manifest"`
	Detail    string           `json:"detail,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Reports   []inspect.Report `json:"reports"`
}

// Conflicts counts conflicted keys across the run's reports.
func (r Run) Conflicts() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Conflicts())
	}
	return n
}

// Journal stores runs in a SQLite database.
type Journal struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
	logger   *zap.Logger
}

// NewJournal returns a detached journal. A nil logger discards output.
func NewJournal(logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{logger: logger}
}

// Attach opens (creating if needed) the journal database in dataDir.
// Returns ErrAlreadyAttached if already attached.
func (j *Journal) Attach(dataDir string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.attached {
		return ErrAlreadyAttached
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}

	j.db = db
	j.attached = true
	j.logger.Debug("journal attached", zap.String("path", dbPath))
	return nil
}

// Detach closes the database. Detach is idempotent.
func (j *Journal) Detach() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return nil
	}
	if j.db != nil {
		if err := j.db.Close(); err != nil {
			return err
		}
		j.db = nil
	}
	j.attached = false
	return nil
}

// Record stores run with its reports and returns it with ID and CreatedAt
// filled in when they were empty.
func (j *Journal) Record(run Run) (Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return Run{}, ErrJournalDetached
	}
	if run.ID == "" {
		run.ID = generateUUID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	tx, err := j.db.Begin()
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, command, manifest, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Manifest, run.Detail, run.CreatedAt.Format(timeFormat),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	for i, rep := range run.Reports {
		body, err := json.Marshal(rep)
		if err != nil {
			return Run{}, fmt.Errorf("marshal report %s: %w", rep.Type, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO reports (run_id, position, type_name, type_id, conflicts, unsatisfied, body) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, rep.Type, rep.TypeID, len(rep.Conflicts()), len(rep.Unsatisfied()), string(body),
		); err != nil {
			return Run{}, fmt.Errorf("insert report %s: %w", rep.Type, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, err
	}

	j.logger.Debug("recorded run",
		zap.String("run", run.ID),
		zap.String("command", run.Command),
		zap.Int("reports", len(run.Reports)))
	return run, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (j *Journal) List(limit int) ([]Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.attached {
		return nil, ErrJournalDetached
	}

	query := `SELECT run_id, command, manifest, detail, created_at FROM runs ORDER BY created_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		reports, err := j.reports(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Reports = reports
	}
	return runs, nil
}

// Get returns the run with runID, or ErrRunNotFound.
func (j *Journal) Get(runID string) (Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.attached {
		return Run{}, ErrJournalDetached
	}

	row := j.db.QueryRow(`SELECT run_id, command, manifest, detail, created_at FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, err
	}
	run.Reports, err = j.reports(run.ID)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (j *Journal) reports(runID string) ([]inspect.Report, error) {
	rows, err := j.db.Query(`SELECT body FROM reports WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []inspect.Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var rep inspect.Report
		if err := json.Unmarshal([]byte(body), &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var created string
	if err := s.Scan(&run.ID, &run.Command, &run.Manifest, &run.Detail, &created); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeFormat, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	return run, nil
}

// generateUUID generates a new UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
