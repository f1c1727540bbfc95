package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors
var (
	ErrNotFound = errors.New("not found")
)

// isBusyLock reports whether err indicates SQLite database lock (SQLITE_BUSY).
// Handles wrapped errors from database/sql.
func isBusyLock(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") || strings.Contains(s, "SQLITE_BUSY")
}

// retryOnBusy runs fn and retries on SQLITE_BUSY with exponential backoff.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 4
	backoff := 25 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isBusyLock(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return lastErr
}

// Project is the persisted project record. The sandbox handle columns
// (sandbox_id, host_url) are empty while no sandbox is provisioned.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	SandboxID    string    `json:"sandbox_id,omitempty"`
	HostURL      string    `json:"host_url,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

type Store struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'initializing',
	sandbox_id    TEXT NOT NULL DEFAULT '',
	host_url      TEXT NOT NULL DEFAULT '',
	session_id    TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT 'claude',
	created_at    DATETIME NOT NULL,
	last_activity DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);
CREATE INDEX IF NOT EXISTS idx_projects_sandbox_id ON projects(sandbox_id);
`

// dsnWithPragmas returns a connection string with WAL, busy_timeout, and perf
// pragmas applied to every new connection. PRAGMAs in DSN are applied
// per-connection by the driver.
func dsnWithPragmas(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(15000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"
}

// DefaultMaxOpenConns is the default connection pool size for concurrent reads.
const DefaultMaxOpenConns = 4

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsnWithPragmas(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxOpenConns)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateProject(p *Project) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(
			`INSERT INTO projects (id, name, status, sandbox_id, host_url, session_id, provider, created_at, last_activity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Status, p.SandboxID, p.HostURL, p.SessionID, p.Provider,
			p.CreatedAt.UTC(), p.LastActivity.UTC(),
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(
		`SELECT id, name, status, sandbox_id, host_url, session_id, provider, created_at, last_activity
		 FROM projects WHERE id = ?`, id,
	)
	return scanProject(row)
}

func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, status, sandbox_id, host_url, session_id, provider, created_at, last_activity
		 FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *Store) UpdateProjectStatus(id string, status string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE projects SET status = ? WHERE id = ?`, status, id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	return checkRowAffected(result, id)
}

// SetSandboxHandle records a provisioned sandbox on the project.
func (s *Store) SetSandboxHandle(id string, sandboxID, hostURL string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE projects SET sandbox_id = ?, host_url = ?, last_activity = ? WHERE id = ?`,
			sandboxID, hostURL, time.Now().UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("setting sandbox handle: %w", err)
	}
	return checkRowAffected(result, id)
}

// ClearSandboxHandle removes the sandbox handle and session snapshot.
func (s *Store) ClearSandboxHandle(id string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE projects SET sandbox_id = '', host_url = '', session_id = '' WHERE id = ?`, id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("clearing sandbox handle: %w", err)
	}
	return checkRowAffected(result, id)
}

func (s *Store) UpdateProjectActivity(id string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE projects SET last_activity = ? WHERE id = ?`, time.Now().UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("updating project activity: %w", err)
	}
	return checkRowAffected(result, id)
}

// SetProviderSession snapshots the provider session id so a restarted
// daemon can resume the conversation.
func (s *Store) SetProviderSession(id string, sessionID string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE projects SET session_id = ?, last_activity = ? WHERE id = ?`,
			sessionID, time.Now().UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("setting provider session: %w", err)
	}
	return checkRowAffected(result, id)
}

// ListIdleProjects returns projects with a live sandbox whose last activity
// is at or before cutoff.
func (s *Store) ListIdleProjects(cutoff time.Time) ([]*Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, status, sandbox_id, host_url, session_id, provider, created_at, last_activity
		 FROM projects WHERE sandbox_id != '' AND last_activity <= ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing idle projects: %w", err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

// ListActiveProjects returns projects that currently claim a sandbox.
func (s *Store) ListActiveProjects() ([]*Project, error) {
	rows, err := s.db.Query(
		`SELECT id, name, status, sandbox_id, host_url, session_id, provider, created_at, last_activity
		 FROM projects WHERE sandbox_id != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active projects: %w", err)
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *Store) DeleteProject(id string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
		return e
	})
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return checkRowAffected(result, id)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProject(row scannable) (*Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Status, &p.SandboxID, &p.HostURL, &p.SessionID,
		&p.Provider, &p.CreatedAt, &p.LastActivity,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return &p, nil
}

func scanProjects(rows *sql.Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func checkRowAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return nil
}
