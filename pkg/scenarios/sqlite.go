package scenarios

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS scenarios (
	name       TEXT PRIMARY KEY,
	parameters TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore persists sweep scenarios in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the scenario database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("scenarios: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("scenarios: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scenarios: ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scenarios: migrate: %w", err)
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveScenario validates and upserts the scenario.
func (s *SQLiteStore) SaveScenario(ctx context.Context, scenario dashboard.Scenario) error {
	if err := s.ready(); err != nil {
		return err
	}
	name, err := scenarioName(scenario.Name)
	if err != nil {
		return err
	}
	if err := scenario.Parameters.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(scenario.Parameters)
	if err != nil {
		return fmt.Errorf("scenarios: encode %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenarios (name, parameters, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET parameters = excluded.parameters, updated_at = excluded.updated_at`,
		name, string(payload), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("scenarios: save %s: %w", name, err)
	}
	return nil
}

// LoadScenario returns the named scenario or dashboard.ErrScenarioNotFound.
func (s *SQLiteStore) LoadScenario(ctx context.Context, name string) (dashboard.Scenario, error) {
	if err := s.ready(); err != nil {
		return dashboard.Scenario{}, err
	}
	name, err := scenarioName(name)
	if err != nil {
		return dashboard.Scenario{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT name, parameters, updated_at FROM scenarios WHERE name = ?`, name)
	scenario, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.Scenario{}, fmt.Errorf("%w: %s", dashboard.ErrScenarioNotFound, name)
	}
	if err != nil {
		return dashboard.Scenario{}, fmt.Errorf("scenarios: load %s: %w", name, err)
	}
	return scenario, nil
}

// ListScenarios returns every scenario ordered by name.
func (s *SQLiteStore) ListScenarios(ctx context.Context) ([]dashboard.Scenario, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, parameters, updated_at FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("scenarios: list: %w", err)
	}
	defer rows.Close()
	var out []dashboard.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scenarios: list: %w", err)
		}
		out = append(out, scenario)
	}
	return out, rows.Err()
}

// DeleteScenario removes the named scenario.
func (s *SQLiteStore) DeleteScenario(ctx context.Context, name string) error {
	if err := s.ready(); err != nil {
		return err
	}
	name, err := scenarioName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("scenarios: delete %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrScenarioNotFound, name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) ready() error {
	if s == nil || s.db == nil {
		return errors.New("scenarios: storage is not configured")
	}
	return nil
}

func scanScenario(row rowScanner) (dashboard.Scenario, error) {
	var (
		scenario dashboard.Scenario
		payload  string
		updated  int64
	)
	if err := row.Scan(&scenario.Name, &payload, &updated); err != nil {
		return dashboard.Scenario{}, err
	}
	if err := json.Unmarshal([]byte(payload), &scenario.Parameters); err != nil {
		return dashboard.Scenario{}, fmt.Errorf("decode parameters: %w", err)
	}
	if updated > 0 {
		scenario.UpdatedAt = time.UnixMilli(updated).UTC()
	}
	return scenario, nil
}

func scenarioName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("scenarios: scenario name is required")
	}
	return name, nil
}

var _ dashboard.ScenarioStore = (*SQLiteStore)(nil)
