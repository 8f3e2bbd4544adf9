// Package persistence provides SQLite-backed storage for run state and the
// metric time series.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/wealthsim/internal/grid"
	"github.com/talgya/wealthsim/internal/metrics"
	"github.com/talgya/wealthsim/internal/model"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		wealth INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		gini REAL NOT NULL,
		wealth_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_run_tick ON metrics(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAgents writes the full population (full replace — the population is
// fixed per run, so there is nothing incremental to do).
func (db *DB) SaveAgents(agents []model.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents (id, x, y, wealth) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range agents {
		if _, err := stmt.Exec(a.ID, a.Pos.X, a.Pos.Y, a.Wealth); err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAgents reads the saved population in id order.
func (db *DB) LoadAgents() ([]*model.Agent, error) {
	type row struct {
		ID     uint64 `db:"id"`
		X      int    `db:"x"`
		Y      int    `db:"y"`
		Wealth int    `db:"wealth"`
	}
	var rows []row
	if err := db.conn.Select(&rows, "SELECT id, x, y, wealth FROM agents ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}

	agents := make([]*model.Agent, 0, len(rows))
	for _, r := range rows {
		agents = append(agents, &model.Agent{
			ID:     model.AgentID(r.ID),
			Pos:    grid.Coord{X: r.X, Y: r.Y},
			Wealth: r.Wealth,
		})
	}
	return agents, nil
}

// HasState reports whether a saved population exists.
func (db *DB) HasState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM agents"); err != nil {
		return false
	}
	return count > 0
}

// SetMeta stores a key/value pair in sim_meta.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO sim_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMeta retrieves a value from sim_meta.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	if err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key); err != nil {
		return "", err
	}
	return value, nil
}

// MetricRow is one persisted metric record.
type MetricRow struct {
	RunID      string  `db:"run_id" json:"run_id"`
	Tick       uint64  `db:"tick" json:"tick"`
	Gini       float64 `db:"gini" json:"gini"`
	WealthJSON string  `db:"wealth_json" json:"wealth"`
}

// InsertMetric appends one metric record for a run.
func (db *DB) InsertMetric(runID string, rec metrics.Record) error {
	wealthJSON, err := json.Marshal(rec.Wealth)
	if err != nil {
		return fmt.Errorf("marshal wealth: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT INTO metrics (run_id, tick, gini, wealth_json) VALUES (?, ?, ?, ?)",
		runID, rec.Tick, rec.Gini, string(wealthJSON),
	)
	return err
}

// InsertMetrics appends a batch of records in one transaction.
func (db *DB) InsertMetrics(runID string, recs []metrics.Record) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO metrics (run_id, tick, gini, wealth_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		wealthJSON, err := json.Marshal(rec.Wealth)
		if err != nil {
			return fmt.Errorf("marshal wealth: %w", err)
		}
		if _, err := stmt.Exec(runID, rec.Tick, rec.Gini, string(wealthJSON)); err != nil {
			return fmt.Errorf("insert metric tick %d: %w", rec.Tick, err)
		}
	}
	return tx.Commit()
}

// LoadMetrics returns up to limit records for a run within [fromTick, toTick],
// newest last.
func (db *DB) LoadMetrics(runID string, fromTick, toTick uint64, limit int) ([]MetricRow, error) {
	var rows []MetricRow
	err := db.conn.Select(&rows,
		`SELECT run_id, tick, gini, wealth_json FROM metrics
		 WHERE run_id = ? AND tick >= ? AND tick <= ?
		 ORDER BY tick DESC LIMIT ?`,
		runID, fromTick, toTick, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	// Reverse to chronological order.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
