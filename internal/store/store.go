package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	run_id      TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	max_length  INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	latent      BLOB,
	rules_json  TEXT NOT NULL,
	steps       INTEGER NOT NULL,
	truncated   INTEGER NOT NULL,
	expression  TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generation_runs_created ON generation_runs(created_at);
`

// createdLayout is fixed-width so that text order on created_at is time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #endregion schema

// #region store-struct
// Store persists generation runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save-run
// SaveRun inserts a run. An empty RunID gets a fresh UUID and a zero
// CreatedAt is set to now; the stored record is returned.
func (s *Store) SaveRun(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Rules == nil {
		rec.Rules = []int{}
	}
	rulesJSON, err := json.Marshal(rec.Rules)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal rules: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO generation_runs (run_id, mode, max_length, seed, latent, rules_json, steps, truncated, expression, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Mode, rec.MaxLength, rec.Seed, encodeVector(rec.Latent), string(rulesJSON),
		rec.Steps, boolToInt(rec.Truncated), nullIfEmpty(rec.Expression), rec.CreatedAt.Format(createdLayout),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion save-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, mode, max_length, seed, latent, rules_json, steps, truncated, expression, created_at
		 FROM generation_runs WHERE run_id = ?`, id,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, mode, max_length, seed, latent, rules_json, steps, truncated, expression, created_at
		 FROM generation_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates all stored runs.
func (s *Store) Stats() (RunStats, error) {
	var st RunStats
	var avg sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(truncated), 0), AVG(steps) FROM generation_runs`,
	).Scan(&st.Total, &st.Truncated, &avg)
	if err != nil {
		return RunStats{}, fmt.Errorf("run stats: %w", err)
	}
	if avg.Valid {
		st.AvgSteps = avg.Float64
	}
	return st, nil
}

// #endregion list-runs

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var latentBlob []byte
	var rulesJSON string
	var truncated int
	var expression sql.NullString
	var createdStr string

	err := sc.Scan(&rec.RunID, &rec.Mode, &rec.MaxLength, &rec.Seed, &latentBlob, &rulesJSON,
		&rec.Steps, &truncated, &expression, &createdStr)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Latent = decodeVector(latentBlob)
	if err := json.Unmarshal([]byte(rulesJSON), &rec.Rules); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal rules: %w", err)
	}
	rec.Truncated = truncated != 0
	if expression.Valid {
		rec.Expression = expression.String
	}
	rec.CreatedAt, _ = time.Parse(createdLayout, createdStr)
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

// #region vector-encoding
func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion vector-encoding
