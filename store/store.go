package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/urbanflow/buswatch/analysis"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS line_delay_hourly (
	line               TEXT    NOT NULL,
	hour_bucket        TEXT    NOT NULL,
	sample_count       INTEGER NOT NULL,
	delay_mean_minutes REAL    NOT NULL,
	delay_m2           REAL    NOT NULL,
	max_delay_minutes  REAL    NOT NULL,
	PRIMARY KEY (line, hour_bucket)
);
`

// Store is a SQLite-backed archive of per-line delay statistics
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
// SQLite supports a single writer, so the pool is pinned to one connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure store schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordDelays folds per-vehicle delay results into the hourly bucket of at,
// keyed by line. A repeated run with the same results grows the counts;
// dedup across runs is the caller's concern.
func (s *Store) RecordDelays(ctx context.Context, results []analysis.Result, at time.Time) error {
	if len(results) == 0 {
		return nil
	}

	byLine := map[string][]float64{}
	for _, r := range results {
		if r.Line == "" {
			continue
		}
		byLine[r.Line] = append(byLine[r.Line], r.DelayMinutes)
	}
	if len(byLine) == 0 {
		return nil
	}

	bucket := at.UTC().Truncate(time.Hour).Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for line, delays := range byLine {
		var ws welfordState
		var maxDelay float64
		err := tx.QueryRowContext(ctx, `
			SELECT sample_count, delay_mean_minutes, delay_m2, max_delay_minutes
			FROM line_delay_hourly
			WHERE line = ? AND hour_bucket = ?
		`, line, bucket).Scan(&ws.Count, &ws.Mean, &ws.M2, &maxDelay)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("read delay stats for line %s: %w", line, err)
		}

		for _, d := range delays {
			ws.update(d)
			if d > maxDelay {
				maxDelay = d
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO line_delay_hourly (line, hour_bucket, sample_count,
				delay_mean_minutes, delay_m2, max_delay_minutes)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (line, hour_bucket) DO UPDATE SET
				sample_count       = excluded.sample_count,
				delay_mean_minutes = excluded.delay_mean_minutes,
				delay_m2           = excluded.delay_m2,
				max_delay_minutes  = excluded.max_delay_minutes
		`, line, bucket, ws.Count, ws.Mean, ws.M2, maxDelay)
		if err != nil {
			return fmt.Errorf("upsert delay stats for line %s: %w", line, err)
		}
	}

	return tx.Commit()
}

// LineStat is one hourly aggregate read back from the store
type LineStat struct {
	Line            string
	HourBucket      string
	SampleCount     int
	MeanMinutes     float64
	StdDevMinutes   float64
	MaxDelayMinutes float64
}

// LineStats returns the stored aggregates for one line, newest bucket first
func (s *Store) LineStats(ctx context.Context, line string) ([]LineStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT line, hour_bucket, sample_count, delay_mean_minutes, delay_m2, max_delay_minutes
		FROM line_delay_hourly
		WHERE line = ?
		ORDER BY hour_bucket DESC
	`, line)
	if err != nil {
		return nil, fmt.Errorf("query delay stats for line %s: %w", line, err)
	}
	defer rows.Close()

	var stats []LineStat
	for rows.Next() {
		var st LineStat
		var ws welfordState
		if err := rows.Scan(&st.Line, &st.HourBucket, &ws.Count, &ws.Mean, &ws.M2, &st.MaxDelayMinutes); err != nil {
			return nil, fmt.Errorf("scan delay stats: %w", err)
		}
		st.SampleCount = ws.Count
		st.MeanMinutes = ws.Mean
		st.StdDevMinutes = ws.stdDev()
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
