package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-match-go/domain/match"
)

// Run is one recorded match invocation.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Image     string
	Template  string
	Mode      string
	Strategy  string
	Channel   string
	Threshold float64
	PreFilter bool
	Parallel  bool
	Duration  time.Duration
	// Preview is a PNG crop around the best match, nil when nothing matched.
	// Runs does not load it; use Preview.
	Preview []byte

	// Results is written by RecordRun; Runs leaves it empty and fills
	// ResultCount instead.
	Results     []match.Result
	ResultCount int
}

// RecordRun stores run and its results in one transaction. A zero ID is
// replaced by a fresh random one, which is returned.
func (db *DB) RecordRun(ctx context.Context, run Run) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	err := db.execTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, started_at, image, template, mode, strategy, channel,
				threshold, prefilter, parallel, duration_ns, preview)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID.String(), run.StartedAt.UTC(), run.Image, run.Template, run.Mode, run.Strategy,
			run.Channel, run.Threshold, run.PreFilter, run.Parallel, int64(run.Duration), run.Preview)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO results (run_id, ord, x, y, score) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, r := range run.Results {
			if _, err := stmt.ExecContext(ctx, run.ID.String(), i, r.X, r.Y, r.Score); err != nil {
				return fmt.Errorf("insert result %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	db.logger.Debug("run recorded", "id", run.ID.String(), "results", len(run.Results))
	return run.ID, nil
}

// Runs lists the most recent runs first. limit <= 0 returns all of them.
func (db *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.image, r.template, r.mode, r.strategy, r.channel,
			r.threshold, r.prefilter, r.parallel, r.duration_ns,
			(SELECT COUNT(*) FROM results s WHERE s.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r   Run
			id  string
			dur int64
		)
		if err := rows.Scan(&id, &r.StartedAt, &r.Image, &r.Template, &r.Mode, &r.Strategy, &r.Channel,
			&r.Threshold, &r.PreFilter, &r.Parallel, &dur, &r.ResultCount); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		r.Duration = time.Duration(dur)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Results returns the stored matches of one run in their original order.
func (db *DB) Results(ctx context.Context, runID uuid.UUID) ([]match.Result, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT x, y, score FROM results WHERE run_id = ? ORDER BY ord`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []match.Result
	for rows.Next() {
		var r match.Result
		if err := rows.Scan(&r.X, &r.Y, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Preview returns the stored PNG preview of one run, nil if it has none.
func (db *DB) Preview(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRowContext(ctx, `SELECT preview FROM runs WHERE id = ?`, runID.String()).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", runID, err)
	}
	return data, nil
}
