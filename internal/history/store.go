package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/services"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, operation, source_dir, destination_dir, started_at, finished_at,
	total, succeeded, failed, skipped, cancelled, input_bytes, output_bytes, message`

// Record stores a finished batch and its failures in one transaction.
func (s *Store) Record(ctx context.Context, summary *batch.Summary) (Run, error) {
	if summary == nil {
		return Run{}, errors.New("record history: nil summary")
	}
	if summary.BatchID == "" {
		return Run{}, errors.New("record history: batch id is empty")
	}
	ctx = ensureContext(ctx)
	run := FromSummary(summary)

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(run.Operation), run.SourceDir, run.DestinationDir,
			run.StartedAt.Format(timeLayout), run.FinishedAt.Format(timeLayout),
			run.Total, run.Succeeded, run.Failed, run.Skipped, boolToInt(run.Cancelled),
			run.InputBytes, run.OutputBytes, run.Message,
		); err != nil {
			return err
		}
		for _, f := range run.Failures {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO failures (run_id, file_index, source, destination, error) VALUES (?, ?, ?, ?, ?)`,
				run.ID, f.Index, f.Source, f.Destination, f.Error,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return Run{}, fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return run, nil
}

// List returns runs newest first without their failures.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if filter.Operation != "" {
		query += ` WHERE operation = ?`
		args = append(args, string(filter.Operation))
	}
	query += ` ORDER BY started_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its failures. A unique id prefix is accepted so
// the short ids shown in listings can be pasted back.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return Run{}, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Run{}, err
	}

	var run Run
	switch {
	case id == "" || len(matches) == 0:
		return Run{}, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("run %q not found", id), nil)
	case len(matches) > 1 && matches[0].ID != id && matches[1].ID != id:
		return Run{}, services.Wrap(services.ErrValidation, "history", "get", fmt.Sprintf("run id %q is ambiguous", id), nil)
	case len(matches) > 1 && matches[1].ID == id:
		run = matches[1]
	default:
		run = matches[0]
	}

	failures, err := s.failures(ctx, run.ID)
	if err != nil {
		return Run{}, err
	}
	run.Failures = failures
	return run, nil
}

func (s *Store) failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_index, source, destination, error FROM failures WHERE run_id = ? ORDER BY file_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Index, &f.Source, &f.Destination, &f.Error); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Prune deletes runs that started before cutoff, with their failures, and
// returns how many runs were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	stamp := cutoff.UTC().Format(timeLayout)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM failures WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

// Stats counts journaled runs per operation.
func (s *Store) Stats(ctx context.Context) (map[batch.Operation]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT operation, COUNT(1) FROM runs GROUP BY operation`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[batch.Operation]int)
	for rows.Next() {
		var op string
		var count int
		if err := rows.Scan(&op, &count); err != nil {
			return nil, err
		}
		stats[batch.Operation(op)] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		op        string
		cancelled int
		started   string
		finished  string
	)
	if err := row.Scan(&run.ID, &op, &run.SourceDir, &run.DestinationDir, &started, &finished,
		&run.Total, &run.Succeeded, &run.Failed, &run.Skipped, &cancelled,
		&run.InputBytes, &run.OutputBytes, &run.Message); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Operation = batch.Operation(op)
	run.Cancelled = cancelled != 0
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
