package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunInput describes the files a render run was started with.
type RunInput struct {
	InputPath    string
	TemplatePath string
	OutputDir    string
}

const runColumns = `id, started_at, finished_at, input_path, template_path, output_dir,
	total, with_email, without_email, raster_failures, skipped_fields`

const outcomeColumns = `run_id, seq, call_sign, email, svg_path, raster_path, status, error_message, delivered_at`

// StartRun inserts a new run and returns it with a freshly assigned identifier.
func (s *Store) StartRun(ctx context.Context, input RunInput) (Run, error) {
	run := Run{
		ID:           uuid.NewString(),
		StartedAt:    time.Now().UTC(),
		InputPath:    input.InputPath,
		TemplatePath: input.TemplatePath,
		OutputDir:    input.OutputDir,
	}
	_, err := s.exec(ctx, "insert run",
		`INSERT INTO runs (id, started_at, input_path, template_path, output_dir) VALUES (?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), run.InputPath, run.TemplatePath, run.OutputDir,
	)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// FinishRun stores the final counts and completion time for a run.
func (s *Store) FinishRun(ctx context.Context, runID string, totals Totals) error {
	res, err := s.exec(ctx, "finish run",
		`UPDATE runs SET finished_at = ?, total = ?, with_email = ?, without_email = ?,
			raster_failures = ?, skipped_fields = ? WHERE id = ?`,
		formatTime(time.Now()), totals.Total, totals.WithEmail, totals.WithoutEmail,
		totals.RasterFailures, totals.SkippedFields, runID,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordOutcome appends the outcome of one record to a run.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	if strings.TrimSpace(outcome.RunID) == "" {
		return errors.New("record outcome: run id is required")
	}
	status := outcome.Status
	if status == "" {
		status = StatusRendered
	}
	_, err := s.exec(ctx, fmt.Sprintf("insert outcome %d", outcome.Seq),
		`INSERT INTO outcomes (`+outcomeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		outcome.RunID, outcome.Seq, outcome.CallSign, nullableString(outcome.Email),
		outcome.SVGPath, nullableString(outcome.RasterPath), string(status), nullableString(outcome.Error),
	)
	if err != nil {
		return err
	}
	return nil
}

// GetRun returns a run by identifier or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently started run or ErrRunNotFound when the ledger is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrRunNotFound
	}
	return runs[0], nil
}

// ListRuns returns runs newest first. A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
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

// Outcomes returns every outcome recorded for a run, in record order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+outcomeColumns+` FROM outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

// DeliveredCallSigns returns the set of call signs whose cards were delivered in any run.
func (s *Store) DeliveredCallSigns(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT call_sign, MAX(delivered_at) FROM outcomes WHERE delivered_at IS NOT NULL GROUP BY call_sign`)
	if err != nil {
		return nil, fmt.Errorf("list delivered: %w", err)
	}
	defer rows.Close()

	delivered := make(map[string]time.Time)
	for rows.Next() {
		var (
			call string
			when sql.NullString
		)
		if err := rows.Scan(&call, &when); err != nil {
			return nil, err
		}
		if ts := parseNullableTime(when); ts != nil {
			delivered[call] = *ts
		}
	}
	return delivered, rows.Err()
}

// MarkDelivered stamps the delivery time on the outcomes of a run matching callSign.
func (s *Store) MarkDelivered(ctx context.Context, runID, callSign string, when time.Time) error {
	res, err := s.exec(ctx, "mark delivered",
		`UPDATE outcomes SET delivered_at = ? WHERE run_id = ? AND call_sign = ?`,
		formatTime(when), runID, callSign,
	)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mark delivered: no outcome for %s in run %s", callSign, runID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (Run, error) {
	var (
		run        Run
		startedRaw string
		finished   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &startedRaw, &finished, &run.InputPath, &run.TemplatePath, &run.OutputDir,
		&run.Total, &run.WithEmail, &run.WithoutEmail, &run.RasterFailures, &run.SkippedFields,
	); err != nil {
		return Run{}, err
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	run.FinishedAt = parseNullableTime(finished)
	return run, nil
}

func scanOutcome(scanner rowScanner) (Outcome, error) {
	var (
		outcome   Outcome
		email     sql.NullString
		raster    sql.NullString
		status    string
		errMsg    sql.NullString
		delivered sql.NullString
	)
	if err := scanner.Scan(
		&outcome.RunID, &outcome.Seq, &outcome.CallSign, &email, &outcome.SVGPath,
		&raster, &status, &errMsg, &delivered,
	); err != nil {
		return Outcome{}, err
	}
	outcome.Email = email.String
	outcome.RasterPath = raster.String
	outcome.Status = Status(status)
	outcome.Error = errMsg.String
	outcome.DeliveredAt = parseNullableTime(delivered)
	return outcome, nil
}
