package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clockedout/apperr"
	"clockedout/timesheet"
)

// WeeklyRepository stores the per-week breakdown of a month.
type WeeklyRepository struct {
	store *Store
}

const weeklyColumns = `id, month_id, week_start_date, week_end_date, weekday_hours, weekend_hours, created_at`

func scanWeekly(row rowScanner) (timesheet.WeeklySummary, error) {
	var summary timesheet.WeeklySummary
	err := row.Scan(
		&summary.ID,
		&summary.MonthID,
		&summary.WeekStartDate,
		&summary.WeekEndDate,
		&summary.WeekdayHours,
		&summary.WeekendHours,
		&summary.CreatedAt,
	)
	return summary, err
}

// SaveAll replaces every weekly row of monthID with summaries in a single
// transaction. On any failure the previous rows are left untouched.
func (r *WeeklyRepository) SaveAll(ctx context.Context, monthID int64, summaries []timesheet.WeeklySummary) error {
	if monthID <= 0 {
		return apperr.New(apperr.ConstraintViolation, fmt.Sprintf("month id must be > 0, got %d", monthID))
	}

	now := r.store.timestamp()
	err := r.store.withTx(ctx, "weekly summary replace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_summaries WHERE month_id = ?;`, monthID); err != nil {
			return storageError(apperr.QueryFailed, "delete weekly summaries", err)
		}

		const insertStmt = `
INSERT INTO weekly_summaries (
	month_id,
	week_start_date,
	week_end_date,
	weekday_hours,
	weekend_hours,
	created_at
) VALUES (?, ?, ?, ?, ?, ?);`

		stmt, err := tx.PrepareContext(ctx, insertStmt)
		if err != nil {
			return apperr.Wrap(apperr.QueryFailed, "prepare weekly insert", err)
		}
		defer stmt.Close()

		for _, summary := range summaries {
			if _, err := stmt.ExecContext(ctx,
				monthID,
				summary.WeekStartDate,
				summary.WeekEndDate,
				timesheet.Round2(summary.WeekdayHours),
				timesheet.Round2(summary.WeekendHours),
				now,
			); err != nil {
				return storageError(apperr.QueryFailed, "insert week "+summary.WeekStartDate, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.store.logger.Info("replaced weekly summaries", "month_id", monthID, "weeks", len(summaries))
	return nil
}

// Fetch returns the weeks of monthID ordered by week start.
func (r *WeeklyRepository) Fetch(ctx context.Context, monthID int64) ([]timesheet.WeeklySummary, error) {
	query := `SELECT ` + weeklyColumns + `
FROM weekly_summaries
WHERE month_id = ?
ORDER BY week_start_date ASC;`

	return r.query(ctx, "weekly summaries for month", query, monthID)
}

// Delete removes every week of monthID and reports how many rows went.
func (r *WeeklyRepository) Delete(ctx context.Context, monthID int64) (int64, error) {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM weekly_summaries WHERE month_id = ?;`, monthID)
	if err != nil {
		return 0, storageError(apperr.QueryFailed, "delete weekly summaries", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(apperr.QueryFailed, "read deleted row count", err)
	}
	r.store.logger.Info("deleted weekly summaries", "month_id", monthID, "weeks", rows)
	return rows, nil
}

// FetchRange returns weeks overlapping the inclusive calendar range
// [start, end], across all months.
func (r *WeeklyRepository) FetchRange(ctx context.Context, start, end time.Time) ([]timesheet.WeeklySummary, error) {
	if end.Before(start) {
		return nil, apperr.New(apperr.OutOfRange, "range end must not be before range start")
	}

	query := `SELECT ` + weeklyColumns + `
FROM weekly_summaries
WHERE week_start_date <= ? AND week_end_date >= ?
ORDER BY week_start_date ASC, month_id ASC;`

	return r.query(ctx, "weekly summaries in range", query,
		end.Format(timesheet.DateLayout),
		start.Format(timesheet.DateLayout))
}

func (r *WeeklyRepository) query(ctx context.Context, what, query string, args ...any) ([]timesheet.WeeklySummary, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.QueryFailed, "query "+what, err)
	}
	defer rows.Close()

	summaries := make([]timesheet.WeeklySummary, 0, 6)
	for rows.Next() {
		summary, err := scanWeekly(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.QueryFailed, "scan "+what, err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryFailed, "iterate "+what, err)
	}
	return summaries, nil
}
