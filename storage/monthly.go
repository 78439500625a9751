package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clockedout/apperr"
	"clockedout/salary"
	"clockedout/timesheet"
)

// MonthlyRepository stores one row per "MM/YYYY" month key.
type MonthlyRepository struct {
	store *Store
}

const monthlyColumns = `id, month, weekday_hours, weekend_hours, weekday_rate, weekend_rate, salary, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonthly(row rowScanner) (timesheet.MonthlySummary, error) {
	var summary timesheet.MonthlySummary
	err := row.Scan(
		&summary.ID,
		&summary.Month,
		&summary.WeekdayHours,
		&summary.WeekendHours,
		&summary.WeekdayRate,
		&summary.WeekendRate,
		&summary.Salary,
		&summary.CreatedAt,
		&summary.UpdatedAt,
	)
	return summary, err
}

func validateMonthly(summary timesheet.MonthlySummary) error {
	if !timesheet.ValidMonthKey(summary.Month) {
		return apperr.New(apperr.InvalidFormat, fmt.Sprintf("month key %q must be MM/YYYY", summary.Month))
	}
	if err := salary.ValidateHours(summary.WeekdayHours, salary.FieldWeekdayHours); err != nil {
		return err
	}
	if err := salary.ValidateHours(summary.WeekendHours, salary.FieldWeekendHours); err != nil {
		return err
	}
	return salary.ValidateRates(summary.Rates())
}

// Save upserts summary by month key. Salary is recomputed from the summary's
// hours and rates; created_at survives updates. It returns the stored row.
func (r *MonthlyRepository) Save(ctx context.Context, summary timesheet.MonthlySummary) (timesheet.MonthlySummary, error) {
	if err := validateMonthly(summary); err != nil {
		return timesheet.MonthlySummary{}, err
	}
	salary.Recalculate(&summary)

	const upsertStmt = `
INSERT INTO monthly_summaries (
	month,
	weekday_hours,
	weekend_hours,
	weekday_rate,
	weekend_rate,
	salary,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(month) DO UPDATE SET
	weekday_hours = excluded.weekday_hours,
	weekend_hours = excluded.weekend_hours,
	weekday_rate = excluded.weekday_rate,
	weekend_rate = excluded.weekend_rate,
	salary = excluded.salary,
	updated_at = excluded.updated_at
RETURNING ` + monthlyColumns + `;`

	now := r.store.timestamp()
	saved, err := scanMonthly(r.store.db.QueryRowContext(ctx, upsertStmt,
		summary.Month,
		timesheet.Round2(summary.WeekdayHours),
		timesheet.Round2(summary.WeekendHours),
		summary.WeekdayRate,
		summary.WeekendRate,
		summary.Salary,
		now,
		now,
	))
	if err != nil {
		return timesheet.MonthlySummary{}, storageError(apperr.QueryFailed, "save monthly summary "+summary.Month, err)
	}

	r.store.logger.Info("saved monthly summary",
		"month", saved.Month,
		"id", saved.ID,
		"weekday_hours", saved.WeekdayHours,
		"weekend_hours", saved.WeekendHours,
		"salary", saved.Salary)
	return saved, nil
}

// Fetch returns the summary for month. The bool is false when no row exists.
func (r *MonthlyRepository) Fetch(ctx context.Context, month string) (timesheet.MonthlySummary, bool, error) {
	query := `SELECT ` + monthlyColumns + ` FROM monthly_summaries WHERE month = ?;`

	summary, err := scanMonthly(r.store.db.QueryRowContext(ctx, query, month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.MonthlySummary{}, false, nil
		}
		return timesheet.MonthlySummary{}, false, apperr.Wrap(apperr.QueryFailed, "fetch monthly summary "+month, err)
	}
	return summary, true, nil
}

// FetchAll returns every month, newest first. Month keys are "MM/YYYY", so
// ordering uses the year and then the month component.
func (r *MonthlyRepository) FetchAll(ctx context.Context) ([]timesheet.MonthlySummary, error) {
	query := `SELECT ` + monthlyColumns + `
FROM monthly_summaries
ORDER BY substr(month, 4, 4) DESC, substr(month, 1, 2) DESC;`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(apperr.QueryFailed, "query monthly summaries", err)
	}
	defer rows.Close()

	summaries := make([]timesheet.MonthlySummary, 0, 16)
	for rows.Next() {
		summary, err := scanMonthly(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.QueryFailed, "scan monthly summary", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryFailed, "iterate monthly summaries", err)
	}
	return summaries, nil
}

func (r *MonthlyRepository) Exists(ctx context.Context, month string) (bool, error) {
	var exists bool
	err := r.store.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM monthly_summaries WHERE month = ?);`, month).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.QueryFailed, "check monthly summary "+month, err)
	}
	return exists, nil
}

// Delete removes month and, through the foreign key, its weekly rows.
func (r *MonthlyRepository) Delete(ctx context.Context, month string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM monthly_summaries WHERE month = ?;`, month)
	if err != nil {
		return storageError(apperr.QueryFailed, "delete monthly summary "+month, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.QueryFailed, "read deleted row count", err)
	}
	if rowsAffected == 0 {
		return apperr.New(apperr.RecordNotFound, "month "+month)
	}

	r.store.logger.Info("deleted monthly summary", "month", month)
	return nil
}

// UpdateRates stores new rates for an existing month and recomputes its salary.
func (r *MonthlyRepository) UpdateRates(ctx context.Context, month string, rates timesheet.HourlyRates) (timesheet.MonthlySummary, error) {
	if err := salary.ValidateRates(rates); err != nil {
		return timesheet.MonthlySummary{}, err
	}

	summary, found, err := r.Fetch(ctx, month)
	if err != nil {
		return timesheet.MonthlySummary{}, err
	}
	if !found {
		return timesheet.MonthlySummary{}, apperr.New(apperr.RecordNotFound, "month "+month)
	}

	summary.WeekdayRate = rates.Weekday
	summary.WeekendRate = rates.Weekend
	return r.Save(ctx, summary)
}

// UpdateSalary recomputes one month's salary from its stored fields.
func (r *MonthlyRepository) UpdateSalary(ctx context.Context, month string) (timesheet.MonthlySummary, error) {
	summary, found, err := r.Fetch(ctx, month)
	if err != nil {
		return timesheet.MonthlySummary{}, err
	}
	if !found {
		return timesheet.MonthlySummary{}, apperr.New(apperr.RecordNotFound, "month "+month)
	}
	return r.Save(ctx, summary)
}

// RecalculateAllSalaries reapplies each month's own stored rates to its hours
// and persists the result. It returns how many rows changed.
func (r *MonthlyRepository) RecalculateAllSalaries(ctx context.Context) (int, error) {
	updated := 0
	err := r.store.withTx(ctx, "salary recalculation", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+monthlyColumns+` FROM monthly_summaries;`)
		if err != nil {
			return apperr.Wrap(apperr.QueryFailed, "query monthly summaries", err)
		}

		summaries := make([]timesheet.MonthlySummary, 0, 16)
		for rows.Next() {
			summary, err := scanMonthly(rows)
			if err != nil {
				_ = rows.Close()
				return apperr.Wrap(apperr.QueryFailed, "scan monthly summary", err)
			}
			summaries = append(summaries, summary)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return apperr.Wrap(apperr.QueryFailed, "iterate monthly summaries", err)
		}
		_ = rows.Close()

		stmt, err := tx.PrepareContext(ctx, `UPDATE monthly_summaries SET salary = ?, updated_at = ? WHERE id = ?;`)
		if err != nil {
			return apperr.Wrap(apperr.QueryFailed, "prepare salary update", err)
		}
		defer stmt.Close()

		now := r.store.timestamp()
		for _, summary := range summaries {
			before := summary.Salary
			salary.Recalculate(&summary)
			if summary.Salary == before {
				continue
			}
			if _, err := stmt.ExecContext(ctx, summary.Salary, now, summary.ID); err != nil {
				return storageError(apperr.QueryFailed, "update salary for "+summary.Month, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.store.logger.Info("recalculated salaries", "updated", updated)
	return updated, nil
}
