package workload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crew-workers/internal/common/database"
)

const recordColumns = `crew_id, week_start, total_jobs, scheduled_jobs, in_progress_jobs,
	completed_jobs, hours_worked, utilization_rate, is_overloaded, last_updated`

// PostgresStore keeps ledger rows in crew_workload, unique on (crew_id, week_start).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.CrewID, &rec.WeekStart, &rec.TotalJobs, &rec.ScheduledJobs, &rec.InProgressJobs,
		&rec.CompletedJobs, &rec.HoursWorked, &rec.UtilizationRate, &rec.IsOverloaded, &rec.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	rec.WeekStart = rec.WeekStart.UTC()
	return &rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, key Key) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM crew_workload
		WHERE crew_id = $1 AND week_start = $2`, key.CrewID, key.WeekStart)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workload %s: %w", key, err)
	}
	return rec, nil
}

// Upsert inserts the zero row if missing, then locks it with FOR UPDATE for the read-modify-write.
func (s *PostgresStore) Upsert(ctx context.Context, key Key, mutate MutateFunc) (*Record, error) {
	var out *Record
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO crew_workload (crew_id, week_start, last_updated)
			VALUES ($1, $2, $3)
			ON CONFLICT (crew_id, week_start) DO NOTHING`,
			key.CrewID, key.WeekStart, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert workload %s: %w", key, err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert workload %s: %w", key, err)
		}

		rec, err := scanRecord(tx.QueryRowContext(ctx, `
			SELECT `+recordColumns+`
			FROM crew_workload
			WHERE crew_id = $1 AND week_start = $2
			FOR UPDATE`, key.CrewID, key.WeekStart))
		if err != nil {
			return fmt.Errorf("lock workload %s: %w", key, err)
		}

		mutate(rec, inserted == 1)

		_, err = tx.ExecContext(ctx, `
			UPDATE crew_workload
			SET total_jobs = $3, scheduled_jobs = $4, in_progress_jobs = $5, completed_jobs = $6,
				hours_worked = $7, utilization_rate = $8, is_overloaded = $9, last_updated = $10
			WHERE crew_id = $1 AND week_start = $2`,
			key.CrewID, key.WeekStart, rec.TotalJobs, rec.ScheduledJobs, rec.InProgressJobs,
			rec.CompletedJobs, rec.HoursWorked, rec.UtilizationRate, rec.IsOverloaded, rec.LastUpdated)
		if err != nil {
			return fmt.Errorf("update workload %s: %w", key, err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ListWeek(ctx context.Context, weekStart time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM crew_workload
		WHERE week_start = $1
		ORDER BY crew_id`, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list workload week %s: %w", weekStart.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workload: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
