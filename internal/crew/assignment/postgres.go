package assignment

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"crew-workers/internal/common/database"
	"crew-workers/internal/common/errors"
)

const assignmentColumns = `id, job_id, crew_ids, lead_id, assigned_date, assigned_by, method,
	scores, confirmed_by, is_confirmed, notes, created_at, updated_at`

// PostgresStore keeps assignments in crew_assignments; job_id carries a unique constraint.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*CrewAssignment, error) {
	var (
		a                            CrewAssignment
		crewIDs, scores, confirmedBy []byte
		method                       string
		notes                        sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.JobID, &crewIDs, &a.LeadID, &a.AssignedDate, &a.AssignedBy, &method,
		&scores, &confirmedBy, &a.IsConfirmed, &notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Method = Method(method)
	a.Notes = notes.String

	if err := json.Unmarshal(crewIDs, &a.CrewIDs); err != nil {
		return nil, fmt.Errorf("decode crew_ids: %w", err)
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &a.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
	}
	a.ConfirmedBy = []string{}
	if len(confirmedBy) > 0 {
		if err := json.Unmarshal(confirmedBy, &a.ConfirmedBy); err != nil {
			return nil, fmt.Errorf("decode confirmed_by: %w", err)
		}
		if a.ConfirmedBy == nil {
			a.ConfirmedBy = []string{}
		}
	}
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *CrewAssignment) error {
	crewIDs, _ := json.Marshal(a.CrewIDs)
	confirmedBy, _ := json.Marshal(nonNil(a.ConfirmedBy))
	var scores []byte
	if a.Scores != nil {
		scores, _ = json.Marshal(a.Scores)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crew_assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.JobID, crewIDs, a.LeadID, a.AssignedDate, a.AssignedBy, string(a.Method),
		scores, confirmedBy, a.IsConfirmed, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: job %s", errors.ErrDuplicateAssignment, a.JobID)
	}
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*CrewAssignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM crew_assignments WHERE id = $1`, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errors.ErrAssignmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment %s: %w", id, err)
	}
	return a, nil
}

func (s *PostgresStore) GetByJob(ctx context.Context, jobID string) (*CrewAssignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM crew_assignments WHERE job_id = $1`, jobID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no assignment for job %s", errors.ErrAssignmentNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment for job %s: %w", jobID, err)
	}
	return a, nil
}

// Update locks the row with SELECT ... FOR UPDATE so concurrent confirmations serialize.
func (s *PostgresStore) Update(ctx context.Context, id string, fn UpdateFunc) (*CrewAssignment, error) {
	var out *CrewAssignment
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		a, err := scanAssignment(tx.QueryRowContext(ctx, `
			SELECT `+assignmentColumns+` FROM crew_assignments WHERE id = $1 FOR UPDATE`, id))
		if stderrors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", errors.ErrAssignmentNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("lock assignment %s: %w", id, err)
		}

		changed, err := fn(a)
		if err != nil {
			return err
		}
		out = a
		if !changed {
			return nil
		}

		crewIDs, _ := json.Marshal(a.CrewIDs)
		confirmedBy, _ := json.Marshal(nonNil(a.ConfirmedBy))
		_, err = tx.ExecContext(ctx, `
			UPDATE crew_assignments
			SET crew_ids = $2, lead_id = $3, confirmed_by = $4, is_confirmed = $5, notes = $6, updated_at = $7
			WHERE id = $1`,
			a.ID, crewIDs, a.LeadID, confirmedBy, a.IsConfirmed, a.Notes, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update assignment %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
