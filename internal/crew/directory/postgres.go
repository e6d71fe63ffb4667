// Package directory reads crew members, their profiles and approved time off from the systems
// of record.
package directory

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/models"

	"github.com/lib/pq"
)

const (
	queryCandidatePool = `
		SELECT id, name, skills, performance_rating, home_latitude, home_longitude, home_postal_code
		FROM crew_members
		WHERE is_active = true
		ORDER BY id`

	queryCrewProfile = `
		SELECT id, name, email, phone
		FROM crew_members
		WHERE id = $1`

	queryApprovedLeave = `
		SELECT EXISTS (
			SELECT 1 FROM time_off_requests
			WHERE crew_id = $1
			  AND status = 'approved'
			  AND start_date <= $2
			  AND end_date >= $2
		)`
)

// Postgres serves the candidate pool, profiles and approved leave from the crew database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// GetCandidatePool returns every active crew member. Skill fit is left to scoring.
func (p *Postgres) GetCandidatePool(ctx context.Context, _ *models.Job) ([]models.CrewCandidate, error) {
	rows, err := p.db.QueryContext(ctx, queryCandidatePool)
	if err != nil {
		return nil, fmt.Errorf("query candidate pool: %w", err)
	}
	defer rows.Close()

	pool := make([]models.CrewCandidate, 0)
	for rows.Next() {
		var (
			c          models.CrewCandidate
			skills     pq.StringArray
			rating     sql.NullFloat64
			lat, lon   sql.NullFloat64
			postalCode sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &skills, &rating, &lat, &lon, &postalCode); err != nil {
			return nil, fmt.Errorf("scan crew member: %w", err)
		}
		c.Skills = []string(skills)
		if rating.Valid {
			c.PerformanceRating = &rating.Float64
		}
		c.HomeLocation = homeLocation(lat, lon, postalCode)
		pool = append(pool, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate pool: %w", err)
	}
	return pool, nil
}

func homeLocation(lat, lon sql.NullFloat64, postalCode sql.NullString) *models.Location {
	if !lat.Valid && !lon.Valid && !postalCode.Valid {
		return nil
	}
	loc := &models.Location{PostalCode: postalCode.String}
	if lat.Valid && lon.Valid {
		loc.Latitude = &lat.Float64
		loc.Longitude = &lon.Float64
	}
	return loc
}

// GetCrewProfile returns errors.ErrCrewNotFound for an unknown id.
func (p *Postgres) GetCrewProfile(ctx context.Context, crewID string) (*models.CrewProfile, error) {
	var (
		profile      models.CrewProfile
		email, phone sql.NullString
	)
	err := p.db.QueryRowContext(ctx, queryCrewProfile, crewID).Scan(&profile.ID, &profile.Name, &email, &phone)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errors.ErrCrewNotFound, crewID)
	}
	if err != nil {
		return nil, fmt.Errorf("query crew profile %s: %w", crewID, err)
	}
	profile.Email = email.String
	profile.Phone = phone.String
	return &profile, nil
}

// IsOnApprovedLeave compares calendar dates, so both boundary days count as leave.
func (p *Postgres) IsOnApprovedLeave(ctx context.Context, crewID string, date time.Time) (bool, error) {
	var onLeave bool
	day := date.UTC().Format(models.DateLayout)
	if err := p.db.QueryRowContext(ctx, queryApprovedLeave, crewID, day).Scan(&onLeave); err != nil {
		return false, fmt.Errorf("query approved leave for %s: %w", crewID, err)
	}
	return onLeave, nil
}
