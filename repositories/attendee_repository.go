package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrAttendeeNotFound         = errors.New("attendee not found")
	ErrAttendeePositionConflict = errors.New("speaker position is already taken within this team")
	ErrAttendeeTeamInvalid      = errors.New("attendee references an invalid team")
)

type AttendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Attendee, error)
	Update(ctx context.Context, attendee *models.Attendee) error
	// AddPoints appends deltas to the accumulators. Only the scoring
	// ledger calls this, always inside its transaction.
	AddPoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, individualDelta, penaltyDelta int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresAttendeeRepository struct {
	db *sql.DB
}

func NewPostgresAttendeeRepository(db *sql.DB) AttendeeRepository {
	return &postgresAttendeeRepository{db: db}
}

func (r *postgresAttendeeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAttendeeRepository) Create(ctx context.Context, a *models.Attendee) error {
	query := `
		INSERT INTO attendees (id, name, team_id, position, individual_points, penalty_points)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Name, a.TeamID, a.Position, a.IndividualPoints, a.PenaltyPoints,
	)
	return r.handleAttendeeError(err)
}

func (r *postgresAttendeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	query := `
		SELECT id, name, team_id, position, individual_points, penalty_points
		FROM attendees WHERE id = $1`

	a := &models.Attendee{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.TeamID, &a.Position, &a.IndividualPoints, &a.PenaltyPoints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to scan attendee %s: %w", id, err)
	}
	return a, nil
}

func (r *postgresAttendeeRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Attendee, error) {
	query := `
		SELECT id, name, team_id, position, individual_points, penalty_points
		FROM attendees WHERE team_id = $1 ORDER BY position ASC NULLS LAST, name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees for team %s: %w", teamID, err)
	}
	defer rows.Close()

	attendees := make([]models.Attendee, 0)
	for rows.Next() {
		var a models.Attendee
		if scanErr := rows.Scan(
			&a.ID, &a.Name, &a.TeamID, &a.Position, &a.IndividualPoints, &a.PenaltyPoints,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan attendee row: %w", scanErr)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *postgresAttendeeRepository) Update(ctx context.Context, a *models.Attendee) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendees SET name = $1, team_id = $2, position = $3 WHERE id = $4`,
		a.Name, a.TeamID, a.Position, a.ID,
	)
	if err != nil {
		return r.handleAttendeeError(err)
	}
	return checkAffectedRows(result, ErrAttendeeNotFound)
}

func (r *postgresAttendeeRepository) AddPoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, individualDelta, penaltyDelta int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE attendees
		 SET individual_points = individual_points + $1, penalty_points = penalty_points + $2
		 WHERE id = $3`,
		individualDelta, penaltyDelta, id,
	)
	if err != nil {
		return fmt.Errorf("failed to add points to attendee %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrAttendeeNotFound)
}

func (r *postgresAttendeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAttendeeNotFound)
}

func (r *postgresAttendeeRepository) handleAttendeeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "attendees_team_id_position_key":
			return ErrAttendeePositionConflict
		case "attendees_team_id_fkey":
			return ErrAttendeeTeamInvalid
		}
	}
	return err
}
