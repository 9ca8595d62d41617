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
	ErrRoundNotFound      = errors.New("round not found")
	ErrRoundPhaseInvalid  = errors.New("round references an invalid phase")
	ErrRoundMotionInvalid = errors.New("round references an invalid motion")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Round, error)
	// GetForUpdate locks the round row for the lifetime of the enclosing
	// transaction, serializing concurrent draw and reassignment calls
	// against the same round.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Round, error)
	ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, expected, next models.Status) error
	HasSuccessor(ctx context.Context, roundID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundColumns = `
	id, phase_id, name, planned_start_time, planned_end_time, motion_id, previous_round_id, status`

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (id, phase_id, name, planned_start_time, planned_end_time, motion_id, previous_round_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := executor.ExecContext(ctx, query,
		round.ID, round.PhaseID, round.Name,
		round.PlannedStartTime, round.PlannedEndTime,
		round.MotionID, round.PreviousRoundID, round.Status,
	)
	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) scanRound(row *sql.Row) (*models.Round, error) {
	round := &models.Round{}
	err := row.Scan(
		&round.ID, &round.PhaseID, &round.Name,
		&round.PlannedStartTime, &round.PlannedEndTime,
		&round.MotionID, &round.PreviousRoundID, &round.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return round, nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	query := `SELECT` + roundColumns + ` FROM rounds WHERE id = $1`
	return r.scanRound(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRoundRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + roundColumns + ` FROM rounds WHERE id = $1 FOR UPDATE`
	return r.scanRound(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresRoundRepository) ListByPhase(ctx context.Context, phaseID uuid.UUID) ([]models.Round, error) {
	query := `SELECT` + roundColumns + ` FROM rounds WHERE phase_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for phase %s: %w", phaseID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if scanErr := rows.Scan(
			&round.ID, &round.PhaseID, &round.Name,
			&round.PlannedStartTime, &round.PlannedEndTime,
			&round.MotionID, &round.PreviousRoundID, &round.Status,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, expected, next models.Status) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET status = $1 WHERE id = $2 AND status = $3`,
		next, id, expected,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) HasSuccessor(ctx context.Context, roundID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rounds WHERE previous_round_id = $1)`, roundID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check round successor: %w", err)
	}
	return exists, nil
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "rounds_phase_id_fkey":
			return ErrRoundPhaseInvalid
		case "rounds_motion_id_fkey":
			return ErrRoundMotionInvalid
		}
	}
	return err
}
