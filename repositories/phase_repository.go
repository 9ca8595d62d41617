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
	ErrPhaseNotFound          = errors.New("phase not found")
	ErrPhaseNameConflict      = errors.New("phase name is already in use within this tournament")
	ErrPhaseTournamentInvalid = errors.New("phase references an invalid tournament")
)

type PhaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Phase, error)
	// UpdateStatus is a compare-and-set: it only succeeds when the stored
	// status still equals expected, which guards racing transitions.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, expected, next models.Status) error
	HasSuccessor(ctx context.Context, phaseID uuid.UUID) (bool, error)
	HasChainHead(ctx context.Context, tournamentID uuid.UUID) (bool, error)
	// CountUnfinishedRounds returns how many rounds of the phase are not
	// yet completed or cancelled.
	CountUnfinishedRounds(ctx context.Context, phaseID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

func (r *postgresPhaseRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPhaseRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Phase) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO phases (id, tournament_id, name, is_finals, previous_phase_id, group_size, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := executor.ExecContext(ctx, query,
		p.ID, p.TournamentID, p.Name, p.IsFinals, p.PreviousPhaseID, p.GroupSize, p.Status,
	)
	return r.handlePhaseError(err)
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	query := `
		SELECT id, tournament_id, name, is_finals, previous_phase_id, group_size, status
		FROM phases WHERE id = $1`

	p := &models.Phase{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TournamentID, &p.Name, &p.IsFinals, &p.PreviousPhaseID, &p.GroupSize, &p.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to scan phase %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresPhaseRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Phase, error) {
	query := `
		SELECT id, tournament_id, name, is_finals, previous_phase_id, group_size, status
		FROM phases WHERE tournament_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	phases := make([]models.Phase, 0)
	for rows.Next() {
		var p models.Phase
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.Name, &p.IsFinals, &p.PreviousPhaseID, &p.GroupSize, &p.Status,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan phase row: %w", scanErr)
		}
		phases = append(phases, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during phase rows iteration: %w", err)
	}
	return phases, nil
}

func (r *postgresPhaseRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, expected, next models.Status) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE phases SET status = $1 WHERE id = $2 AND status = $3`,
		next, id, expected,
	)
	if err != nil {
		return err
	}
	// Zero affected rows means either a missing phase or a lost race;
	// the service distinguishes the two by re-reading.
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *postgresPhaseRepository) HasSuccessor(ctx context.Context, phaseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM phases WHERE previous_phase_id = $1)`, phaseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check phase successor: %w", err)
	}
	return exists, nil
}

func (r *postgresPhaseRepository) HasChainHead(ctx context.Context, tournamentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM phases WHERE previous_phase_id IS NULL AND tournament_id = $1)`,
		tournamentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check phase chain head: %w", err)
	}
	return exists, nil
}

func (r *postgresPhaseRepository) CountUnfinishedRounds(ctx context.Context, phaseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rounds WHERE phase_id = $1 AND status NOT IN ($2, $3)`,
		phaseID, models.StatusCompleted, models.StatusCancelled,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unfinished rounds of phase %s: %w", phaseID, err)
	}
	return count, nil
}

func (r *postgresPhaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *postgresPhaseRepository) handlePhaseError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "phases_tournament_id_name_key":
			return ErrPhaseNameConflict
		case "phases_tournament_id_fkey":
			return ErrPhaseTournamentInvalid
		}
	}
	return err
}
