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
	ErrResultNotFound = errors.New("debate result not found")
	// ErrResultDuplicate guards the one-row-per-(debate, attendee) rule,
	// keeping accumulators equal to the ledger sum.
	ErrResultDuplicate = errors.New("result already recorded for this attendee in this debate")
)

// PhasePoints is an aggregated ledger slice for one team within a phase.
type PhasePoints struct {
	TeamID           uuid.UUID
	TeamName         string
	IndividualPoints int
	PenaltyPoints    int
}

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.DebateResult) error
	ListByDebate(ctx context.Context, debateID uuid.UUID) ([]models.DebateResult, error)
	// SumByPhase aggregates the raw ledger rows of all debates belonging to
	// the phase's rounds, grouped per team. Standings derive from this and
	// nothing else.
	SumByPhase(ctx context.Context, phaseID uuid.UUID) ([]PhasePoints, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.DebateResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO debate_results (id, debate_id, attendee_id, individual_delta, penalty_delta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING recorded_at`

	err := executor.QueryRowContext(ctx, query,
		result.ID, result.DebateID, result.AttendeeID, result.IndividualDelta, result.PenaltyDelta,
	).Scan(&result.RecordedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "debate_results_debate_id_attendee_id_key" {
				return ErrResultDuplicate
			}
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) ListByDebate(ctx context.Context, debateID uuid.UUID) ([]models.DebateResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, debate_id, attendee_id, individual_delta, penalty_delta, recorded_at
		 FROM debate_results WHERE debate_id = $1 ORDER BY recorded_at ASC`,
		debateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	results := make([]models.DebateResult, 0)
	for rows.Next() {
		var res models.DebateResult
		if scanErr := rows.Scan(
			&res.ID, &res.DebateID, &res.AttendeeID, &res.IndividualDelta, &res.PenaltyDelta, &res.RecordedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", scanErr)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) SumByPhase(ctx context.Context, phaseID uuid.UUID) ([]PhasePoints, error) {
	query := `
		SELECT t.id, t.full_name,
		       COALESCE(SUM(dr.individual_delta), 0),
		       COALESCE(SUM(dr.penalty_delta), 0)
		FROM debate_results dr
		JOIN attendees a ON a.id = dr.attendee_id
		JOIN teams t ON t.id = a.team_id
		JOIN debates d ON d.id = dr.debate_id
		JOIN rounds rd ON rd.id = d.round_id
		WHERE rd.phase_id = $1
		GROUP BY t.id, t.full_name`

	rows, err := r.db.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate results for phase %s: %w", phaseID, err)
	}
	defer rows.Close()

	points := make([]PhasePoints, 0)
	for rows.Next() {
		var p PhasePoints
		if scanErr := rows.Scan(&p.TeamID, &p.TeamName, &p.IndividualPoints, &p.PenaltyPoints); scanErr != nil {
			return nil, fmt.Errorf("failed to scan phase points row: %w", scanErr)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
