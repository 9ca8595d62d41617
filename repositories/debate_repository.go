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
	ErrDebateNotFound           = errors.New("debate not found")
	ErrDebateAssignmentNotFound = errors.New("debate assignment not found")
	ErrDebateRoundInvalid       = errors.New("debate references an invalid round")
	ErrDebateRoomInvalid        = errors.New("debate references an invalid room")
	ErrDebateTeamConflict       = errors.New("team is already assigned to this debate")
	ErrDebateJudgeConflict      = errors.New("judge is already assigned to this debate")
)

type DebateRepository interface {
	Create(ctx context.Context, exec SQLExecutor, debate *models.Debate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Debate, error)
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]models.Debate, error)
	CountByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) (int, error)
	UpdateRoom(ctx context.Context, exec SQLExecutor, debateID, roomID uuid.UUID) error
	UpdateMarshal(ctx context.Context, exec SQLExecutor, debateID uuid.UUID, marshalUserID *uuid.UUID) error

	CreateTeamAssignment(ctx context.Context, exec SQLExecutor, a *models.DebateTeamAssignment) error
	CreateJudgeAssignment(ctx context.Context, exec SQLExecutor, a *models.DebateJudgeAssignment) error
	ListTeamAssignments(ctx context.Context, exec SQLExecutor, debateID uuid.UUID) ([]models.DebateTeamAssignment, error)
	ListJudgeAssignments(ctx context.Context, exec SQLExecutor, debateID uuid.UUID) ([]models.DebateJudgeAssignment, error)
	// Round-scoped views used to re-validate no-double-booking invariants.
	ListTeamIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error)
	ListJudgeUserIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error)
	ListRoomIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error)
	UpdateTeamAssignmentTeam(ctx context.Context, exec SQLExecutor, debateID, currentTeamID, newTeamID uuid.UUID) error
	UpdateTeamAssignmentSide(ctx context.Context, exec SQLExecutor, debateID, teamID uuid.UUID, side models.Side) error
	UpdateJudgeAssignment(ctx context.Context, exec SQLExecutor, debateID, currentJudgeID, newJudgeID uuid.UUID) error
}

type postgresDebateRepository struct {
	db *sql.DB
}

func NewPostgresDebateRepository(db *sql.DB) DebateRepository {
	return &postgresDebateRepository{db: db}
}

func (r *postgresDebateRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDebateRepository) Create(ctx context.Context, exec SQLExecutor, d *models.Debate) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO debates (id, tournament_id, round_id, room_id, motion_id, marshal_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := executor.ExecContext(ctx, query,
		d.ID, d.TournamentID, d.RoundID, d.RoomID, d.MotionID, d.MarshalUserID,
	)
	return r.handleDebateError(err)
}

func (r *postgresDebateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Debate, error) {
	query := `
		SELECT id, tournament_id, round_id, room_id, motion_id, marshal_user_id
		FROM debates WHERE id = $1`

	d := &models.Debate{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.TournamentID, &d.RoundID, &d.RoomID, &d.MotionID, &d.MarshalUserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDebateNotFound
		}
		return nil, fmt.Errorf("failed to scan debate %s: %w", id, err)
	}
	return d, nil
}

func (r *postgresDebateRepository) ListByRound(ctx context.Context, roundID uuid.UUID) ([]models.Debate, error) {
	query := `
		SELECT id, tournament_id, round_id, room_id, motion_id, marshal_user_id
		FROM debates WHERE round_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debates for round %s: %w", roundID, err)
	}
	defer rows.Close()

	debates := make([]models.Debate, 0)
	for rows.Next() {
		var d models.Debate
		if scanErr := rows.Scan(
			&d.ID, &d.TournamentID, &d.RoundID, &d.RoomID, &d.MotionID, &d.MarshalUserID,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan debate row: %w", scanErr)
		}
		debates = append(debates, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during debate rows iteration: %w", err)
	}
	return debates, nil
}

func (r *postgresDebateRepository) CountByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM debates WHERE round_id = $1`, roundID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count debates for round %s: %w", roundID, err)
	}
	return count, nil
}

func (r *postgresDebateRepository) UpdateRoom(ctx context.Context, exec SQLExecutor, debateID, roomID uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE debates SET room_id = $1 WHERE id = $2`, roomID, debateID,
	)
	if err != nil {
		return r.handleDebateError(err)
	}
	return checkAffectedRows(result, ErrDebateNotFound)
}

func (r *postgresDebateRepository) UpdateMarshal(ctx context.Context, exec SQLExecutor, debateID uuid.UUID, marshalUserID *uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE debates SET marshal_user_id = $1 WHERE id = $2`, marshalUserID, debateID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDebateNotFound)
}

func (r *postgresDebateRepository) CreateTeamAssignment(ctx context.Context, exec SQLExecutor, a *models.DebateTeamAssignment) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO debate_team_assignments (id, debate_id, team_id, side) VALUES ($1, $2, $3, $4)`,
		a.ID, a.DebateID, a.TeamID, a.Side,
	)
	return r.handleDebateError(err)
}

func (r *postgresDebateRepository) CreateJudgeAssignment(ctx context.Context, exec SQLExecutor, a *models.DebateJudgeAssignment) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO debate_judge_assignments (id, debate_id, judge_user_id) VALUES ($1, $2, $3)`,
		a.ID, a.DebateID, a.JudgeUserID,
	)
	return r.handleDebateError(err)
}

func (r *postgresDebateRepository) ListTeamAssignments(ctx context.Context, exec SQLExecutor, debateID uuid.UUID) ([]models.DebateTeamAssignment, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, debate_id, team_id, side FROM debate_team_assignments WHERE debate_id = $1 ORDER BY id ASC`,
		debateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query team assignments for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	assignments := make([]models.DebateTeamAssignment, 0)
	for rows.Next() {
		var a models.DebateTeamAssignment
		if scanErr := rows.Scan(&a.ID, &a.DebateID, &a.TeamID, &a.Side); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team assignment row: %w", scanErr)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *postgresDebateRepository) ListJudgeAssignments(ctx context.Context, exec SQLExecutor, debateID uuid.UUID) ([]models.DebateJudgeAssignment, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, debate_id, judge_user_id FROM debate_judge_assignments WHERE debate_id = $1 ORDER BY id ASC`,
		debateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query judge assignments for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	assignments := make([]models.DebateJudgeAssignment, 0)
	for rows.Next() {
		var a models.DebateJudgeAssignment
		if scanErr := rows.Scan(&a.ID, &a.DebateID, &a.JudgeUserID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan judge assignment row: %w", scanErr)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *postgresDebateRepository) listIDsByRound(ctx context.Context, exec SQLExecutor, query string, roundID uuid.UUID) ([]uuid.UUID, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round-scoped ids for round %s: %w", roundID, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan id row: %w", scanErr)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresDebateRepository) ListTeamIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsByRound(ctx, exec, `
		SELECT a.team_id FROM debate_team_assignments a
		JOIN debates d ON d.id = a.debate_id
		WHERE d.round_id = $1`, roundID)
}

func (r *postgresDebateRepository) ListJudgeUserIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsByRound(ctx, exec, `
		SELECT a.judge_user_id FROM debate_judge_assignments a
		JOIN debates d ON d.id = a.debate_id
		WHERE d.round_id = $1`, roundID)
}

func (r *postgresDebateRepository) ListRoomIDsByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsByRound(ctx, exec, `SELECT room_id FROM debates WHERE round_id = $1`, roundID)
}

func (r *postgresDebateRepository) UpdateTeamAssignmentTeam(ctx context.Context, exec SQLExecutor, debateID, currentTeamID, newTeamID uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE debate_team_assignments SET team_id = $1 WHERE debate_id = $2 AND team_id = $3`,
		newTeamID, debateID, currentTeamID,
	)
	if err != nil {
		return r.handleDebateError(err)
	}
	return checkAffectedRows(result, ErrDebateAssignmentNotFound)
}

func (r *postgresDebateRepository) UpdateTeamAssignmentSide(ctx context.Context, exec SQLExecutor, debateID, teamID uuid.UUID, side models.Side) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE debate_team_assignments SET side = $1 WHERE debate_id = $2 AND team_id = $3`,
		side, debateID, teamID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDebateAssignmentNotFound)
}

func (r *postgresDebateRepository) UpdateJudgeAssignment(ctx context.Context, exec SQLExecutor, debateID, currentJudgeID, newJudgeID uuid.UUID) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE debate_judge_assignments SET judge_user_id = $1 WHERE debate_id = $2 AND judge_user_id = $3`,
		newJudgeID, debateID, currentJudgeID,
	)
	if err != nil {
		return r.handleDebateError(err)
	}
	return checkAffectedRows(result, ErrDebateAssignmentNotFound)
}

func (r *postgresDebateRepository) handleDebateError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "debates_round_id_fkey":
			return ErrDebateRoundInvalid
		case "debates_room_id_fkey":
			return ErrDebateRoomInvalid
		case "debate_team_assignments_debate_id_team_id_key":
			return ErrDebateTeamConflict
		case "debate_judge_assignments_debate_id_judge_user_id_key":
			return ErrDebateJudgeConflict
		}
	}
	return err
}
