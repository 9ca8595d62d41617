package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
)

var ErrAffiliationNotFound = errors.New("affiliation not found")

type AffiliationRepository interface {
	Create(ctx context.Context, affiliation *models.Affiliation) error
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Affiliation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresAffiliationRepository struct {
	db *sql.DB
}

func NewPostgresAffiliationRepository(db *sql.DB) AffiliationRepository {
	return &postgresAffiliationRepository{db: db}
}

func (r *postgresAffiliationRepository) Create(ctx context.Context, a *models.Affiliation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO judge_team_affiliations (id, tournament_id, team_id, judge_user_id)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, a.TournamentID, a.TeamID, a.JudgeUserID,
	)
	return err
}

func (r *postgresAffiliationRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Affiliation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, team_id, judge_user_id
		 FROM judge_team_affiliations WHERE tournament_id = $1`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query affiliations for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	affiliations := make([]models.Affiliation, 0)
	for rows.Next() {
		var a models.Affiliation
		if scanErr := rows.Scan(&a.ID, &a.TournamentID, &a.TeamID, &a.JudgeUserID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan affiliation row: %w", scanErr)
		}
		affiliations = append(affiliations, a)
	}
	return affiliations, rows.Err()
}

func (r *postgresAffiliationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM judge_team_affiliations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAffiliationNotFound)
}
