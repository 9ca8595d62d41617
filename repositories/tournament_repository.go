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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament full name is already in use")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateCrestKey(ctx context.Context, id uuid.UUID, crestKey *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, full_name, shortened_name,
	speech_time, start_protected_time, end_protected_time, ad_vocem_time,
	debate_time_slot, debate_preparation_time, created_at, crest_key`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			id, full_name, shortened_name,
			speech_time, start_protected_time, end_protected_time, ad_vocem_time,
			debate_time_slot, debate_preparation_time, crest_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.FullName, t.ShortenedName,
		t.SpeechTime, t.StartProtectedTime, t.EndProtectedTime, t.AdVocemTime,
		t.DebateTimeSlot, t.DebatePreparationTime, t.CrestKey,
	).Scan(&t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.FullName, &t.ShortenedName,
		&t.SpeechTime, &t.StartProtectedTime, &t.EndProtectedTime, &t.AdVocemTime,
		&t.DebateTimeSlot, &t.DebatePreparationTime, &t.CreatedAt, &t.CrestKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.FullName, &t.ShortenedName,
			&t.SpeechTime, &t.StartProtectedTime, &t.EndProtectedTime, &t.AdVocemTime,
			&t.DebateTimeSlot, &t.DebatePreparationTime, &t.CreatedAt, &t.CrestKey,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			full_name = $1, shortened_name = $2,
			speech_time = $3, start_protected_time = $4, end_protected_time = $5, ad_vocem_time = $6,
			debate_time_slot = $7, debate_preparation_time = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		t.FullName, t.ShortenedName,
		t.SpeechTime, t.StartProtectedTime, t.EndProtectedTime, t.AdVocemTime,
		t.DebateTimeSlot, t.DebatePreparationTime, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateCrestKey(ctx context.Context, id uuid.UUID, crestKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET crest_key = $1 WHERE id = $2`, crestKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation
		if pqErr.Constraint == "tournaments_full_name_key" {
			return ErrTournamentNameConflict
		}
	}
	return err
}
