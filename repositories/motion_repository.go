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
	ErrMotionNotFound     = errors.New("motion not found")
	ErrMotionTextConflict = errors.New("motion text is already in use")
)

type MotionRepository interface {
	Create(ctx context.Context, motion *models.Motion) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Motion, error)
	List(ctx context.Context) ([]models.Motion, error)
	Update(ctx context.Context, motion *models.Motion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresMotionRepository struct {
	db *sql.DB
}

func NewPostgresMotionRepository(db *sql.DB) MotionRepository {
	return &postgresMotionRepository{db: db}
}

func (r *postgresMotionRepository) Create(ctx context.Context, m *models.Motion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO motions (id, motion, adinfo) VALUES ($1, $2, $3)`,
		m.ID, m.Motion, m.AdInfo,
	)
	return r.handleMotionError(err)
}

func (r *postgresMotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Motion, error) {
	m := &models.Motion{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, motion, adinfo FROM motions WHERE id = $1`, id,
	).Scan(&m.ID, &m.Motion, &m.AdInfo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMotionNotFound
		}
		return nil, fmt.Errorf("failed to scan motion %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMotionRepository) List(ctx context.Context) ([]models.Motion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, motion, adinfo FROM motions ORDER BY motion ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query motions: %w", err)
	}
	defer rows.Close()

	motions := make([]models.Motion, 0)
	for rows.Next() {
		var m models.Motion
		if scanErr := rows.Scan(&m.ID, &m.Motion, &m.AdInfo); scanErr != nil {
			return nil, fmt.Errorf("failed to scan motion row: %w", scanErr)
		}
		motions = append(motions, m)
	}
	return motions, rows.Err()
}

func (r *postgresMotionRepository) Update(ctx context.Context, m *models.Motion) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE motions SET motion = $1, adinfo = $2 WHERE id = $3`,
		m.Motion, m.AdInfo, m.ID,
	)
	if err != nil {
		return r.handleMotionError(err)
	}
	return checkAffectedRows(result, ErrMotionNotFound)
}

func (r *postgresMotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM motions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMotionNotFound)
}

func (r *postgresMotionRepository) handleMotionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "motions_motion_key" {
			return ErrMotionTextConflict
		}
	}
	return err
}
