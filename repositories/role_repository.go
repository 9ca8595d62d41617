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

var ErrRolesNotFound = errors.New("no roles granted for this user in this tournament")

type RoleRepository interface {
	Grant(ctx context.Context, role *models.TournamentRole) error
	GetByUserAndTournament(ctx context.Context, userID, tournamentID uuid.UUID) (*models.TournamentRole, error)
	Update(ctx context.Context, role *models.TournamentRole) error
	Revoke(ctx context.Context, userID, tournamentID uuid.UUID) error
}

type postgresRoleRepository struct {
	db *sql.DB
}

func NewPostgresRoleRepository(db *sql.DB) RoleRepository {
	return &postgresRoleRepository{db: db}
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(strs []string) ([]models.Role, error) {
	out := make([]models.Role, len(strs))
	for i, s := range strs {
		role := models.Role(s)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in store", s)
		}
		out[i] = role
	}
	return out, nil
}

func (r *postgresRoleRepository) Grant(ctx context.Context, role *models.TournamentRole) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, user_id, tournament_id, roles) VALUES ($1, $2, $3, $4)`,
		role.ID, role.UserID, role.TournamentID, pq.Array(rolesToStrings(role.Roles)),
	)
	return err
}

func (r *postgresRoleRepository) GetByUserAndTournament(ctx context.Context, userID, tournamentID uuid.UUID) (*models.TournamentRole, error) {
	role := &models.TournamentRole{}
	var rawRoles []string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, tournament_id, roles FROM roles WHERE user_id = $1 AND tournament_id = $2`,
		userID, tournamentID,
	).Scan(&role.ID, &role.UserID, &role.TournamentID, pq.Array(&rawRoles))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRolesNotFound
		}
		return nil, fmt.Errorf("failed to scan roles for user %s: %w", userID, err)
	}
	role.Roles, err = stringsToRoles(rawRoles)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *postgresRoleRepository) Update(ctx context.Context, role *models.TournamentRole) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE roles SET roles = $1 WHERE user_id = $2 AND tournament_id = $3`,
		pq.Array(rolesToStrings(role.Roles)), role.UserID, role.TournamentID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRolesNotFound)
}

func (r *postgresRoleRepository) Revoke(ctx context.Context, userID, tournamentID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM roles WHERE user_id = $1 AND tournament_id = $2`, userID, tournamentID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRolesNotFound)
}
