package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
)

// RoleService manages per-tournament role grants and judge-team
// affiliations, and answers capability checks for handlers.
type RoleService interface {
	GrantRoles(ctx context.Context, userID, tournamentID uuid.UUID, roles []models.Role) (*models.TournamentRole, error)
	GetRoles(ctx context.Context, userID, tournamentID uuid.UUID) (*models.TournamentRole, error)
	UpdateRoles(ctx context.Context, userID, tournamentID uuid.UUID, roles []models.Role) (*models.TournamentRole, error)
	RevokeRoles(ctx context.Context, userID, tournamentID uuid.UUID) error
	// RequireRole returns ErrMissingRole unless the user holds the role or
	// is an organizer of the tournament.
	RequireRole(ctx context.Context, userID, tournamentID uuid.UUID, role models.Role) error

	CreateAffiliation(ctx context.Context, input AffiliationInput) (*models.Affiliation, error)
	ListAffiliations(ctx context.Context, tournamentID uuid.UUID) ([]models.Affiliation, error)
	DeleteAffiliation(ctx context.Context, id uuid.UUID) error
}

type AffiliationInput struct {
	TournamentID uuid.UUID
	TeamID       uuid.UUID
	JudgeUserID  uuid.UUID
}

type roleService struct {
	roleRepo        repositories.RoleRepository
	teamRepo        repositories.TeamRepository
	affiliationRepo repositories.AffiliationRepository
}

func NewRoleService(
	roleRepo repositories.RoleRepository,
	teamRepo repositories.TeamRepository,
	affiliationRepo repositories.AffiliationRepository,
) RoleService {
	return &roleService{
		roleRepo:        roleRepo,
		teamRepo:        teamRepo,
		affiliationRepo: affiliationRepo,
	}
}

func validateRoles(roles []models.Role) error {
	if len(roles) == 0 {
		return fmt.Errorf("%w: at least one role is required", ErrValidation)
	}
	seen := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
		}
		if seen[role] {
			return fmt.Errorf("%w: duplicate role %q", ErrValidation, role)
		}
		seen[role] = true
	}
	return nil
}

func (s *roleService) GrantRoles(ctx context.Context, userID, tournamentID uuid.UUID, roles []models.Role) (*models.TournamentRole, error) {
	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role id: %w", err)
	}
	grant := &models.TournamentRole{
		ID:           id,
		UserID:       userID,
		TournamentID: tournamentID,
		Roles:        roles,
	}
	if err := s.roleRepo.Grant(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to grant roles: %w", err)
	}
	return grant, nil
}

func (s *roleService) GetRoles(ctx context.Context, userID, tournamentID uuid.UUID) (*models.TournamentRole, error) {
	grant, err := s.roleRepo.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRolesNotFound) {
			return nil, ErrRolesNotFound
		}
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return grant, nil
}

func (s *roleService) UpdateRoles(ctx context.Context, userID, tournamentID uuid.UUID, roles []models.Role) (*models.TournamentRole, error) {
	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	grant, err := s.GetRoles(ctx, userID, tournamentID)
	if err != nil {
		return nil, err
	}
	grant.Roles = roles
	if err := s.roleRepo.Update(ctx, grant); err != nil {
		if errors.Is(err, repositories.ErrRolesNotFound) {
			return nil, ErrRolesNotFound
		}
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}
	return grant, nil
}

func (s *roleService) RevokeRoles(ctx context.Context, userID, tournamentID uuid.UUID) error {
	if err := s.roleRepo.Revoke(ctx, userID, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrRolesNotFound) {
			return ErrRolesNotFound
		}
		return fmt.Errorf("failed to revoke roles: %w", err)
	}
	return nil
}

func (s *roleService) RequireRole(ctx context.Context, userID, tournamentID uuid.UUID, role models.Role) error {
	grant, err := s.roleRepo.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRolesNotFound) {
			return ErrMissingRole
		}
		return err
	}
	// Organizers hold every permission.
	if grant.Has(models.RoleOrganizer) || grant.Has(role) {
		return nil
	}
	return fmt.Errorf("%w: %q required", ErrMissingRole, role)
}

func (s *roleService) CreateAffiliation(ctx context.Context, input AffiliationInput) (*models.Affiliation, error) {
	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.TournamentID != input.TournamentID {
		return nil, ErrCrossTournamentEntity
	}
	if err := s.RequireRole(ctx, input.JudgeUserID, input.TournamentID, models.RoleJudge); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate affiliation id: %w", err)
	}
	affiliation := &models.Affiliation{
		ID:           id,
		TournamentID: input.TournamentID,
		TeamID:       input.TeamID,
		JudgeUserID:  input.JudgeUserID,
	}
	if err := s.affiliationRepo.Create(ctx, affiliation); err != nil {
		return nil, fmt.Errorf("failed to create affiliation: %w", err)
	}
	return affiliation, nil
}

func (s *roleService) ListAffiliations(ctx context.Context, tournamentID uuid.UUID) ([]models.Affiliation, error) {
	affiliations, err := s.affiliationRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list affiliations: %w", err)
	}
	return affiliations, nil
}

func (s *roleService) DeleteAffiliation(ctx context.Context, id uuid.UUID) error {
	if err := s.affiliationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAffiliationNotFound) {
			return fmt.Errorf("%w: affiliation", ErrNotFound)
		}
		return fmt.Errorf("failed to delete affiliation %s: %w", id, err)
	}
	return nil
}
