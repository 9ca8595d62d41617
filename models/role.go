package models

import "github.com/google/uuid"

// Role: закрытый набор ролей в рамках турнира.
// Within a tournament, users must be granted roles for their permissions
// to be defined. A newly created user has no roles; multiple users can
// hold the same role.
type Role string

const (
	// RoleOrganizer grants every permission within the tournament.
	RoleOrganizer Role = "organizer"
	// RoleAdjudicatorCoordinator manages draws and judge panels.
	RoleAdjudicatorCoordinator Role = "adjudicator_coordinator"
	// RoleJudge may submit verdicts for debates they were assigned to.
	RoleJudge Role = "judge"
	// RoleMarshal conducts debates and, for pragmatic reasons,
	// may submit verdicts on judges' behalf.
	RoleMarshal Role = "marshal"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleAdjudicatorCoordinator, RoleJudge, RoleMarshal:
		return true
	}
	return false
}

// TournamentRole binds a user's role set to one tournament.
type TournamentRole struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Roles        []Role    `json:"roles" db:"roles"`
}

func (tr TournamentRole) Has(role Role) bool {
	for _, r := range tr.Roles {
		if r == role {
			return true
		}
	}
	return false
}
