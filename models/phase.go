package models

import "github.com/google/uuid"

// Phase is a stage of a tournament (group stage, quarterfinals, ...)
// holding one or more rounds. Phases form an acyclic chain through
// PreviousPhaseID; a predecessor can only be referenced once it is completed,
// so the chain always points backward in time.
type Phase struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	// Must be unique within the tournament.
	Name     string `json:"name" db:"name"`
	IsFinals bool   `json:"is_finals" db:"is_finals"`
	// Nil for the opening phase. At most one phase per tournament
	// may have no predecessor.
	PreviousPhaseID *uuid.UUID `json:"previous_phase_id,omitempty" db:"previous_phase_id"`
	// Number of teams per debate for group phases. Must be nil when IsFinals
	// is set: a finals phase always seats the whole pool in one debate.
	GroupSize *int   `json:"group_size,omitempty" db:"group_size"`
	Status    Status `json:"status" db:"status"`

	Rounds []Round `json:"rounds,omitempty" db:"-"`
}
