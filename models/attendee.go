package models

import "github.com/google/uuid"

// Attendee is a tournament participant, usually a speaker of a team.
type Attendee struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	// Nil when the attendee is detached from any team.
	TeamID *uuid.UUID `json:"team_id,omitempty" db:"team_id"`
	// Speaker position (1 for the 1st speaker, 2 for the 2nd, etc.).
	// Nil for attendees affiliated with a team without speaking.
	// Two attendees of the same team cannot share a position.
	Position *int `json:"position,omitempty" db:"position"`

	// Point accumulators. Mutated only by the scoring ledger when a
	// debate's result is recorded; never written directly.
	IndividualPoints int `json:"individual_points" db:"individual_points"`
	PenaltyPoints    int `json:"penalty_points" db:"penalty_points"`
}
