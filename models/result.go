package models

import (
	"time"

	"github.com/google/uuid"
)

// DebateResult is one ledger row: the point outcome of a single attendee
// in a single debate. Attendee accumulators are kept equal to the sum of
// these rows; the rows, not the accumulators, are authoritative.
type DebateResult struct {
	ID              uuid.UUID `json:"id" db:"id"`
	DebateID        uuid.UUID `json:"debate_id" db:"debate_id"`
	AttendeeID      uuid.UUID `json:"attendee_id" db:"attendee_id"`
	IndividualDelta int       `json:"individual_delta" db:"individual_delta"`
	PenaltyDelta    int       `json:"penalty_delta" db:"penalty_delta"`
	RecordedAt      time.Time `json:"recorded_at" db:"recorded_at"`
}

// TeamStanding is a derived ranking entry for one team within a phase.
type TeamStanding struct {
	TeamID           uuid.UUID `json:"team_id"`
	TeamName         string    `json:"team_name"`
	IndividualPoints int       `json:"individual_points"`
	PenaltyPoints    int       `json:"penalty_points"`
	// NetPoints = IndividualPoints - PenaltyPoints.
	NetPoints int  `json:"net_points"`
	Rank      *int `json:"rank,omitempty"`
}
