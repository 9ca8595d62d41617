package models

import (
	"time"

	"github.com/google/uuid"
)

// Round is one scheduled set of simultaneous debates within a phase.
type Round struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PhaseID          uuid.UUID  `json:"phase_id" db:"phase_id"`
	Name             string     `json:"name" db:"name"`
	PlannedStartTime *time.Time `json:"planned_start_time,omitempty" db:"planned_start_time"`
	PlannedEndTime   *time.Time `json:"planned_end_time,omitempty" db:"planned_end_time"`
	MotionID         *uuid.UUID `json:"motion_id,omitempty" db:"motion_id"`
	// Predecessor must live in the same phase or in the phase's direct
	// predecessor, and must already be completed.
	PreviousRoundID *uuid.UUID `json:"previous_round_id,omitempty" db:"previous_round_id"`
	Status          Status     `json:"status" db:"status"`

	Debates []Debate `json:"debates,omitempty" db:"-"`
}
