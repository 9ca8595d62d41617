package models

import "github.com/google/uuid"

// Side обозначает сторону команды в дебатах.
// Sides may stay undecided until staff or the draw policy settles them.
type Side string

const (
	SideUndecided   Side = "undecided"
	SideProposition Side = "proposition"
	SideOpposition  Side = "opposition"
)

func (s Side) Valid() bool {
	switch s {
	case SideUndecided, SideProposition, SideOpposition:
		return true
	}
	return false
}

// Debate is a single contest between a group of teams, judged by a panel,
// held in one room, optionally overseen by a non-adjudicating marshal.
type Debate struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TournamentID  uuid.UUID  `json:"tournament_id" db:"tournament_id"`
	RoundID       uuid.UUID  `json:"round_id" db:"round_id"`
	RoomID        uuid.UUID  `json:"room_id" db:"room_id"`
	MotionID      *uuid.UUID `json:"motion_id,omitempty" db:"motion_id"`
	MarshalUserID *uuid.UUID `json:"marshal_user_id,omitempty" db:"marshal_user_id"`

	TeamAssignments  []DebateTeamAssignment  `json:"team_assignments,omitempty" db:"-"`
	JudgeAssignments []DebateJudgeAssignment `json:"judge_assignments,omitempty" db:"-"`
}

// DebateTeamAssignment seats a team in a debate. A team appears in at most
// one assignment per round.
type DebateTeamAssignment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	DebateID uuid.UUID `json:"debate_id" db:"debate_id"`
	TeamID   uuid.UUID `json:"team_id" db:"team_id"`
	Side     Side      `json:"side" db:"side"`
}

// DebateJudgeAssignment seats a judge on a debate's panel. A judge appears
// in at most one assignment per round.
type DebateJudgeAssignment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DebateID    uuid.UUID `json:"debate_id" db:"debate_id"`
	JudgeUserID uuid.UUID `json:"judge_user_id" db:"judge_user_id"`
}
