package models

import "github.com/google/uuid"

// Affiliation denotes a judge's connection to a team.
// Some judges are affiliated with certain teams, which poses a risk of
// biased rulings; organizers record such affiliations and the draw engine
// refuses to seat an affiliated judge on a debate featuring that team.
type Affiliation struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	TeamID       uuid.UUID `json:"team_id" db:"team_id"`
	JudgeUserID  uuid.UUID `json:"judge_user_id" db:"judge_user_id"`
}
