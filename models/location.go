package models

import "github.com/google/uuid"

// Location represents a bigger venue (a school, a university campus)
// possibly containing multiple rooms to conduct debates at.
type Location struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	// Must be unique within the tournament.
	Name    string  `json:"name" db:"name"`
	Address *string `json:"address,omitempty" db:"address"`
	Remarks *string `json:"remarks,omitempty" db:"remarks"`

	Rooms []Room `json:"rooms,omitempty" db:"-"`
}

// Room is a particular place where a debate is held. A room is occupied
// by at most one live debate at a time.
type Room struct {
	ID         uuid.UUID `json:"id" db:"id"`
	LocationID uuid.UUID `json:"location_id" db:"location_id"`
	// Must be unique within the location.
	Name       string  `json:"name" db:"name"`
	Remarks    *string `json:"remarks,omitempty" db:"remarks"`
	IsOccupied bool    `json:"is_occupied" db:"is_occupied"`
}
