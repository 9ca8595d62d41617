package models

import "github.com/google/uuid"

// Team competes within a single tournament and is composed of attendees.
type Team struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	// Full name of the team (e.g. "Debate Team Buster").
	// Must be unique within the tournament.
	FullName      string `json:"full_name" db:"full_name"`
	ShortenedName string `json:"shortened_name" db:"shortened_name"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`

	Attendees []Attendee `json:"attendees,omitempty" db:"-"`
}
