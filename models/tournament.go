package models

import (
	"time"

	"github.com/google/uuid"
)

// Tournament представляет дебатный турнир и его тайминговую конфигурацию.
type Tournament struct {
	ID uuid.UUID `json:"id" db:"id"`
	// Full name of the tournament. Must be globally unique.
	FullName      string `json:"full_name" db:"full_name"`
	ShortenedName string `json:"shortened_name" db:"shortened_name"`

	// Speech timing, in seconds.
	SpeechTime         int `json:"speech_time" db:"speech_time"`
	StartProtectedTime int `json:"start_protected_time" db:"start_protected_time"`
	EndProtectedTime   int `json:"end_protected_time" db:"end_protected_time"`
	AdVocemTime        int `json:"ad_vocem_time" db:"ad_vocem_time"`

	// In minutes. A debate scheduled at a particular room
	// blocks the room for this long.
	DebateTimeSlot int `json:"debate_time_slot" db:"debate_time_slot"`
	// In minutes. How much time the teams have to prepare
	// once the sides are drawn.
	DebatePreparationTime int `json:"debate_preparation_time" db:"debate_preparation_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Phases    []Phase    `json:"phases,omitempty" db:"-"`
	Teams     []Team     `json:"teams,omitempty" db:"-"`
	Locations []Location `json:"locations,omitempty" db:"-"`
}
