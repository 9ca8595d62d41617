package models

import "github.com/google/uuid"

// Motion is a debate topic.
type Motion struct {
	ID uuid.UUID `json:"id" db:"id"`
	// The main motion content, e.g. "This House would abolish
	// the UN Security Council." Must be unique.
	Motion string `json:"motion" db:"motion"`
	// Infoslide, i.e. additional information that may be required
	// to understand a complex motion.
	AdInfo *string `json:"adinfo,omitempty" db:"adinfo"`
}
