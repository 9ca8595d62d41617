package draws

import (
	"encoding/binary"
	"math/rand"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
)

// SidePolicy решает, как распределяются стороны при генерации жеребьёвки.
// The exact policy is deliberately configurable: some tournaments draw
// sides at the table, others want them fixed the moment the draw lands.
type SidePolicy interface {
	// Sides returns one side per team of the group, parallel to teams.
	Sides(roundID uuid.UUID, group int, teams []uuid.UUID) []models.Side
	Name() string
}

// ManualSides leaves every side undecided; staff settles them later via
// SetPropositionSide.
type ManualSides struct{}

func (ManualSides) Sides(_ uuid.UUID, _ int, teams []uuid.UUID) []models.Side {
	sides := make([]models.Side, len(teams))
	for i := range sides {
		sides[i] = models.SideUndecided
	}
	return sides
}

func (ManualSides) Name() string { return "manual" }

// SeededRandomSides decides proposition/opposition for two-team groups
// with a seed derived from the round id, so planning the same round twice
// yields the same sides. Larger groups stay undecided.
type SeededRandomSides struct{}

func (SeededRandomSides) Sides(roundID uuid.UUID, group int, teams []uuid.UUID) []models.Side {
	sides := ManualSides{}.Sides(roundID, group, teams)
	if len(teams) != 2 {
		return sides
	}
	seed := int64(binary.BigEndian.Uint64(roundID[:8])^binary.BigEndian.Uint64(roundID[8:])) + int64(group)
	rng := rand.New(rand.NewSource(seed))
	if rng.Intn(2) == 0 {
		sides[0], sides[1] = models.SideProposition, models.SideOpposition
	} else {
		sides[0], sides[1] = models.SideOpposition, models.SideProposition
	}
	return sides
}

func (SeededRandomSides) Name() string { return "seeded_random" }

// PolicyByName maps the API-level policy string to an implementation.
// An empty name means manual.
func PolicyByName(name string) (SidePolicy, bool) {
	switch name {
	case "", ManualSides{}.Name():
		return ManualSides{}, true
	case SeededRandomSides{}.Name():
		return SeededRandomSides{}, true
	}
	return nil, false
}
