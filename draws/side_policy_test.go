package draws

import (
	"testing"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	policy, ok := PolicyByName("")
	require.True(t, ok)
	assert.Equal(t, "manual", policy.Name())

	policy, ok = PolicyByName("manual")
	require.True(t, ok)
	assert.Equal(t, "manual", policy.Name())

	policy, ok = PolicyByName("seeded_random")
	require.True(t, ok)
	assert.Equal(t, "seeded_random", policy.Name())

	_, ok = PolicyByName("coin_flip")
	assert.False(t, ok)
}

func TestSeededRandomSides_StablePerRound(t *testing.T) {
	roundID := uuid.New()
	teams := []uuid.UUID{uuid.New(), uuid.New()}

	first := SeededRandomSides{}.Sides(roundID, 0, teams)
	second := SeededRandomSides{}.Sides(roundID, 0, teams)
	assert.Equal(t, first, second)

	require.Len(t, first, 2)
	assert.NotEqual(t, first[0], first[1])
	for _, side := range first {
		assert.True(t, side == models.SideProposition || side == models.SideOpposition)
	}
}

func TestSeededRandomSides_LargeGroupsStayUndecided(t *testing.T) {
	teams := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	sides := SeededRandomSides{}.Sides(uuid.New(), 0, teams)
	require.Len(t, sides, 3)
	for _, side := range sides {
		assert.Equal(t, models.SideUndecided, side)
	}
}
