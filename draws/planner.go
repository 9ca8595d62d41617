package draws

import (
	"errors"
	"fmt"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
)

var (
	ErrEmptyTeamPool   = errors.New("team pool is empty")
	ErrIndivisiblePool = errors.New("team pool is not divisible into equal groups")
	ErrDuplicateInPool = errors.New("pool contains a duplicate entry")
	ErrNotEnoughRooms  = errors.New("not enough free rooms for the planned debates")
	ErrNotEnoughJudges = errors.New("not enough judges for the requested panel size")
)

// PlanParams carries the resource pools for one round's draw.
// Pools are passed by value and consumed only for the duration of the
// plan; no process-wide mutable pool exists.
type PlanParams struct {
	RoundID     uuid.UUID
	TeamPool    []uuid.UUID
	JudgePool   []uuid.UUID
	RoomPool    []uuid.UUID
	MarshalPool []uuid.UUID
	// Teams per debate. The service resolves this from the phase when the
	// caller does not override it.
	GroupSize int
	// Judges per debate, at least 1.
	PanelSize int
	Side      SidePolicy
	// Judge -> affiliated teams. An affiliated judge is never seated on a
	// debate featuring that team.
	Affiliations map[uuid.UUID][]uuid.UUID
}

// PlannedDebate is one debate slot produced by the planner. Persistence is
// the draw service's job; the planner itself never touches the store.
type PlannedDebate struct {
	TeamIDs       []uuid.UUID
	Sides         []models.Side
	JudgeIDs      []uuid.UUID
	RoomID        uuid.UUID
	MarshalUserID *uuid.UUID
}

// Plan partitions the team pool into groups of GroupSize and assigns a
// disjoint judge panel, a distinct room and an optional marshal to each
// group. It is deterministic for identical params.
func Plan(params PlanParams) ([]PlannedDebate, error) {
	if len(params.TeamPool) == 0 {
		return nil, ErrEmptyTeamPool
	}
	if params.GroupSize < 2 {
		return nil, fmt.Errorf("%w: group size %d is below 2", ErrIndivisiblePool, params.GroupSize)
	}
	if params.PanelSize < 1 {
		params.PanelSize = 1
	}
	if err := checkDistinct(params.TeamPool, "team"); err != nil {
		return nil, err
	}
	if err := checkDistinct(params.JudgePool, "judge"); err != nil {
		return nil, err
	}
	if err := checkDistinct(params.RoomPool, "room"); err != nil {
		return nil, err
	}
	if err := checkDistinct(params.MarshalPool, "marshal"); err != nil {
		return nil, err
	}

	if len(params.TeamPool)%params.GroupSize != 0 {
		return nil, fmt.Errorf("%w: %d teams cannot form groups of %d",
			ErrIndivisiblePool, len(params.TeamPool), params.GroupSize)
	}
	groups := len(params.TeamPool) / params.GroupSize

	if len(params.RoomPool) < groups {
		return nil, fmt.Errorf("%w: %d debates planned, %d rooms available",
			ErrNotEnoughRooms, groups, len(params.RoomPool))
	}
	if len(params.JudgePool) < groups*params.PanelSize {
		return nil, fmt.Errorf("%w: %d debates need %d judges, %d available",
			ErrNotEnoughJudges, groups, groups*params.PanelSize, len(params.JudgePool))
	}

	policy := params.Side
	if policy == nil {
		policy = ManualSides{}
	}

	debates := make([]PlannedDebate, 0, groups)
	usedJudges := make(map[uuid.UUID]bool, len(params.JudgePool))

	for g := 0; g < groups; g++ {
		teams := params.TeamPool[g*params.GroupSize : (g+1)*params.GroupSize]

		panel, err := pickPanel(params.JudgePool, usedJudges, teams, params.Affiliations, params.PanelSize)
		if err != nil {
			return nil, err
		}

		debate := PlannedDebate{
			TeamIDs:  teams,
			Sides:    policy.Sides(params.RoundID, g, teams),
			JudgeIDs: panel,
			RoomID:   params.RoomPool[g],
		}
		debates = append(debates, debate)
	}

	assignMarshals(debates, params.MarshalPool, usedJudges)
	return debates, nil
}

func checkDistinct(pool []uuid.UUID, kind string) error {
	seen := make(map[uuid.UUID]bool, len(pool))
	for _, id := range pool {
		if seen[id] {
			return fmt.Errorf("%w: %s %s", ErrDuplicateInPool, kind, id)
		}
		seen[id] = true
	}
	return nil
}

// pickPanel greedily selects unused judges that are not affiliated with
// any team of the debate.
func pickPanel(pool []uuid.UUID, used map[uuid.UUID]bool, teams []uuid.UUID, affiliations map[uuid.UUID][]uuid.UUID, size int) ([]uuid.UUID, error) {
	panel := make([]uuid.UUID, 0, size)
	for _, judge := range pool {
		if len(panel) == size {
			break
		}
		if used[judge] || isAffiliated(judge, teams, affiliations) {
			continue
		}
		panel = append(panel, judge)
		used[judge] = true
	}
	if len(panel) < size {
		return nil, fmt.Errorf("%w: affiliation constraints leave %d of %d panel seats unfilled",
			ErrNotEnoughJudges, size-len(panel), size)
	}
	return panel, nil
}

func isAffiliated(judge uuid.UUID, teams []uuid.UUID, affiliations map[uuid.UUID][]uuid.UUID) bool {
	for _, affiliatedTeam := range affiliations[judge] {
		for _, team := range teams {
			if affiliatedTeam == team {
				return true
			}
		}
	}
	return false
}

// assignMarshals hands out marshals while skipping anyone already seated
// as a judge in this round. Marshals are optional: debates beyond the
// pool's capacity simply go without one.
func assignMarshals(debates []PlannedDebate, pool []uuid.UUID, usedJudges map[uuid.UUID]bool) {
	next := 0
	for i := range debates {
		for next < len(pool) && usedJudges[pool[next]] {
			next++
		}
		if next >= len(pool) {
			return
		}
		marshal := pool[next]
		debates[i].MarshalUserID = &marshal
		next++
	}
}
