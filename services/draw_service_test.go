package services

import (
	"context"
	"testing"

	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawSetup struct {
	f            *fixture
	tournamentID uuid.UUID
	phaseID      uuid.UUID
	roundID      uuid.UUID
	teams        []uuid.UUID
	judges       []uuid.UUID
	rooms        []uuid.UUID
}

// newDrawSetup seeds a scheduled two-team round with four teams, two
// judges and two rooms.
func newDrawSetup(t *testing.T) *drawSetup {
	t.Helper()
	f := newFixture()
	tournamentID := f.seedTournament()
	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	roundID := f.seedRound(phaseID, models.StatusScheduled)

	s := &drawSetup{f: f, tournamentID: tournamentID, phaseID: phaseID, roundID: roundID}
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		s.teams = append(s.teams, f.seedTeam(tournamentID, name))
	}
	for i := 0; i < 2; i++ {
		s.judges = append(s.judges, f.seedUserWithRoles(tournamentID, models.RoleJudge))
		s.rooms = append(s.rooms, f.seedRoom(false))
	}
	return s
}

func (s *drawSetup) input() GenerateDrawInput {
	return GenerateDrawInput{
		RoundID:      s.roundID,
		TeamIDs:      s.teams,
		JudgeUserIDs: s.judges,
		RoomIDs:      s.rooms,
	}
}

func TestGenerateDraw_HappyPath(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()

	debates, err := s.f.draw.GenerateDraw(ctx, s.input())
	require.NoError(t, err)
	require.Len(t, debates, 2)

	seatedTeams := make(map[uuid.UUID]bool)
	seatedJudges := make(map[uuid.UUID]bool)
	for _, debate := range debates {
		require.Len(t, debate.TeamAssignments, 2)
		require.Len(t, debate.JudgeAssignments, 1)
		for _, a := range debate.TeamAssignments {
			assert.False(t, seatedTeams[a.TeamID], "team seated twice")
			seatedTeams[a.TeamID] = true
			assert.Equal(t, models.SideUndecided, a.Side)
		}
		for _, a := range debate.JudgeAssignments {
			assert.False(t, seatedJudges[a.JudgeUserID], "judge seated twice")
			seatedJudges[a.JudgeUserID] = true
		}
		assert.True(t, s.f.locationRepo.rooms[debate.RoomID].IsOccupied)
	}
	assert.Len(t, seatedTeams, 4)
	assert.Len(t, seatedJudges, 2)
}

func TestGenerateDraw_Idempotency(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()

	_, err := s.f.draw.GenerateDraw(ctx, s.input())
	require.NoError(t, err)

	_, err = s.f.draw.GenerateDraw(ctx, s.input())
	assert.ErrorIs(t, err, ErrDrawAlreadyGenerated)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGenerateDraw_MotionOverride(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()

	motionID := uuid.New()
	s.f.motionRepo.motions[motionID] = &models.Motion{ID: motionID, Motion: "THW ban private schools"}

	input := s.input()
	input.MotionID = &motionID
	debates, err := s.f.draw.GenerateDraw(ctx, input)
	require.NoError(t, err)
	for _, debate := range debates {
		require.NotNil(t, debate.MotionID)
		assert.Equal(t, motionID, *debate.MotionID)
	}
}

func TestGenerateDraw_UnknownMotion(t *testing.T) {
	s := newDrawSetup(t)

	unknown := uuid.New()
	input := s.input()
	input.MotionID = &unknown
	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrMotionNotFound)
}

func TestGenerateDraw_RoundAlreadyStarted(t *testing.T) {
	s := newDrawSetup(t)
	s.f.roundRepo.rounds[s.roundID].Status = models.StatusInProgress

	_, err := s.f.draw.GenerateDraw(context.Background(), s.input())
	assert.ErrorIs(t, err, ErrRoundAlreadyStarted)
}

func TestGenerateDraw_IndivisiblePool(t *testing.T) {
	s := newDrawSetup(t)
	input := s.input()
	input.TeamIDs = append(input.TeamIDs, s.f.seedTeam(s.tournamentID, "Echo"))

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrIndivisibleTeamPool)
}

func TestGenerateDraw_DuplicateTeam(t *testing.T) {
	s := newDrawSetup(t)
	input := s.input()
	input.TeamIDs[3] = input.TeamIDs[0]

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrDuplicatePoolEntry)
}

func TestGenerateDraw_ForeignTeam(t *testing.T) {
	s := newDrawSetup(t)
	otherTournament := s.f.seedTournament()
	input := s.input()
	input.TeamIDs[0] = s.f.seedTeam(otherTournament, "Foreign")

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrCrossTournamentEntity)
}

func TestGenerateDraw_NotEnoughRooms(t *testing.T) {
	s := newDrawSetup(t)
	input := s.input()
	input.RoomIDs = input.RoomIDs[:1]

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrInsufficientRooms)
}

func TestGenerateDraw_OccupiedRoom(t *testing.T) {
	s := newDrawSetup(t)
	s.f.locationRepo.rooms[s.rooms[1]].IsOccupied = true

	_, err := s.f.draw.GenerateDraw(context.Background(), s.input())
	assert.ErrorIs(t, err, ErrRoomOccupied)
}

func TestGenerateDraw_AffiliatedJudgeSkipped(t *testing.T) {
	s := newDrawSetup(t)
	// Both judges affiliated with every team: no panel can be formed.
	for _, judge := range s.judges {
		for _, team := range s.teams {
			affiliationID := uuid.New()
			s.f.affiliationRepo.affiliations[affiliationID] = &models.Affiliation{
				ID:           affiliationID,
				TournamentID: s.tournamentID,
				TeamID:       team,
				JudgeUserID:  judge,
			}
		}
	}

	_, err := s.f.draw.GenerateDraw(context.Background(), s.input())
	assert.ErrorIs(t, err, ErrInsufficientJudges)
}

func TestGenerateDraw_JudgeWithoutRole(t *testing.T) {
	s := newDrawSetup(t)
	input := s.input()
	input.JudgeUserIDs[0] = uuid.New() // no roles at all

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrMissingRole)
}

func TestGenerateDraw_InvalidSidePolicy(t *testing.T) {
	s := newDrawSetup(t)
	input := s.input()
	input.SidePolicy = "coin_flip"

	_, err := s.f.draw.GenerateDraw(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidSidePolicy)
}

func TestGenerateDraw_FinalsSeatsWholePool(t *testing.T) {
	s := newDrawSetup(t)
	finalsPhase := s.f.seedPhase(s.tournamentID, models.StatusInProgress, true, nil)
	finalsRound := s.f.seedRound(finalsPhase, models.StatusScheduled)

	input := s.input()
	input.RoundID = finalsRound
	debates, err := s.f.draw.GenerateDraw(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, debates, 1)
	assert.Len(t, debates[0].TeamAssignments, 4)
}

func TestGenerateDraw_Marshals(t *testing.T) {
	s := newDrawSetup(t)
	marshal := s.f.seedUserWithRoles(s.tournamentID, models.RoleMarshal)

	input := s.input()
	input.MarshalUserIDs = []uuid.UUID{marshal}
	debates, err := s.f.draw.GenerateDraw(context.Background(), input)
	require.NoError(t, err)

	withMarshal := 0
	for _, debate := range debates {
		if debate.MarshalUserID != nil {
			assert.Equal(t, marshal, *debate.MarshalUserID)
			withMarshal++
		}
	}
	// One marshal covers one of the two debates; the other goes without.
	assert.Equal(t, 1, withMarshal)
}

func generated(t *testing.T, s *drawSetup) []models.Debate {
	t.Helper()
	debates, err := s.f.draw.GenerateDraw(context.Background(), s.input())
	require.NoError(t, err)
	return debates
}

func TestReassignTeam(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)

	target := debates[0]
	seatedElsewhere := debates[1].TeamAssignments[0].TeamID
	current := target.TeamAssignments[0].TeamID

	err := s.f.draw.ReassignTeam(ctx, target.ID, current, seatedElsewhere)
	assert.ErrorIs(t, err, ErrTeamDoubleBooked)

	// A team the seated judge is affiliated with cannot move in.
	partial := s.f.seedTeam(s.tournamentID, "Foxtrot")
	affiliationID := uuid.New()
	s.f.affiliationRepo.affiliations[affiliationID] = &models.Affiliation{
		ID:           affiliationID,
		TournamentID: s.tournamentID,
		TeamID:       partial,
		JudgeUserID:  target.JudgeAssignments[0].JudgeUserID,
	}
	err = s.f.draw.ReassignTeam(ctx, target.ID, current, partial)
	assert.ErrorIs(t, err, ErrJudgeAffiliated)

	fresh := s.f.seedTeam(s.tournamentID, "Echo")
	require.NoError(t, s.f.draw.ReassignTeam(ctx, target.ID, current, fresh))

	reloaded, err := s.f.draw.GetDebate(ctx, target.ID)
	require.NoError(t, err)
	teamIDs := []uuid.UUID{reloaded.TeamAssignments[0].TeamID, reloaded.TeamAssignments[1].TeamID}
	assert.Contains(t, teamIDs, fresh)
	assert.NotContains(t, teamIDs, current)
}

func TestReassignJudge(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)

	target := debates[0]
	current := target.JudgeAssignments[0].JudgeUserID
	other := debates[1].JudgeAssignments[0].JudgeUserID

	err := s.f.draw.ReassignJudge(ctx, target.ID, current, other)
	assert.ErrorIs(t, err, ErrJudgeDoubleBooked)

	// An affiliated replacement is rejected.
	affiliated := s.f.seedUserWithRoles(s.tournamentID, models.RoleJudge)
	affiliationID := uuid.New()
	s.f.affiliationRepo.affiliations[affiliationID] = &models.Affiliation{
		ID:           affiliationID,
		TournamentID: s.tournamentID,
		TeamID:       target.TeamAssignments[0].TeamID,
		JudgeUserID:  affiliated,
	}
	err = s.f.draw.ReassignJudge(ctx, target.ID, current, affiliated)
	assert.ErrorIs(t, err, ErrJudgeAffiliated)

	fresh := s.f.seedUserWithRoles(s.tournamentID, models.RoleJudge)
	require.NoError(t, s.f.draw.ReassignJudge(ctx, target.ID, current, fresh))
}

func TestReassignRoom(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)

	target := debates[0]
	occupied := debates[1].RoomID
	err := s.f.draw.ReassignRoom(ctx, target.ID, occupied)
	assert.ErrorIs(t, err, ErrRoomOccupied)

	oldRoom := target.RoomID
	fresh := s.f.seedRoom(false)
	require.NoError(t, s.f.draw.ReassignRoom(ctx, target.ID, fresh))
	assert.True(t, s.f.locationRepo.rooms[fresh].IsOccupied)
	assert.False(t, s.f.locationRepo.rooms[oldRoom].IsOccupied)
}

func TestSetMarshal(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)

	target := debates[0]

	// A seated judge cannot marshal, even when the marshal role is granted.
	judge := target.JudgeAssignments[0].JudgeUserID
	s.f.roleRepo.roles[roleKey(judge, s.tournamentID)].Roles = []models.Role{models.RoleJudge, models.RoleMarshal}
	err := s.f.draw.SetMarshal(ctx, target.ID, &judge)
	assert.ErrorIs(t, err, ErrMarshalIsJudge)

	marshal := s.f.seedUserWithRoles(s.tournamentID, models.RoleMarshal)
	require.NoError(t, s.f.draw.SetMarshal(ctx, target.ID, &marshal))

	reloaded, err := s.f.draw.GetDebate(ctx, target.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.MarshalUserID)
	assert.Equal(t, marshal, *reloaded.MarshalUserID)

	// Clearing the marshal is allowed.
	require.NoError(t, s.f.draw.SetMarshal(ctx, target.ID, nil))
	reloaded, err = s.f.draw.GetDebate(ctx, target.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.MarshalUserID)
}

func TestSetPropositionSide(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)

	target := debates[0]
	proposition := target.TeamAssignments[0].TeamID

	err := s.f.draw.SetPropositionSide(ctx, target.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSpeakerNotSeated)

	require.NoError(t, s.f.draw.SetPropositionSide(ctx, target.ID, proposition))

	reloaded, err := s.f.draw.GetDebate(ctx, target.ID)
	require.NoError(t, err)
	for _, a := range reloaded.TeamAssignments {
		if a.TeamID == proposition {
			assert.Equal(t, models.SideProposition, a.Side)
		} else {
			assert.Equal(t, models.SideOpposition, a.Side)
		}
	}
}

func TestReassignment_TerminalRoundRejected(t *testing.T) {
	s := newDrawSetup(t)
	ctx := context.Background()
	debates := generated(t, s)
	s.f.roundRepo.rounds[s.roundID].Status = models.StatusCompleted

	fresh := s.f.seedTeam(s.tournamentID, "Echo")
	err := s.f.draw.ReassignTeam(ctx, debates[0].ID, debates[0].TeamAssignments[0].TeamID, fresh)
	assert.ErrorIs(t, err, ErrInvalidState)
}
