package services

import (
	"context"
	"testing"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoringSetup struct {
	f          *fixture
	phaseID    uuid.UUID
	roundID    uuid.UUID
	debateID   uuid.UUID
	teamID     uuid.UUID
	attendeeID uuid.UUID
}

// newScoringSetup seeds an in-progress round with one debate and one
// seated speaker.
func newScoringSetup(t *testing.T) *scoringSetup {
	t.Helper()
	f := newFixture()
	tournamentID := f.seedTournament()
	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	roundID := f.seedRound(phaseID, models.StatusInProgress)
	teamID := f.seedTeam(tournamentID, "Alpha")
	opponentID := f.seedTeam(tournamentID, "Bravo")

	debateID := uuid.New()
	f.debateRepo.debates[debateID] = &models.Debate{
		ID:           debateID,
		TournamentID: tournamentID,
		RoundID:      roundID,
		RoomID:       f.seedRoom(true),
	}
	for _, id := range []uuid.UUID{teamID, opponentID} {
		f.debateRepo.teamAssignments[debateID] = append(f.debateRepo.teamAssignments[debateID],
			models.DebateTeamAssignment{ID: uuid.New(), DebateID: debateID, TeamID: id, Side: models.SideUndecided})
	}

	attendeeID := f.seedAttendee(&teamID)
	return &scoringSetup{f: f, phaseID: phaseID, roundID: roundID, debateID: debateID, teamID: teamID, attendeeID: attendeeID}
}

func TestRecordResult_HappyPath(t *testing.T) {
	s := newScoringSetup(t)
	ctx := context.Background()

	result, err := s.f.scoring.RecordResult(ctx, RecordResultInput{
		DebateID:        s.debateID,
		AttendeeID:      s.attendeeID,
		IndividualDelta: 75,
		PenaltyDelta:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, 75, result.IndividualDelta)
	assert.Equal(t, 5, result.PenaltyDelta)

	// Accumulators moved together with the ledger row.
	attendee := s.f.attendeeRepo.attendees[s.attendeeID]
	assert.Equal(t, 75, attendee.IndividualPoints)
	assert.Equal(t, 5, attendee.PenaltyPoints)

	results, err := s.f.scoring.ListDebateResults(ctx, s.debateID)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestRecordResult_Duplicate(t *testing.T) {
	s := newScoringSetup(t)
	ctx := context.Background()

	input := RecordResultInput{DebateID: s.debateID, AttendeeID: s.attendeeID, IndividualDelta: 70}
	_, err := s.f.scoring.RecordResult(ctx, input)
	require.NoError(t, err)

	_, err = s.f.scoring.RecordResult(ctx, input)
	assert.ErrorIs(t, err, ErrResultDuplicate)
	assert.ErrorIs(t, err, ErrConflict)

	// The failed attempt must not move the accumulators.
	assert.Equal(t, 70, s.f.attendeeRepo.attendees[s.attendeeID].IndividualPoints)
}

func TestRecordResult_NegativeDelta(t *testing.T) {
	s := newScoringSetup(t)

	_, err := s.f.scoring.RecordResult(context.Background(), RecordResultInput{
		DebateID:        s.debateID,
		AttendeeID:      s.attendeeID,
		IndividualDelta: -1,
	})
	assert.ErrorIs(t, err, ErrNegativeDelta)
}

func TestRecordResult_RoundState(t *testing.T) {
	s := newScoringSetup(t)
	ctx := context.Background()
	input := RecordResultInput{DebateID: s.debateID, AttendeeID: s.attendeeID, IndividualDelta: 70}

	for _, status := range []models.Status{models.StatusDraft, models.StatusScheduled, models.StatusCancelled} {
		s.f.roundRepo.rounds[s.roundID].Status = status
		_, err := s.f.scoring.RecordResult(ctx, input)
		assert.ErrorIs(t, err, ErrRoundNotInProgress, status)
		assert.ErrorIs(t, err, ErrInvalidState, status)
	}
	// No accumulator change from the rejected attempts.
	assert.Zero(t, s.f.attendeeRepo.attendees[s.attendeeID].IndividualPoints)

	// Post-round corrections are allowed while the round is completed.
	s.f.roundRepo.rounds[s.roundID].Status = models.StatusCompleted
	_, err := s.f.scoring.RecordResult(ctx, input)
	require.NoError(t, err)
}

func TestRecordResult_SpeakerNotSeated(t *testing.T) {
	s := newScoringSetup(t)
	ctx := context.Background()

	// Attendee without a team.
	detached := s.f.seedAttendee(nil)
	_, err := s.f.scoring.RecordResult(ctx, RecordResultInput{
		DebateID:        s.debateID,
		AttendeeID:      detached,
		IndividualDelta: 70,
	})
	assert.ErrorIs(t, err, ErrSpeakerNotSeated)

	// Attendee of a team not seated in this debate.
	tournamentID := s.f.debateRepo.debates[s.debateID].TournamentID
	outsiderTeam := s.f.seedTeam(tournamentID, "Charlie")
	outsider := s.f.seedAttendee(&outsiderTeam)
	_, err = s.f.scoring.RecordResult(ctx, RecordResultInput{
		DebateID:        s.debateID,
		AttendeeID:      outsider,
		IndividualDelta: 70,
	})
	assert.ErrorIs(t, err, ErrSpeakerNotSeated)
}

func TestRecordResult_DebateNotFound(t *testing.T) {
	s := newScoringSetup(t)

	_, err := s.f.scoring.RecordResult(context.Background(), RecordResultInput{
		DebateID:        uuid.New(),
		AttendeeID:      s.attendeeID,
		IndividualDelta: 70,
	})
	assert.ErrorIs(t, err, ErrDebateNotFound)
}

func TestComputeStandings(t *testing.T) {
	s := newScoringSetup(t)
	ctx := context.Background()

	alpha, bravo, charlie := uuid.New(), uuid.New(), uuid.New()
	s.f.resultRepo.phasePoints[s.phaseID] = []repositories.PhasePoints{
		{TeamID: alpha, TeamName: "Alpha", IndividualPoints: 75, PenaltyPoints: 5},
		{TeamID: bravo, TeamName: "Bravo", IndividualPoints: 80, PenaltyPoints: 0},
		{TeamID: charlie, TeamName: "Charlie", IndividualPoints: 72, PenaltyPoints: 2},
	}

	standings, err := s.f.scoring.ComputeStandings(ctx, s.phaseID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	// Bravo leads on 80; Alpha and Charlie tie on 70 and share rank 2,
	// ordered by name.
	assert.Equal(t, "Bravo", standings[0].TeamName)
	assert.Equal(t, 80, standings[0].NetPoints)
	assert.Equal(t, 1, *standings[0].Rank)

	assert.Equal(t, "Alpha", standings[1].TeamName)
	assert.Equal(t, 70, standings[1].NetPoints)
	assert.Equal(t, 2, *standings[1].Rank)

	assert.Equal(t, "Charlie", standings[2].TeamName)
	assert.Equal(t, 70, standings[2].NetPoints)
	assert.Equal(t, 2, *standings[2].Rank)
}

func TestComputeStandings_PhaseNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.scoring.ComputeStandings(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestComputeStandings_EmptyPhase(t *testing.T) {
	s := newScoringSetup(t)
	standings, err := s.f.scoring.ComputeStandings(context.Background(), s.phaseID)
	require.NoError(t, err)
	assert.Empty(t, standings)
}
