package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCreatePhase_GroupSizeRules(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	_, err := f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Finals",
		IsFinals:     true,
		GroupSize:    intPtr(2),
	})
	assert.ErrorIs(t, err, ErrFinalsGroupSize)

	_, err = f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Group Stage",
	})
	assert.ErrorIs(t, err, ErrGroupSizeRequired)

	_, err = f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Group Stage",
		GroupSize:    intPtr(1),
	})
	assert.ErrorIs(t, err, ErrInvalidGroupSize)

	phase, err := f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Group Stage",
		GroupSize:    intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, phase.Status)
}

func TestCreatePhase_SingleChainHead(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	_, err := f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Opening",
		GroupSize:    intPtr(2),
	})
	require.NoError(t, err)

	_, err = f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID: tournamentID,
		Name:         "Another Opening",
		GroupSize:    intPtr(2),
	})
	assert.ErrorIs(t, err, ErrChainHeadConflict)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreatePhase_PredecessorRules(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	otherTournamentID := f.seedTournament()
	ctx := context.Background()

	draftPredecessor := f.seedPhase(tournamentID, models.StatusDraft, false, intPtr(2))
	_, err := f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID:    tournamentID,
		Name:            "Knockouts",
		GroupSize:       intPtr(2),
		PreviousPhaseID: &draftPredecessor,
	})
	assert.ErrorIs(t, err, ErrPredecessorNotCompleted)

	foreign := f.seedPhase(otherTournamentID, models.StatusCompleted, false, intPtr(2))
	_, err = f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID:    tournamentID,
		Name:            "Knockouts",
		GroupSize:       intPtr(2),
		PreviousPhaseID: &foreign,
	})
	assert.ErrorIs(t, err, ErrCrossTournamentEntity)

	completed := f.seedPhase(tournamentID, models.StatusCompleted, false, intPtr(2))
	first, err := f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID:    tournamentID,
		Name:            "Knockouts",
		GroupSize:       intPtr(2),
		PreviousPhaseID: &completed,
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	// The predecessor already has a successor now.
	_, err = f.structure.CreatePhase(ctx, CreatePhaseInput{
		TournamentID:    tournamentID,
		Name:            "Parallel Knockouts",
		GroupSize:       intPtr(2),
		PreviousPhaseID: &completed,
	})
	assert.ErrorIs(t, err, ErrSuccessorConflict)
}

func TestTransitionPhaseStatus(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusDraft, false, intPtr(2))

	_, err := f.structure.TransitionPhaseStatus(ctx, phaseID, models.Status("paused"))
	assert.ErrorIs(t, err, ErrInvalidStatusValue)

	_, err = f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	phase, err := f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, phase.Status)

	_, err = f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusInProgress)
	require.NoError(t, err)

	// A live round blocks completion.
	roundID := f.seedRound(phaseID, models.StatusInProgress)
	_, err = f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrRoundsNotFinished)

	f.roundRepo.rounds[roundID].Status = models.StatusCompleted
	phase, err = f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, phase.Status)
}

func TestTransitionPhaseStatus_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.structure.TransitionPhaseStatus(context.Background(), uuid.New(), models.StatusScheduled)
	assert.ErrorIs(t, err, ErrPhaseNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenPhase(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	draft := f.seedPhase(tournamentID, models.StatusDraft, false, intPtr(2))
	_, err := f.structure.ReopenPhase(ctx, draft)
	assert.ErrorIs(t, err, ErrReopenNotAllowed)

	completed := f.seedPhase(tournamentID, models.StatusCompleted, false, intPtr(2))
	successor := f.seedPhase(tournamentID, models.StatusDraft, false, intPtr(2))
	f.phaseRepo.phases[successor].PreviousPhaseID = &completed
	_, err = f.structure.ReopenPhase(ctx, completed)
	assert.ErrorIs(t, err, ErrReopenWithSuccessor)

	lone := f.seedPhase(tournamentID, models.StatusCompleted, false, intPtr(2))
	phase, err := f.structure.ReopenPhase(ctx, lone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, phase.Status)
}

func TestCreateRound_Rules(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))

	_, err := f.structure.CreateRound(ctx, CreateRoundInput{PhaseID: phaseID, Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	cancelled := f.seedPhase(tournamentID, models.StatusCancelled, false, intPtr(2))
	_, err = f.structure.CreateRound(ctx, CreateRoundInput{PhaseID: cancelled, Name: "Round 1"})
	assert.ErrorIs(t, err, ErrPhaseNotAcceptingRounds)

	round, err := f.structure.CreateRound(ctx, CreateRoundInput{PhaseID: phaseID, Name: "Round 1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, round.Status)

	// Draft predecessor is rejected; a completed one is required.
	_, err = f.structure.CreateRound(ctx, CreateRoundInput{
		PhaseID:         phaseID,
		Name:            "Round 2",
		PreviousRoundID: &round.ID,
	})
	assert.ErrorIs(t, err, ErrPredecessorNotCompleted)

	f.roundRepo.rounds[round.ID].Status = models.StatusCompleted
	second, err := f.structure.CreateRound(ctx, CreateRoundInput{
		PhaseID:         phaseID,
		Name:            "Round 2",
		PreviousRoundID: &round.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, second.PreviousRoundID)
	assert.Equal(t, round.ID, *second.PreviousRoundID)
}

func TestCreateRound_CrossPhasePredecessor(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseA := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	phaseB := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	foreignRound := f.seedRound(phaseB, models.StatusCompleted)

	_, err := f.structure.CreateRound(ctx, CreateRoundInput{
		PhaseID:         phaseA,
		Name:            "Round 1",
		PreviousRoundID: &foreignRound,
	})
	assert.ErrorIs(t, err, ErrCrossPhasePredecessor)
}

func TestTransitionRoundStatus_RequiresDraw(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	roundID := f.seedRound(phaseID, models.StatusScheduled)

	_, err := f.structure.TransitionRoundStatus(ctx, roundID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrRoundHasNoDraw)

	// Seed a debate; the transition now goes through.
	debateID := uuid.New()
	f.debateRepo.debates[debateID] = &models.Debate{
		ID:           debateID,
		TournamentID: tournamentID,
		RoundID:      roundID,
		RoomID:       f.seedRoom(true),
	}
	round, err := f.structure.TransitionRoundStatus(ctx, roundID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, round.Status)
}

func TestTransitionRoundStatus_TerminalReleasesRooms(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	roundID := f.seedRound(phaseID, models.StatusInProgress)
	roomID := f.seedRoom(true)

	debateID := uuid.New()
	f.debateRepo.debates[debateID] = &models.Debate{
		ID:           debateID,
		TournamentID: tournamentID,
		RoundID:      roundID,
		RoomID:       roomID,
	}

	_, err := f.structure.TransitionRoundStatus(ctx, roundID, models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, f.locationRepo.rooms[roomID].IsOccupied)
}

func TestReopenRound(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	completed := f.seedRound(phaseID, models.StatusCompleted)
	successor := f.seedRound(phaseID, models.StatusDraft)
	f.roundRepo.rounds[successor].PreviousRoundID = &completed

	_, err := f.structure.ReopenRound(ctx, completed)
	assert.ErrorIs(t, err, ErrReopenWithSuccessor)

	lone := f.seedRound(phaseID, models.StatusCompleted)
	round, err := f.structure.ReopenRound(ctx, lone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, round.Status)
}

func TestReopenRound_ReclaimsRooms(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	roundID := f.seedRound(phaseID, models.StatusCompleted)
	roomID := f.seedRoom(false)
	debateID := uuid.New()
	f.debateRepo.debates[debateID] = &models.Debate{
		ID:           debateID,
		TournamentID: tournamentID,
		RoundID:      roundID,
		RoomID:       roomID,
	}

	// Reopening puts the round's debates back in their rooms.
	round, err := f.structure.ReopenRound(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, round.Status)
	assert.True(t, f.locationRepo.rooms[roomID].IsOccupied)

	// A room claimed by another debate in the meantime blocks the reopen.
	other := f.seedRound(phaseID, models.StatusCompleted)
	takenRoom := f.seedRoom(true)
	otherDebate := uuid.New()
	f.debateRepo.debates[otherDebate] = &models.Debate{
		ID:           otherDebate,
		TournamentID: tournamentID,
		RoundID:      other,
		RoomID:       takenRoom,
	}
	_, err = f.structure.ReopenRound(ctx, other)
	assert.ErrorIs(t, err, ErrRoomOccupied)
}

func TestDeleteRequiresDraft(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	phaseID := f.seedPhase(tournamentID, models.StatusInProgress, false, intPtr(2))
	err := f.structure.DeletePhase(ctx, phaseID)
	assert.ErrorIs(t, err, ErrDeleteRequiresDraftStatus)

	roundID := f.seedRound(phaseID, models.StatusInProgress)
	err = f.structure.DeleteRound(ctx, roundID)
	assert.ErrorIs(t, err, ErrDeleteRequiresDraftStatus)

	draftRound := f.seedRound(phaseID, models.StatusDraft)
	require.NoError(t, f.structure.DeleteRound(ctx, draftRound))
	_, err = f.structure.GetRound(ctx, draftRound)
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

// subscribeSpectator registers a websocket client on the fixture's hub and
// waits until the hub has picked it up.
func subscribeSpectator(t *testing.T, f *fixture, tournamentID uuid.UUID) *draws.Client {
	t.Helper()
	go f.hub.Run()
	client := &draws.Client{Hub: f.hub, Send: make(chan []byte, 8), Channel: tournamentID.String()}
	f.hub.Register <- client

	deadline := time.After(time.Second)
	for {
		f.hub.BroadcastToTournament(client.Channel, "SYNC", nil)
		select {
		case <-client.Send:
			return client
		case <-deadline:
			t.Fatal("spectator never subscribed")
		case <-time.After(time.Millisecond):
		}
	}
}

func awaitEvent(t *testing.T, client *draws.Client, eventType string) draws.WebSocketMessage {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case raw := <-client.Send:
			var msg draws.WebSocketMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			if msg.Type == eventType {
				return msg
			}
		case <-deadline:
			t.Fatalf("no %s event received", eventType)
		}
	}
}

func TestStatusTransitions_Broadcast(t *testing.T) {
	f := newFixture()
	tournamentID := f.seedTournament()
	ctx := context.Background()

	client := subscribeSpectator(t, f, tournamentID)

	phaseID := f.seedPhase(tournamentID, models.StatusDraft, false, intPtr(2))
	_, err := f.structure.TransitionPhaseStatus(ctx, phaseID, models.StatusScheduled)
	require.NoError(t, err)
	msg := awaitEvent(t, client, draws.EventPhaseStatusChanged)
	assert.Equal(t, tournamentID.String(), msg.TournamentID)

	f.phaseRepo.phases[phaseID].Status = models.StatusInProgress
	roundID := f.seedRound(phaseID, models.StatusScheduled)
	debateID := uuid.New()
	f.debateRepo.debates[debateID] = &models.Debate{
		ID:           debateID,
		TournamentID: tournamentID,
		RoundID:      roundID,
		RoomID:       f.seedRoom(true),
	}
	_, err = f.structure.TransitionRoundStatus(ctx, roundID, models.StatusInProgress)
	require.NoError(t, err)
	awaitEvent(t, client, draws.EventRoundStatusChanged)
}
