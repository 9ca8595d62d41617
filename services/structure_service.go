package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
)

// StructureService управляет каркасом турнира: фазами, раундами и их
// статусами. Status transitions are compare-and-set against the store, so
// two racing organizers cannot both move the same phase or round.
type StructureService interface {
	CreatePhase(ctx context.Context, input CreatePhaseInput) (*models.Phase, error)
	GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	ListPhases(ctx context.Context, tournamentID uuid.UUID) ([]models.Phase, error)
	TransitionPhaseStatus(ctx context.Context, id uuid.UUID, next models.Status) (*models.Phase, error)
	ReopenPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	DeletePhase(ctx context.Context, id uuid.UUID) error

	CreateRound(ctx context.Context, input CreateRoundInput) (*models.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error)
	ListRounds(ctx context.Context, phaseID uuid.UUID) ([]models.Round, error)
	TransitionRoundStatus(ctx context.Context, id uuid.UUID, next models.Status) (*models.Round, error)
	ReopenRound(ctx context.Context, id uuid.UUID) (*models.Round, error)
	DeleteRound(ctx context.Context, id uuid.UUID) error
}

type CreatePhaseInput struct {
	TournamentID    uuid.UUID
	Name            string
	IsFinals        bool
	PreviousPhaseID *uuid.UUID
	GroupSize       *int
}

type CreateRoundInput struct {
	PhaseID          uuid.UUID
	Name             string
	PlannedStartTime *time.Time
	PlannedEndTime   *time.Time
	MotionID         *uuid.UUID
	PreviousRoundID  *uuid.UUID
}

type structureService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	phaseRepo      repositories.PhaseRepository
	roundRepo      repositories.RoundRepository
	debateRepo     repositories.DebateRepository
	motionRepo     repositories.MotionRepository
	locationRepo   repositories.LocationRepository
	hub            *draws.Hub
	logger         *slog.Logger
}

func NewStructureService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	roundRepo repositories.RoundRepository,
	debateRepo repositories.DebateRepository,
	motionRepo repositories.MotionRepository,
	locationRepo repositories.LocationRepository,
	hub *draws.Hub,
	logger *slog.Logger,
) StructureService {
	return &structureService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		phaseRepo:      phaseRepo,
		roundRepo:      roundRepo,
		debateRepo:     debateRepo,
		motionRepo:     motionRepo,
		locationRepo:   locationRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *structureService) CreatePhase(ctx context.Context, input CreatePhaseInput) (*models.Phase, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if input.IsFinals && input.GroupSize != nil {
		return nil, ErrFinalsGroupSize
	}
	if !input.IsFinals {
		if input.GroupSize == nil {
			return nil, ErrGroupSizeRequired
		}
		if *input.GroupSize < 2 {
			return nil, ErrInvalidGroupSize
		}
	}

	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", input.TournamentID, err)
	}

	if input.PreviousPhaseID == nil {
		hasHead, err := s.phaseRepo.HasChainHead(ctx, input.TournamentID)
		if err != nil {
			return nil, err
		}
		if hasHead {
			return nil, ErrChainHeadConflict
		}
	} else {
		if err := s.validatePhasePredecessor(ctx, input.TournamentID, *input.PreviousPhaseID); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate phase id: %w", err)
	}
	phase := &models.Phase{
		ID:              id,
		TournamentID:    input.TournamentID,
		Name:            name,
		IsFinals:        input.IsFinals,
		PreviousPhaseID: input.PreviousPhaseID,
		GroupSize:       input.GroupSize,
		Status:          models.StatusDraft,
	}

	if err := s.phaseRepo.Create(ctx, nil, phase); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPhaseNameConflict):
			return nil, ErrNameConflict
		case errors.Is(err, repositories.ErrPhaseTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create phase: %w", err)
	}
	return phase, nil
}

func (s *structureService) validatePhasePredecessor(ctx context.Context, tournamentID, previousID uuid.UUID) error {
	previous, err := s.phaseRepo.GetByID(ctx, previousID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return ErrPhaseNotFound
		}
		return err
	}
	if previous.TournamentID != tournamentID {
		return ErrCrossTournamentEntity
	}
	if previous.Status != models.StatusCompleted {
		return ErrPredecessorNotCompleted
	}
	hasSuccessor, err := s.phaseRepo.HasSuccessor(ctx, previousID)
	if err != nil {
		return err
	}
	if hasSuccessor {
		return ErrSuccessorConflict
	}
	return nil
}

func (s *structureService) GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get phase %s: %w", id, err)
	}
	return phase, nil
}

func (s *structureService) ListPhases(ctx context.Context, tournamentID uuid.UUID) ([]models.Phase, error) {
	phases, err := s.phaseRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phases: %w", err)
	}
	return phases, nil
}

func (s *structureService) TransitionPhaseStatus(ctx context.Context, id uuid.UUID, next models.Status) (*models.Phase, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatusValue
	}

	phase, err := s.GetPhase(ctx, id)
	if err != nil {
		return nil, err
	}
	if !phase.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, phase.Status, next)
	}

	if next == models.StatusCompleted {
		unfinished, err := s.phaseRepo.CountUnfinishedRounds(ctx, id)
		if err != nil {
			return nil, err
		}
		if unfinished > 0 {
			return nil, fmt.Errorf("%w: %d rounds remain", ErrRoundsNotFinished, unfinished)
		}
	}

	if err := s.phaseRepo.UpdateStatus(ctx, nil, id, phase.Status, next); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, s.classifyPhaseStatusRace(ctx, id)
		}
		return nil, fmt.Errorf("failed to transition phase %s: %w", id, err)
	}

	phase.Status = next
	s.hub.BroadcastToTournament(phase.TournamentID.String(), draws.EventPhaseStatusChanged, phase)
	return phase, nil
}

// classifyPhaseStatusRace distinguishes a vanished phase from a lost
// compare-and-set race.
func (s *structureService) classifyPhaseStatusRace(ctx context.Context, id uuid.UUID) error {
	if _, err := s.phaseRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return ErrPhaseNotFound
		}
		return err
	}
	return ErrStatusRace
}

func (s *structureService) ReopenPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	phase, err := s.GetPhase(ctx, id)
	if err != nil {
		return nil, err
	}
	if phase.Status != models.StatusCompleted {
		return nil, ErrReopenNotAllowed
	}
	hasSuccessor, err := s.phaseRepo.HasSuccessor(ctx, id)
	if err != nil {
		return nil, err
	}
	if hasSuccessor {
		return nil, ErrReopenWithSuccessor
	}

	if err := s.phaseRepo.UpdateStatus(ctx, nil, id, models.StatusCompleted, models.StatusInProgress); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, s.classifyPhaseStatusRace(ctx, id)
		}
		return nil, fmt.Errorf("failed to reopen phase %s: %w", id, err)
	}

	s.logger.Warn("phase reopened",
		slog.String("phase_id", id.String()),
		slog.String("tournament_id", phase.TournamentID.String()),
	)
	phase.Status = models.StatusInProgress
	s.hub.BroadcastToTournament(phase.TournamentID.String(), draws.EventPhaseStatusChanged, phase)
	return phase, nil
}

func (s *structureService) DeletePhase(ctx context.Context, id uuid.UUID) error {
	phase, err := s.GetPhase(ctx, id)
	if err != nil {
		return err
	}
	if phase.Status != models.StatusDraft {
		return ErrDeleteRequiresDraftStatus
	}
	if err := s.phaseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return ErrPhaseNotFound
		}
		return fmt.Errorf("failed to delete phase %s: %w", id, err)
	}
	return nil
}

func (s *structureService) CreateRound(ctx context.Context, input CreateRoundInput) (*models.Round, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.PlannedStartTime != nil && input.PlannedEndTime != nil &&
		!input.PlannedEndTime.After(*input.PlannedStartTime) {
		return nil, fmt.Errorf("%w: planned end must be after planned start", ErrValidation)
	}

	phase, err := s.GetPhase(ctx, input.PhaseID)
	if err != nil {
		return nil, err
	}
	if phase.Status.Terminal() {
		return nil, ErrPhaseNotAcceptingRounds
	}

	if input.MotionID != nil {
		if _, err := s.motionRepo.GetByID(ctx, *input.MotionID); err != nil {
			if errors.Is(err, repositories.ErrMotionNotFound) {
				return nil, ErrMotionNotFound
			}
			return nil, err
		}
	}

	if input.PreviousRoundID != nil {
		if err := s.validateRoundPredecessor(ctx, phase, *input.PreviousRoundID); err != nil {
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate round id: %w", err)
	}
	round := &models.Round{
		ID:               id,
		PhaseID:          input.PhaseID,
		Name:             name,
		PlannedStartTime: input.PlannedStartTime,
		PlannedEndTime:   input.PlannedEndTime,
		MotionID:         input.MotionID,
		PreviousRoundID:  input.PreviousRoundID,
		Status:           models.StatusDraft,
	}

	if err := s.roundRepo.Create(ctx, nil, round); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoundPhaseInvalid):
			return nil, ErrPhaseNotFound
		case errors.Is(err, repositories.ErrRoundMotionInvalid):
			return nil, ErrMotionNotFound
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	return round, nil
}

// validateRoundPredecessor allows a predecessor from the same phase or
// from the phase's direct predecessor, completed and without a successor.
func (s *structureService) validateRoundPredecessor(ctx context.Context, phase *models.Phase, previousID uuid.UUID) error {
	previous, err := s.roundRepo.GetByID(ctx, previousID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}

	samePhase := previous.PhaseID == phase.ID
	previousPhase := phase.PreviousPhaseID != nil && previous.PhaseID == *phase.PreviousPhaseID
	if !samePhase && !previousPhase {
		return ErrCrossPhasePredecessor
	}
	if previous.Status != models.StatusCompleted {
		return ErrPredecessorNotCompleted
	}

	hasSuccessor, err := s.roundRepo.HasSuccessor(ctx, previousID)
	if err != nil {
		return err
	}
	if hasSuccessor {
		return ErrSuccessorConflict
	}
	return nil
}

func (s *structureService) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %s: %w", id, err)
	}
	return round, nil
}

func (s *structureService) ListRounds(ctx context.Context, phaseID uuid.UUID) ([]models.Round, error) {
	rounds, err := s.roundRepo.ListByPhase(ctx, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (s *structureService) TransitionRoundStatus(ctx context.Context, id uuid.UUID, next models.Status) (*models.Round, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatusValue
	}

	var round *models.Round
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		round, err = s.roundRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return ErrRoundNotFound
			}
			return err
		}
		if !round.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, round.Status, next)
		}

		if next == models.StatusInProgress {
			count, err := s.debateRepo.CountByRound(ctx, exec, id)
			if err != nil {
				return err
			}
			if count == 0 {
				return ErrRoundHasNoDraw
			}
		}

		if err := s.roundRepo.UpdateStatus(ctx, exec, id, round.Status, next); err != nil {
			return err
		}

		// Leaving the live part of the lifecycle frees the rooms.
		if next.Terminal() {
			if err := s.releaseRoundRooms(ctx, exec, id); err != nil {
				return err
			}
		}
		round.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcastRoundStatus(ctx, round)
	return round, nil
}

func (s *structureService) releaseRoundRooms(ctx context.Context, exec repositories.SQLExecutor, roundID uuid.UUID) error {
	roomIDs, err := s.debateRepo.ListRoomIDsByRound(ctx, exec, roundID)
	if err != nil {
		return err
	}
	for _, roomID := range roomIDs {
		if err := s.locationRepo.ReleaseRoom(ctx, exec, roomID); err != nil {
			return fmt.Errorf("failed to release room %s: %w", roomID, err)
		}
	}
	return nil
}

// occupyRoundRooms takes the round's debate rooms back when a completed
// round goes live again. A room claimed in the meantime fails the reopen.
func (s *structureService) occupyRoundRooms(ctx context.Context, exec repositories.SQLExecutor, roundID uuid.UUID) error {
	roomIDs, err := s.debateRepo.ListRoomIDsByRound(ctx, exec, roundID)
	if err != nil {
		return err
	}
	for _, roomID := range roomIDs {
		if err := s.locationRepo.OccupyRoom(ctx, exec, roomID); err != nil {
			if errors.Is(err, repositories.ErrRoomAlreadyOccupied) {
				return fmt.Errorf("%w (id: %s)", ErrRoomOccupied, roomID)
			}
			return fmt.Errorf("failed to occupy room %s: %w", roomID, err)
		}
	}
	return nil
}

func (s *structureService) broadcastRoundStatus(ctx context.Context, round *models.Round) {
	phase, err := s.phaseRepo.GetByID(ctx, round.PhaseID)
	if err != nil {
		s.logger.Error("failed to resolve tournament for round broadcast",
			slog.String("round_id", round.ID.String()), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToTournament(phase.TournamentID.String(), draws.EventRoundStatusChanged, round)
}

func (s *structureService) ReopenRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	var round *models.Round
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		round, err = s.roundRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return ErrRoundNotFound
			}
			return err
		}
		if round.Status != models.StatusCompleted {
			return ErrReopenNotAllowed
		}
		hasSuccessor, err := s.roundRepo.HasSuccessor(ctx, id)
		if err != nil {
			return err
		}
		if hasSuccessor {
			return ErrReopenWithSuccessor
		}
		if err := s.roundRepo.UpdateStatus(ctx, exec, id, models.StatusCompleted, models.StatusInProgress); err != nil {
			return err
		}
		// Completing the round released its rooms; a live round holds
		// them again.
		if err := s.occupyRoundRooms(ctx, exec, id); err != nil {
			return err
		}
		round.Status = models.StatusInProgress
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("round reopened",
		slog.String("round_id", id.String()),
		slog.String("phase_id", round.PhaseID.String()),
	)
	s.broadcastRoundStatus(ctx, round)
	return round, nil
}

func (s *structureService) DeleteRound(ctx context.Context, id uuid.UUID) error {
	round, err := s.GetRound(ctx, id)
	if err != nil {
		return err
	}
	if round.Status != models.StatusDraft {
		return ErrDeleteRequiresDraftStatus
	}
	if err := s.roundRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to delete round %s: %w", id, err)
	}
	return nil
}
