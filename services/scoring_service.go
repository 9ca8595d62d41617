package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ScoringService ведёт реестр результатов. Each recorded result is one
// immutable ledger row; attendee accumulators are updated in the same
// transaction and standings are always derived from the raw rows.
type ScoringService interface {
	RecordResult(ctx context.Context, input RecordResultInput) (*models.DebateResult, error)
	ListDebateResults(ctx context.Context, debateID uuid.UUID) ([]models.DebateResult, error)
	ComputeStandings(ctx context.Context, phaseID uuid.UUID) ([]models.TeamStanding, error)
}

type RecordResultInput struct {
	DebateID   uuid.UUID
	AttendeeID uuid.UUID
	// Non-negative magnitudes; net contribution is individual minus penalty.
	IndividualDelta int
	PenaltyDelta    int
}

type scoringService struct {
	txRunner     repositories.TxRunner
	phaseRepo    repositories.PhaseRepository
	roundRepo    repositories.RoundRepository
	debateRepo   repositories.DebateRepository
	attendeeRepo repositories.AttendeeRepository
	resultRepo   repositories.ResultRepository
	hub          *draws.Hub
	logger       *slog.Logger
}

func NewScoringService(
	txRunner repositories.TxRunner,
	phaseRepo repositories.PhaseRepository,
	roundRepo repositories.RoundRepository,
	debateRepo repositories.DebateRepository,
	attendeeRepo repositories.AttendeeRepository,
	resultRepo repositories.ResultRepository,
	hub *draws.Hub,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		txRunner:     txRunner,
		phaseRepo:    phaseRepo,
		roundRepo:    roundRepo,
		debateRepo:   debateRepo,
		attendeeRepo: attendeeRepo,
		resultRepo:   resultRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *scoringService) RecordResult(ctx context.Context, input RecordResultInput) (*models.DebateResult, error) {
	if input.IndividualDelta < 0 || input.PenaltyDelta < 0 {
		return nil, ErrNegativeDelta
	}

	var (
		result       *models.DebateResult
		tournamentID uuid.UUID
	)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		debate, err := s.debateRepo.GetByID(ctx, input.DebateID)
		if err != nil {
			if errors.Is(err, repositories.ErrDebateNotFound) {
				return ErrDebateNotFound
			}
			return err
		}
		tournamentID = debate.TournamentID

		round, err := s.roundRepo.GetForUpdate(ctx, exec, debate.RoundID)
		if err != nil {
			return err
		}
		// Results may land while the round runs and during post-round
		// finalization; never before, never for a cancelled round.
		if round.Status != models.StatusInProgress && round.Status != models.StatusCompleted {
			return fmt.Errorf("%w (round is %s)", ErrRoundNotInProgress, round.Status)
		}

		attendee, err := s.attendeeRepo.GetByID(ctx, input.AttendeeID)
		if err != nil {
			if errors.Is(err, repositories.ErrAttendeeNotFound) {
				return ErrAttendeeNotFound
			}
			return err
		}
		if attendee.TeamID == nil {
			return ErrSpeakerNotSeated
		}
		seated, err := s.debateRepo.ListTeamAssignments(ctx, exec, input.DebateID)
		if err != nil {
			return err
		}
		found := false
		for _, assignment := range seated {
			if assignment.TeamID == *attendee.TeamID {
				found = true
				break
			}
		}
		if !found {
			return ErrSpeakerNotSeated
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate result id: %w", err)
		}
		result = &models.DebateResult{
			ID:              id,
			DebateID:        input.DebateID,
			AttendeeID:      input.AttendeeID,
			IndividualDelta: input.IndividualDelta,
			PenaltyDelta:    input.PenaltyDelta,
		}
		if err := s.resultRepo.Create(ctx, exec, result); err != nil {
			if errors.Is(err, repositories.ErrResultDuplicate) {
				return ErrResultDuplicate
			}
			return fmt.Errorf("failed to record result: %w", err)
		}

		// Accumulators shadow the ledger; they move only here, together
		// with the row insert.
		return s.attendeeRepo.AddPoints(ctx, exec, input.AttendeeID, input.IndividualDelta, input.PenaltyDelta)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.String("debate_id", input.DebateID.String()),
		slog.String("attendee_id", input.AttendeeID.String()),
		slog.Int("individual", input.IndividualDelta),
		slog.Int("penalty", input.PenaltyDelta),
	)
	s.hub.BroadcastToTournament(tournamentID.String(), draws.EventResultRecorded, result)
	return result, nil
}

func (s *scoringService) ListDebateResults(ctx context.Context, debateID uuid.UUID) ([]models.DebateResult, error) {
	if _, err := s.debateRepo.GetByID(ctx, debateID); err != nil {
		if errors.Is(err, repositories.ErrDebateNotFound) {
			return nil, ErrDebateNotFound
		}
		return nil, err
	}
	results, err := s.resultRepo.ListByDebate(ctx, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func (s *scoringService) ComputeStandings(ctx context.Context, phaseID uuid.UUID) ([]models.TeamStanding, error) {
	var points []repositories.PhasePoints

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.phaseRepo.GetByID(gCtx, phaseID); err != nil {
			if errors.Is(err, repositories.ErrPhaseNotFound) {
				return ErrPhaseNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		points, err = s.resultRepo.SumByPhase(gCtx, phaseID)
		if err != nil {
			return fmt.Errorf("failed to aggregate phase results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	standings := make([]models.TeamStanding, 0, len(points))
	for _, p := range points {
		standings = append(standings, models.TeamStanding{
			TeamID:           p.TeamID,
			TeamName:         p.TeamName,
			IndividualPoints: p.IndividualPoints,
			PenaltyPoints:    p.PenaltyPoints,
			NetPoints:        p.IndividualPoints - p.PenaltyPoints,
		})
	}

	// Stable ordering: net points descending, team name ascending.
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].NetPoints != standings[j].NetPoints {
			return standings[i].NetPoints > standings[j].NetPoints
		}
		return standings[i].TeamName < standings[j].TeamName
	})

	// Teams on equal net points share a rank.
	for i := range standings {
		rank := i + 1
		if i > 0 && standings[i].NetPoints == standings[i-1].NetPoints {
			rank = *standings[i-1].Rank
		}
		standings[i].Rank = &rank
	}
	return standings, nil
}
