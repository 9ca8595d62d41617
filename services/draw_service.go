package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
)

// DrawService generates and adjusts the debate draw of a round. Every
// mutating operation runs in a single transaction holding the round's row
// lock, so concurrent draws and reassignments against one round serialize
// and either fully apply or leave no trace.
type DrawService interface {
	GenerateDraw(ctx context.Context, input GenerateDrawInput) ([]models.Debate, error)
	GetDebate(ctx context.Context, id uuid.UUID) (*models.Debate, error)
	ListDebates(ctx context.Context, roundID uuid.UUID) ([]models.Debate, error)

	ReassignTeam(ctx context.Context, debateID, currentTeamID, newTeamID uuid.UUID) error
	ReassignJudge(ctx context.Context, debateID, currentJudgeID, newJudgeID uuid.UUID) error
	ReassignRoom(ctx context.Context, debateID, newRoomID uuid.UUID) error
	SetMarshal(ctx context.Context, debateID uuid.UUID, marshalUserID *uuid.UUID) error
	// SetPropositionSide marks the team as proposition and its opponent as
	// opposition. Only defined for two-team debates.
	SetPropositionSide(ctx context.Context, debateID, teamID uuid.UUID) error
}

type GenerateDrawInput struct {
	RoundID        uuid.UUID
	TeamIDs        []uuid.UUID
	JudgeUserIDs   []uuid.UUID
	RoomIDs        []uuid.UUID
	MarshalUserIDs []uuid.UUID
	// Overrides the round's motion for the created debates when set.
	MotionID *uuid.UUID
	// Overrides the phase's group size when set. Ignored for finals.
	GroupSize *int
	// Judges per debate; defaults to 1.
	PanelSize  int
	SidePolicy string
}

type drawService struct {
	txRunner        repositories.TxRunner
	phaseRepo       repositories.PhaseRepository
	roundRepo       repositories.RoundRepository
	debateRepo      repositories.DebateRepository
	teamRepo        repositories.TeamRepository
	locationRepo    repositories.LocationRepository
	motionRepo      repositories.MotionRepository
	roleRepo        repositories.RoleRepository
	affiliationRepo repositories.AffiliationRepository
	hub             *draws.Hub
	logger          *slog.Logger
}

func NewDrawService(
	txRunner repositories.TxRunner,
	phaseRepo repositories.PhaseRepository,
	roundRepo repositories.RoundRepository,
	debateRepo repositories.DebateRepository,
	teamRepo repositories.TeamRepository,
	locationRepo repositories.LocationRepository,
	motionRepo repositories.MotionRepository,
	roleRepo repositories.RoleRepository,
	affiliationRepo repositories.AffiliationRepository,
	hub *draws.Hub,
	logger *slog.Logger,
) DrawService {
	return &drawService{
		txRunner:        txRunner,
		phaseRepo:       phaseRepo,
		roundRepo:       roundRepo,
		debateRepo:      debateRepo,
		teamRepo:        teamRepo,
		locationRepo:    locationRepo,
		motionRepo:      motionRepo,
		roleRepo:        roleRepo,
		affiliationRepo: affiliationRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *drawService) GenerateDraw(ctx context.Context, input GenerateDrawInput) ([]models.Debate, error) {
	policy, ok := draws.PolicyByName(input.SidePolicy)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSidePolicy, input.SidePolicy)
	}

	round, err := s.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	phase, err := s.phaseRepo.GetByID(ctx, round.PhaseID)
	if err != nil {
		return nil, err
	}

	groupSize, err := resolveGroupSize(phase, input.GroupSize, len(input.TeamIDs))
	if err != nil {
		return nil, err
	}

	// The round's motion by default, a per-draw override when requested.
	motionID := round.MotionID
	if input.MotionID != nil {
		if _, err := s.motionRepo.GetByID(ctx, *input.MotionID); err != nil {
			if errors.Is(err, repositories.ErrMotionNotFound) {
				return nil, fmt.Errorf("%w (id: %s)", ErrMotionNotFound, *input.MotionID)
			}
			return nil, err
		}
		motionID = input.MotionID
	}

	if err := s.validateTeamPool(ctx, phase.TournamentID, input.TeamIDs); err != nil {
		return nil, err
	}
	if err := s.validateUserRoles(ctx, phase.TournamentID, input.JudgeUserIDs, models.RoleJudge); err != nil {
		return nil, err
	}
	if err := s.validateUserRoles(ctx, phase.TournamentID, input.MarshalUserIDs, models.RoleMarshal); err != nil {
		return nil, err
	}

	affiliations, err := s.loadAffiliations(ctx, phase.TournamentID)
	if err != nil {
		return nil, err
	}

	plan, err := draws.Plan(draws.PlanParams{
		RoundID:      input.RoundID,
		TeamPool:     input.TeamIDs,
		JudgePool:    input.JudgeUserIDs,
		RoomPool:     input.RoomIDs,
		MarshalPool:  input.MarshalUserIDs,
		GroupSize:    groupSize,
		PanelSize:    input.PanelSize,
		Side:         policy,
		Affiliations: affiliations,
	})
	if err != nil {
		return nil, mapPlannerError(err)
	}

	var created []models.Debate
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.roundRepo.GetForUpdate(ctx, exec, input.RoundID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return ErrRoundNotFound
			}
			return err
		}
		if locked.Status != models.StatusDraft && locked.Status != models.StatusScheduled {
			return ErrRoundAlreadyStarted
		}

		count, err := s.debateRepo.CountByRound(ctx, exec, input.RoundID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDrawAlreadyGenerated
		}

		created = created[:0]
		for _, planned := range plan {
			debate, err := s.persistPlannedDebate(ctx, exec, phase.TournamentID, locked, motionID, planned)
			if err != nil {
				return err
			}
			created = append(created, *debate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draw generated",
		slog.String("round_id", input.RoundID.String()),
		slog.Int("debates", len(created)),
		slog.Int("group_size", groupSize),
	)
	s.hub.BroadcastToTournament(phase.TournamentID.String(), draws.EventDrawGenerated, created)
	return created, nil
}

func resolveGroupSize(phase *models.Phase, override *int, poolSize int) (int, error) {
	if phase.IsFinals {
		// The finals seat the whole pool in a single debate.
		if poolSize < 2 {
			return 0, ErrEmptyTeamPool
		}
		return poolSize, nil
	}
	if override != nil {
		if *override < 2 {
			return 0, ErrInvalidGroupSize
		}
		return *override, nil
	}
	if phase.GroupSize == nil {
		return 0, ErrGroupSizeRequired
	}
	return *phase.GroupSize, nil
}

func (s *drawService) validateTeamPool(ctx context.Context, tournamentID uuid.UUID, teamIDs []uuid.UUID) error {
	for _, teamID := range teamIDs {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return fmt.Errorf("%w (id: %s)", ErrTeamNotFound, teamID)
			}
			return err
		}
		if team.TournamentID != tournamentID {
			return fmt.Errorf("%w: team %s", ErrCrossTournamentEntity, teamID)
		}
	}
	return nil
}

func (s *drawService) validateUserRoles(ctx context.Context, tournamentID uuid.UUID, userIDs []uuid.UUID, required models.Role) error {
	for _, userID := range userIDs {
		granted, err := s.roleRepo.GetByUserAndTournament(ctx, userID, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrRolesNotFound) {
				return fmt.Errorf("%w: user %s has no roles in this tournament", ErrMissingRole, userID)
			}
			return err
		}
		if !granted.Has(required) {
			return fmt.Errorf("%w: user %s lacks role %q", ErrMissingRole, userID, required)
		}
	}
	return nil
}

func (s *drawService) loadAffiliations(ctx context.Context, tournamentID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	records, err := s.affiliationRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliations: %w", err)
	}
	byJudge := make(map[uuid.UUID][]uuid.UUID, len(records))
	for _, a := range records {
		byJudge[a.JudgeUserID] = append(byJudge[a.JudgeUserID], a.TeamID)
	}
	return byJudge, nil
}

func mapPlannerError(err error) error {
	switch {
	case errors.Is(err, draws.ErrEmptyTeamPool):
		return ErrEmptyTeamPool
	case errors.Is(err, draws.ErrIndivisiblePool):
		return fmt.Errorf("%w: %v", ErrIndivisibleTeamPool, err)
	case errors.Is(err, draws.ErrDuplicateInPool):
		return fmt.Errorf("%w: %v", ErrDuplicatePoolEntry, err)
	case errors.Is(err, draws.ErrNotEnoughRooms):
		return fmt.Errorf("%w: %v", ErrInsufficientRooms, err)
	case errors.Is(err, draws.ErrNotEnoughJudges):
		return fmt.Errorf("%w: %v", ErrInsufficientJudges, err)
	}
	return err
}

func (s *drawService) persistPlannedDebate(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, round *models.Round, motionID *uuid.UUID, planned draws.PlannedDebate) (*models.Debate, error) {
	if err := s.locationRepo.OccupyRoom(ctx, exec, planned.RoomID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			return nil, fmt.Errorf("%w (id: %s)", ErrRoomNotFound, planned.RoomID)
		case errors.Is(err, repositories.ErrRoomAlreadyOccupied):
			return nil, fmt.Errorf("%w (id: %s)", ErrRoomOccupied, planned.RoomID)
		}
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate debate id: %w", err)
	}
	debate := &models.Debate{
		ID:            id,
		TournamentID:  tournamentID,
		RoundID:       round.ID,
		RoomID:        planned.RoomID,
		MotionID:      motionID,
		MarshalUserID: planned.MarshalUserID,
	}
	if err := s.debateRepo.Create(ctx, exec, debate); err != nil {
		return nil, fmt.Errorf("failed to create debate: %w", err)
	}

	for i, teamID := range planned.TeamIDs {
		assignmentID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate assignment id: %w", err)
		}
		assignment := models.DebateTeamAssignment{
			ID:       assignmentID,
			DebateID: debate.ID,
			TeamID:   teamID,
			Side:     planned.Sides[i],
		}
		if err := s.debateRepo.CreateTeamAssignment(ctx, exec, &assignment); err != nil {
			return nil, fmt.Errorf("failed to seat team %s: %w", teamID, err)
		}
		debate.TeamAssignments = append(debate.TeamAssignments, assignment)
	}

	for _, judgeID := range planned.JudgeIDs {
		assignmentID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate assignment id: %w", err)
		}
		assignment := models.DebateJudgeAssignment{
			ID:          assignmentID,
			DebateID:    debate.ID,
			JudgeUserID: judgeID,
		}
		if err := s.debateRepo.CreateJudgeAssignment(ctx, exec, &assignment); err != nil {
			return nil, fmt.Errorf("failed to seat judge %s: %w", judgeID, err)
		}
		debate.JudgeAssignments = append(debate.JudgeAssignments, assignment)
	}

	return debate, nil
}

func (s *drawService) GetDebate(ctx context.Context, id uuid.UUID) (*models.Debate, error) {
	debate, err := s.debateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDebateNotFound) {
			return nil, ErrDebateNotFound
		}
		return nil, fmt.Errorf("failed to get debate %s: %w", id, err)
	}
	if err := s.loadAssignments(ctx, debate); err != nil {
		return nil, err
	}
	return debate, nil
}

func (s *drawService) ListDebates(ctx context.Context, roundID uuid.UUID) ([]models.Debate, error) {
	debates, err := s.debateRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates: %w", err)
	}
	for i := range debates {
		if err := s.loadAssignments(ctx, &debates[i]); err != nil {
			return nil, err
		}
	}
	return debates, nil
}

func (s *drawService) loadAssignments(ctx context.Context, debate *models.Debate) error {
	teams, err := s.debateRepo.ListTeamAssignments(ctx, nil, debate.ID)
	if err != nil {
		return err
	}
	judges, err := s.debateRepo.ListJudgeAssignments(ctx, nil, debate.ID)
	if err != nil {
		return err
	}
	debate.TeamAssignments = teams
	debate.JudgeAssignments = judges
	return nil
}

// lockDebateRound loads the debate and locks its round, rejecting changes
// once the round reached a terminal status.
func (s *drawService) lockDebateRound(ctx context.Context, exec repositories.SQLExecutor, debateID uuid.UUID) (*models.Debate, *models.Round, error) {
	debate, err := s.debateRepo.GetByID(ctx, debateID)
	if err != nil {
		if errors.Is(err, repositories.ErrDebateNotFound) {
			return nil, nil, ErrDebateNotFound
		}
		return nil, nil, err
	}
	round, err := s.roundRepo.GetForUpdate(ctx, exec, debate.RoundID)
	if err != nil {
		return nil, nil, err
	}
	if round.Status.Terminal() {
		return nil, nil, fmt.Errorf("%w: round is %s", ErrInvalidState, round.Status)
	}
	return debate, round, nil
}

func (s *drawService) ReassignTeam(ctx context.Context, debateID, currentTeamID, newTeamID uuid.UUID) error {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		debate, round, err := s.lockDebateRound(ctx, exec, debateID)
		if err != nil {
			return err
		}

		team, err := s.teamRepo.GetByID(ctx, newTeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		if team.TournamentID != debate.TournamentID {
			return ErrCrossTournamentEntity
		}

		seated, err := s.debateRepo.ListTeamIDsByRound(ctx, exec, round.ID)
		if err != nil {
			return err
		}
		if containsID(seated, newTeamID) {
			return ErrTeamDoubleBooked
		}

		// The debate's panel must stay impartial towards the incoming team.
		affiliations, err := s.loadAffiliations(ctx, debate.TournamentID)
		if err != nil {
			return err
		}
		judges, err := s.debateRepo.ListJudgeAssignments(ctx, exec, debateID)
		if err != nil {
			return err
		}
		for _, judge := range judges {
			if containsID(affiliations[judge.JudgeUserID], newTeamID) {
				return ErrJudgeAffiliated
			}
		}

		if err := s.debateRepo.UpdateTeamAssignmentTeam(ctx, exec, debateID, currentTeamID, newTeamID); err != nil {
			if errors.Is(err, repositories.ErrDebateAssignmentNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.broadcastReassignment(ctx, debateID)
	return nil
}

func (s *drawService) ReassignJudge(ctx context.Context, debateID, currentJudgeID, newJudgeID uuid.UUID) error {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		debate, round, err := s.lockDebateRound(ctx, exec, debateID)
		if err != nil {
			return err
		}

		if err := s.validateUserRoles(ctx, debate.TournamentID, []uuid.UUID{newJudgeID}, models.RoleJudge); err != nil {
			return err
		}

		seated, err := s.debateRepo.ListJudgeUserIDsByRound(ctx, exec, round.ID)
		if err != nil {
			return err
		}
		if containsID(seated, newJudgeID) {
			return ErrJudgeDoubleBooked
		}

		affiliations, err := s.loadAffiliations(ctx, debate.TournamentID)
		if err != nil {
			return err
		}
		teams, err := s.debateRepo.ListTeamAssignments(ctx, exec, debateID)
		if err != nil {
			return err
		}
		for _, affiliatedTeam := range affiliations[newJudgeID] {
			for _, assignment := range teams {
				if assignment.TeamID == affiliatedTeam {
					return ErrJudgeAffiliated
				}
			}
		}

		if err := s.debateRepo.UpdateJudgeAssignment(ctx, exec, debateID, currentJudgeID, newJudgeID); err != nil {
			if errors.Is(err, repositories.ErrDebateAssignmentNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.broadcastReassignment(ctx, debateID)
	return nil
}

func (s *drawService) ReassignRoom(ctx context.Context, debateID, newRoomID uuid.UUID) error {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		debate, _, err := s.lockDebateRound(ctx, exec, debateID)
		if err != nil {
			return err
		}
		if debate.RoomID == newRoomID {
			return nil
		}

		if err := s.locationRepo.OccupyRoom(ctx, exec, newRoomID); err != nil {
			switch {
			case errors.Is(err, repositories.ErrRoomNotFound):
				return ErrRoomNotFound
			case errors.Is(err, repositories.ErrRoomAlreadyOccupied):
				return ErrRoomOccupied
			}
			return err
		}
		if err := s.locationRepo.ReleaseRoom(ctx, exec, debate.RoomID); err != nil {
			return err
		}
		return s.debateRepo.UpdateRoom(ctx, exec, debateID, newRoomID)
	})
	if err != nil {
		return err
	}
	s.broadcastReassignment(ctx, debateID)
	return nil
}

func (s *drawService) SetMarshal(ctx context.Context, debateID uuid.UUID, marshalUserID *uuid.UUID) error {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		debate, round, err := s.lockDebateRound(ctx, exec, debateID)
		if err != nil {
			return err
		}

		if marshalUserID != nil {
			if err := s.validateUserRoles(ctx, debate.TournamentID, []uuid.UUID{*marshalUserID}, models.RoleMarshal); err != nil {
				return err
			}
			judges, err := s.debateRepo.ListJudgeUserIDsByRound(ctx, exec, round.ID)
			if err != nil {
				return err
			}
			if containsID(judges, *marshalUserID) {
				return ErrMarshalIsJudge
			}
		}
		return s.debateRepo.UpdateMarshal(ctx, exec, debateID, marshalUserID)
	})
	if err != nil {
		return err
	}
	s.broadcastReassignment(ctx, debateID)
	return nil
}

func (s *drawService) SetPropositionSide(ctx context.Context, debateID, teamID uuid.UUID) error {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		_, _, err := s.lockDebateRound(ctx, exec, debateID)
		if err != nil {
			return err
		}

		assignments, err := s.debateRepo.ListTeamAssignments(ctx, exec, debateID)
		if err != nil {
			return err
		}
		if len(assignments) != 2 {
			return fmt.Errorf("%w: sides are only defined for two-team debates", ErrValidation)
		}

		var proposition, opposition *models.DebateTeamAssignment
		for i := range assignments {
			if assignments[i].TeamID == teamID {
				proposition = &assignments[i]
			} else {
				opposition = &assignments[i]
			}
		}
		if proposition == nil {
			return ErrSpeakerNotSeated
		}

		if err := s.debateRepo.UpdateTeamAssignmentSide(ctx, exec, debateID, proposition.TeamID, models.SideProposition); err != nil {
			return err
		}
		return s.debateRepo.UpdateTeamAssignmentSide(ctx, exec, debateID, opposition.TeamID, models.SideOpposition)
	})
	if err != nil {
		return err
	}
	s.broadcastReassignment(ctx, debateID)
	return nil
}

func (s *drawService) broadcastReassignment(ctx context.Context, debateID uuid.UUID) {
	debate, err := s.GetDebate(ctx, debateID)
	if err != nil {
		s.logger.Error("failed to load debate for broadcast",
			slog.String("debate_id", debateID.String()), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToTournament(debate.TournamentID.String(), draws.EventDebateReassigned, debate)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
