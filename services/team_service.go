package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/Dosada05/debate-system/storage"
	"github.com/google/uuid"
)

type TeamService interface {
	CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, input TeamInput) (*models.Team, error)
	UploadCrest(ctx context.Context, id uuid.UUID, contentType string, file io.Reader) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error

	CreateAttendee(ctx context.Context, input AttendeeInput) (*models.Attendee, error)
	GetAttendeeByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
	ListAttendees(ctx context.Context, teamID uuid.UUID) ([]models.Attendee, error)
	UpdateAttendee(ctx context.Context, id uuid.UUID, input AttendeeInput) (*models.Attendee, error)
	DeleteAttendee(ctx context.Context, id uuid.UUID) error
}

type TeamInput struct {
	TournamentID  uuid.UUID
	FullName      string
	ShortenedName string
}

type AttendeeInput struct {
	Name     string
	TeamID   *uuid.UUID
	Position *int
}

type teamService struct {
	teamRepo     repositories.TeamRepository
	attendeeRepo repositories.AttendeeRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	attendeeRepo repositories.AttendeeRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:     teamRepo,
		attendeeRepo: attendeeRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrNameRequired
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team id: %w", err)
	}
	team := &models.Team{
		ID:            id,
		TournamentID:  input.TournamentID,
		FullName:      fullName,
		ShortenedName: strings.TrimSpace(input.ShortenedName),
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrNameConflict
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	populateTeamCrestURL(team, s.uploader)

	attendees, err := s.attendeeRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load team attendees: %w", err)
	}
	team.Attendees = attendees
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for i := range teams {
		populateTeamCrestURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, input TeamInput) (*models.Team, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrNameRequired
	}

	team, err := s.GetTeamByID(ctx, id)
	if err != nil {
		return nil, err
	}
	team.FullName = fullName
	team.ShortenedName = strings.TrimSpace(input.ShortenedName)

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update team %s: %w", id, err)
	}
	return team, nil
}

func (s *teamService) UploadCrest(ctx context.Context, id uuid.UUID, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.GetTeamByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := getExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	key := fmt.Sprintf("teams/%s/crest%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team crest: %w", err)
	}

	oldKey := team.CrestKey
	if err := s.teamRepo.UpdateCrestKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store crest key: %w", err)
	}
	if oldKey != nil && *oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous team crest",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	team.CrestKey = &result.Key
	team.CrestURL = &result.Location
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	team, err := s.GetTeamByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	if team.CrestKey != nil {
		if delErr := s.uploader.Delete(ctx, *team.CrestKey); delErr != nil {
			s.logger.Warn("failed to delete crest of removed team",
				slog.String("key", *team.CrestKey), slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *teamService) CreateAttendee(ctx context.Context, input AttendeeInput) (*models.Attendee, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.Position != nil && *input.Position < 1 {
		return nil, fmt.Errorf("%w: speaker position must be positive", ErrValidation)
	}
	if input.Position != nil && input.TeamID == nil {
		return nil, fmt.Errorf("%w: a speaker position requires a team", ErrValidation)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate attendee id: %w", err)
	}
	attendee := &models.Attendee{
		ID:       id,
		Name:     name,
		TeamID:   input.TeamID,
		Position: input.Position,
	}

	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAttendeePositionConflict):
			return nil, fmt.Errorf("%w: speaker position is taken", ErrConflict)
		case errors.Is(err, repositories.ErrAttendeeTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}
	return attendee, nil
}

func (s *teamService) GetAttendeeByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	attendee, err := s.attendeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAttendeeNotFound) {
			return nil, ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to get attendee %s: %w", id, err)
	}
	return attendee, nil
}

func (s *teamService) ListAttendees(ctx context.Context, teamID uuid.UUID) ([]models.Attendee, error) {
	attendees, err := s.attendeeRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}

func (s *teamService) UpdateAttendee(ctx context.Context, id uuid.UUID, input AttendeeInput) (*models.Attendee, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	attendee, err := s.GetAttendeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attendee.Name = name
	attendee.TeamID = input.TeamID
	attendee.Position = input.Position

	if err := s.attendeeRepo.Update(ctx, attendee); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAttendeeNotFound):
			return nil, ErrAttendeeNotFound
		case errors.Is(err, repositories.ErrAttendeePositionConflict):
			return nil, fmt.Errorf("%w: speaker position is taken", ErrConflict)
		case errors.Is(err, repositories.ErrAttendeeTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update attendee %s: %w", id, err)
	}
	return attendee, nil
}

func (s *teamService) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	if err := s.attendeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAttendeeNotFound) {
			return ErrAttendeeNotFound
		}
		return fmt.Errorf("failed to delete attendee %s: %w", id, err)
	}
	return nil
}
