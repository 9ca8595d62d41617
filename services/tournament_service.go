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

type TournamentService interface {
	CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, input TournamentInput) (*models.Tournament, error)
	UploadCrest(ctx context.Context, id uuid.UUID, contentType string, file io.Reader) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
}

// TournamentInput carries the editable fields. Times are in seconds,
// slots in minutes, matching how staff configure debates.
type TournamentInput struct {
	FullName              string
	ShortenedName         string
	SpeechTime            int
	StartProtectedTime    int
	EndProtectedTime      int
	AdVocemTime           int
	DebateTimeSlot        int
	DebatePreparationTime int
}

type tournamentService struct {
	repo     repositories.TournamentRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTournamentService(repo repositories.TournamentRepository, uploader storage.FileUploader, logger *slog.Logger) TournamentService {
	return &tournamentService{repo: repo, uploader: uploader, logger: logger}
}

func (s *tournamentService) validateInput(input *TournamentInput) error {
	input.FullName = strings.TrimSpace(input.FullName)
	input.ShortenedName = strings.TrimSpace(input.ShortenedName)
	if input.FullName == "" {
		return ErrNameRequired
	}
	if input.SpeechTime <= 0 || input.DebateTimeSlot <= 0 || input.DebatePreparationTime <= 0 {
		return ErrInvalidTiming
	}
	if input.StartProtectedTime < 0 || input.EndProtectedTime < 0 || input.AdVocemTime < 0 {
		return ErrInvalidTiming
	}
	if input.StartProtectedTime+input.EndProtectedTime > input.SpeechTime {
		return fmt.Errorf("%w: protected time exceeds speech time", ErrValidation)
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tournament id: %w", err)
	}
	tournament := &models.Tournament{
		ID:                    id,
		FullName:              input.FullName,
		ShortenedName:         input.ShortenedName,
		SpeechTime:            input.SpeechTime,
		StartProtectedTime:    input.StartProtectedTime,
		EndProtectedTime:      input.EndProtectedTime,
		AdVocemTime:           input.AdVocemTime,
		DebateTimeSlot:        input.DebateTimeSlot,
		DebatePreparationTime: input.DebatePreparationTime,
	}

	if err := s.repo.Create(ctx, nil, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	tournament, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	populateTournamentCrestURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		populateTournamentCrestURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, input TournamentInput) (*models.Tournament, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tournament.FullName = input.FullName
	tournament.ShortenedName = input.ShortenedName
	tournament.SpeechTime = input.SpeechTime
	tournament.StartProtectedTime = input.StartProtectedTime
	tournament.EndProtectedTime = input.EndProtectedTime
	tournament.AdVocemTime = input.AdVocemTime
	tournament.DebateTimeSlot = input.DebateTimeSlot
	tournament.DebatePreparationTime = input.DebatePreparationTime

	if err := s.repo.Update(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) UploadCrest(ctx context.Context, id uuid.UUID, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := getExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	key := fmt.Sprintf("tournaments/%s/crest%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament crest: %w", err)
	}

	oldKey := tournament.CrestKey
	if err := s.repo.UpdateCrestKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store crest key: %w", err)
	}
	if oldKey != nil && *oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous crest",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	tournament.CrestKey = &result.Key
	tournament.CrestURL = &result.Location
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	if tournament.CrestKey != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.CrestKey); delErr != nil {
			s.logger.Warn("failed to delete crest of removed tournament",
				slog.String("key", *tournament.CrestKey), slog.Any("error", delErr))
		}
	}
	return nil
}
