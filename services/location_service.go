package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/repositories"
	"github.com/google/uuid"
)

type LocationService interface {
	CreateLocation(ctx context.Context, input LocationInput) (*models.Location, error)
	GetLocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	ListLocations(ctx context.Context, tournamentID uuid.UUID) ([]models.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, input RoomInput) (*models.Room, error)
	ListRooms(ctx context.Context, locationID uuid.UUID) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

type LocationInput struct {
	TournamentID uuid.UUID
	Name         string
	Address      *string
	Remarks      *string
}

type RoomInput struct {
	LocationID uuid.UUID
	Name       string
	Remarks    *string
}

type locationService struct {
	repo repositories.LocationRepository
}

func NewLocationService(repo repositories.LocationRepository) LocationService {
	return &locationService{repo: repo}
}

func (s *locationService) CreateLocation(ctx context.Context, input LocationInput) (*models.Location, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate location id: %w", err)
	}
	location := &models.Location{
		ID:           id,
		TournamentID: input.TournamentID,
		Name:         name,
		Address:      input.Address,
		Remarks:      input.Remarks,
	}

	if err := s.repo.Create(ctx, location); err != nil {
		if errors.Is(err, repositories.ErrLocationNameConflict) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

func (s *locationService) GetLocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to get location %s: %w", id, err)
	}
	rooms, err := s.repo.ListRoomsByLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	location.Rooms = rooms
	return location, nil
}

func (s *locationService) ListLocations(ctx context.Context, tournamentID uuid.UUID) ([]models.Location, error) {
	locations, err := s.repo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLocationNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("failed to delete location %s: %w", id, err)
	}
	return nil
}

func (s *locationService) CreateRoom(ctx context.Context, input RoomInput) (*models.Room, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.GetLocationByID(ctx, input.LocationID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room id: %w", err)
	}
	room := &models.Room{
		ID:         id,
		LocationID: input.LocationID,
		Name:       name,
		Remarks:    input.Remarks,
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrRoomNameConflict) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (s *locationService) ListRooms(ctx context.Context, locationID uuid.UUID) ([]models.Room, error) {
	rooms, err := s.repo.ListRoomsByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *locationService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	room, err := s.repo.GetRoomByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if room.IsOccupied {
		return fmt.Errorf("%w: room hosts a live debate", ErrConflict)
	}
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	return nil
}
