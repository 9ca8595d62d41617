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

type MotionService interface {
	CreateMotion(ctx context.Context, input MotionInput) (*models.Motion, error)
	GetMotionByID(ctx context.Context, id uuid.UUID) (*models.Motion, error)
	ListMotions(ctx context.Context) ([]models.Motion, error)
	UpdateMotion(ctx context.Context, id uuid.UUID, input MotionInput) (*models.Motion, error)
	DeleteMotion(ctx context.Context, id uuid.UUID) error
}

type MotionInput struct {
	Motion string
	AdInfo *string
}

type motionService struct {
	repo repositories.MotionRepository
}

func NewMotionService(repo repositories.MotionRepository) MotionService {
	return &motionService{repo: repo}
}

func (s *motionService) CreateMotion(ctx context.Context, input MotionInput) (*models.Motion, error) {
	text := strings.TrimSpace(input.Motion)
	if text == "" {
		return nil, fmt.Errorf("%w: motion text is required", ErrValidation)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate motion id: %w", err)
	}
	motion := &models.Motion{ID: id, Motion: text, AdInfo: input.AdInfo}

	if err := s.repo.Create(ctx, motion); err != nil {
		if errors.Is(err, repositories.ErrMotionTextConflict) {
			return nil, fmt.Errorf("%w: motion text already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create motion: %w", err)
	}
	return motion, nil
}

func (s *motionService) GetMotionByID(ctx context.Context, id uuid.UUID) (*models.Motion, error) {
	motion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMotionNotFound) {
			return nil, ErrMotionNotFound
		}
		return nil, fmt.Errorf("failed to get motion %s: %w", id, err)
	}
	return motion, nil
}

func (s *motionService) ListMotions(ctx context.Context) ([]models.Motion, error) {
	motions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list motions: %w", err)
	}
	return motions, nil
}

func (s *motionService) UpdateMotion(ctx context.Context, id uuid.UUID, input MotionInput) (*models.Motion, error) {
	text := strings.TrimSpace(input.Motion)
	if text == "" {
		return nil, fmt.Errorf("%w: motion text is required", ErrValidation)
	}

	motion := &models.Motion{ID: id, Motion: text, AdInfo: input.AdInfo}
	if err := s.repo.Update(ctx, motion); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMotionNotFound):
			return nil, ErrMotionNotFound
		case errors.Is(err, repositories.ErrMotionTextConflict):
			return nil, fmt.Errorf("%w: motion text already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update motion %s: %w", id, err)
	}
	return motion, nil
}

func (s *motionService) DeleteMotion(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMotionNotFound) {
			return ErrMotionNotFound
		}
		return fmt.Errorf("failed to delete motion %s: %w", id, err)
	}
	return nil
}
