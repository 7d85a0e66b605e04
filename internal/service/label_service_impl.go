package service

import (
	"context"
	"strings"
	"time"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/repository"
	"github.com/google/uuid"
)

type labelService struct {
	labels repository.LabelRepo
}

func NewLabelService(labels repository.LabelRepo) LabelService {
	return &labelService{labels: labels}
}

func (s *labelService) CreateLabel(ctx context.Context, actorID, name, color string) (*domain.Label, error) {
	name, color, err := normalizeLabelInput(name, color)
	if err != nil {
		return nil, err
	}
	label := &domain.Label{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.labels.CreateLabel(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *labelService) ListLabels(ctx context.Context, actorID string) ([]*domain.Label, error) {
	return s.labels.ListLabelsByUser(ctx, actorID)
}

func (s *labelService) CreateTag(ctx context.Context, actorID, name, color string) (*domain.Tag, error) {
	name, color, err := normalizeLabelInput(name, color)
	if err != nil {
		return nil, err
	}
	tag := &domain.Tag{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.labels.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *labelService) ListTags(ctx context.Context, actorID string) ([]*domain.Tag, error) {
	return s.labels.ListTagsByUser(ctx, actorID)
}

func normalizeLabelInput(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", NewValidationError("name", "must not be empty")
	}
	if len(name) > 60 {
		return "", "", NewValidationError("name", "must be at most 60 characters")
	}
	if color == "" {
		color = "#6b7280"
	}
	return name, color, nil
}
