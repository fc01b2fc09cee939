package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// HumorService reads the humor category catalog. Categories are seeded at
// startup and never mutated through the API.
type HumorService struct {
	humors repository.HumorRepository
}

// NewHumorService creates a HumorService.
func NewHumorService(humors repository.HumorRepository) *HumorService {
	return &HumorService{humors: humors}
}

// List returns every humor category, sorted by name.
func (s *HumorService) List(ctx context.Context) ([]model.Humor, error) {
	humors, err := s.humors.ListHumors(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing humors: %w", err)
	}
	return humors, nil
}

// GetByID returns one humor category.
func (s *HumorService) GetByID(ctx context.Context, id string) (*model.Humor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "humor ID is required")
	}
	return s.humors.GetHumorByID(ctx, id)
}
