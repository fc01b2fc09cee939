// Package service contains the business logic layer: validation, ownership
// rules, and the cross-entity consistency rules for citations and their
// engagements. Services accept plain values plus an explicit model.Actor and
// return apperror values; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// Validation limits for citation fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	DefaultPageSize      = 10
	MaxPageSize          = 100
	DefaultRandomCount   = 10
)

// CitationService handles citation CRUD, pagination, search, and random
// sampling, and owns the delete cascade.
type CitationService struct {
	citations repository.CitationRepository
	humors    repository.HumorRepository
	logger    *slog.Logger
}

// NewCitationService creates a CitationService.
func NewCitationService(
	citations repository.CitationRepository,
	humors repository.HumorRepository,
	logger *slog.Logger,
) *CitationService {
	return &CitationService{
		citations: citations,
		humors:    humors,
		logger:    logger,
	}
}

// Create validates the input and persists a new citation stamped with the
// actor's id and pseudo. Title and description are required; a non-empty
// humor id must reference a known category.
func (s *CitationService) Create(ctx context.Context, actor model.Actor, in model.CitationInput) (*model.Citation, error) {
	c, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}
	c.WriterID = actor.ID
	c.WriterName = actor.Pseudo

	if err := s.citations.Create(ctx, c); err != nil {
		s.logger.Error("failed to create citation",
			slog.String("writerID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating citation: %w", err)
	}

	s.logger.Info("citation created",
		slog.String("id", c.ID),
		slog.String("writerID", c.WriterID),
	)
	return c, nil
}

// GetByID retrieves a citation with its likes and favs.
func (s *CitationService) GetByID(ctx context.Context, id string) (*model.Citation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "citation ID is required")
	}
	return s.citations.GetByID(ctx, id)
}

// List returns one page of citations, newest first, wrapped in the
// pagination envelope. Page numbers start at 1; pageSize is clamped to
// [1, MaxPageSize] with DefaultPageSize when unspecified.
func (s *CitationService) List(ctx context.Context, page, pageSize int) (*model.CitationPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.citations.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count citations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("counting citations: %w", err)
	}

	citations, err := s.citations.List(ctx, repository.ListOptions{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		s.logger.Error("failed to list citations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing citations: %w", err)
	}

	return &model.CitationPage{
		TotalPages:     (total + pageSize - 1) / pageSize,
		CurrentPage:    page,
		PageSize:       pageSize,
		TotalCitations: total,
		Citations:      citations,
	}, nil
}

// Search matches citations by case-insensitive substring on the title or the
// author name. An empty value returns a validation error rather than the
// whole table.
func (s *CitationService) Search(ctx context.Context, filter, value string) ([]model.Citation, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperror.ValidationFailed("value", "search value is required")
	}

	var field repository.SearchField
	switch filter {
	case "title", "":
		field = repository.SearchByTitle
	case "author":
		field = repository.SearchByAuthor
	default:
		return nil, apperror.ValidationFailed("filter", "filter must be \"title\" or \"author\"")
	}

	citations, err := s.citations.Search(ctx, field, value)
	if err != nil {
		s.logger.Error("failed to search citations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching citations: %w", err)
	}
	return citations, nil
}

// Random samples up to count citations uniformly. count defaults to
// DefaultRandomCount and is clamped to MaxPageSize.
func (s *CitationService) Random(ctx context.Context, count int) ([]model.Citation, error) {
	if count <= 0 {
		count = DefaultRandomCount
	}
	if count > MaxPageSize {
		count = MaxPageSize
	}

	citations, err := s.citations.Random(ctx, count)
	if err != nil {
		s.logger.Error("failed to sample citations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("sampling citations: %w", err)
	}
	return citations, nil
}

// Update modifies a citation's title, description, or humor category. Only
// the author may update; writer identity and creationDate are immutable.
// Empty title/humor mean "unchanged"; an empty description is rejected since
// a citation without text is meaningless.
func (s *CitationService) Update(ctx context.Context, actor model.Actor, id string, in model.CitationInput) (*model.Citation, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.WriterID != actor.ID {
		return nil, apperror.Forbidden("only the author may update this citation")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		c.Title = title
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		if len(desc) > MaxDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
		}
		c.Description = desc
	}
	if in.HumorID != "" {
		if _, err := s.humors.GetHumorByID(ctx, in.HumorID); err != nil {
			return nil, apperror.ValidationFailed("humorId", "unknown humor category")
		}
		c.HumorID = in.HumorID
	}

	if err := s.citations.Update(ctx, c); err != nil {
		s.logger.Error("failed to update citation",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating citation: %w", err)
	}

	s.logger.Info("citation updated", slog.String("id", c.ID))
	return c, nil
}

// Delete removes a citation and every reference to it. Only the author may
// delete. The repository runs the scrub-then-delete cascade in one
// transaction: like rows, favorite rows, then the citation record, so no
// user is ever left pointing at a vanished citation.
func (s *CitationService) Delete(ctx context.Context, actor model.Actor, id string) error {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.WriterID != actor.ID {
		return apperror.Forbidden("only the author may delete this citation")
	}

	if err := s.citations.DeleteCascade(ctx, id); err != nil {
		s.logger.Error("failed to delete citation",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting citation: %w", err)
	}

	s.logger.Info("citation deleted",
		slog.String("id", id),
		slog.String("writerID", actor.ID),
	)
	return nil
}

// validateInput checks the create-path requirements and builds the model.
func (s *CitationService) validateInput(ctx context.Context, in model.CitationInput) (*model.Citation, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if in.HumorID != "" {
		if _, err := s.humors.GetHumorByID(ctx, in.HumorID); err != nil {
			return nil, apperror.ValidationFailed("humorId", "unknown humor category")
		}
	}

	return &model.Citation{
		Title:       title,
		Description: description,
		HumorID:     in.HumorID,
	}, nil
}
