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

// EngagementService keeps the two sides of the like and favorite
// relationships consistent: the rows hanging off a citation and the lists a
// user sees are the same rows, and the citation's cached numberLike is
// refreshed in the same transaction as every like mutation.
//
// Liking twice is rejected with a DuplicateError rather than treated as a
// no-op, matching the public API contract.
type EngagementService struct {
	citations   repository.CitationRepository
	engagements repository.EngagementRepository
	logger      *slog.Logger
}

// NewEngagementService creates an EngagementService.
func NewEngagementService(
	citations repository.CitationRepository,
	engagements repository.EngagementRepository,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{
		citations:   citations,
		engagements: engagements,
		logger:      logger,
	}
}

// Like records that the actor likes the citation and returns the refreshed
// citation. Fails with NotFound when the citation does not exist and
// Duplicate when the actor already liked it.
func (s *EngagementService) Like(ctx context.Context, actor model.Actor, citationID string) (*model.Citation, error) {
	return s.add(ctx, actor, citationID, "like", s.engagements.AddLike)
}

// Unlike removes the actor's like, matched by userId equality, and returns
// the refreshed citation. Fails with NotFound when the actor has no like on
// the citation.
func (s *EngagementService) Unlike(ctx context.Context, actor model.Actor, citationID string) (*model.Citation, error) {
	return s.remove(ctx, actor, citationID, "unlike", s.engagements.RemoveLike)
}

// Favorite records a favorite; identical contract to Like, without a cached
// counter.
func (s *EngagementService) Favorite(ctx context.Context, actor model.Actor, citationID string) (*model.Citation, error) {
	return s.add(ctx, actor, citationID, "favorite", s.engagements.AddFavorite)
}

// Unfavorite removes the actor's favorite; identical contract to Unlike.
func (s *EngagementService) Unfavorite(ctx context.Context, actor model.Actor, citationID string) (*model.Citation, error) {
	return s.remove(ctx, actor, citationID, "unfavorite", s.engagements.RemoveFavorite)
}

func (s *EngagementService) add(
	ctx context.Context,
	actor model.Actor,
	citationID, op string,
	apply func(ctx context.Context, citationID string, e model.Engagement) error,
) (*model.Citation, error) {
	citationID = strings.TrimSpace(citationID)
	if citationID == "" {
		return nil, apperror.ValidationFailed("id", "citation ID is required")
	}

	err := apply(ctx, citationID, model.Engagement{
		UserID:   actor.ID,
		UserName: actor.Pseudo,
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("engagement failed",
			slog.String("op", op),
			slog.String("citationID", citationID),
			slog.String("userID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s citation: %w", op, err)
	}

	s.logger.Info("engagement recorded",
		slog.String("op", op),
		slog.String("citationID", citationID),
		slog.String("userID", actor.ID),
	)
	return s.citations.GetByID(ctx, citationID)
}

func (s *EngagementService) remove(
	ctx context.Context,
	actor model.Actor,
	citationID, op string,
	apply func(ctx context.Context, citationID, userID string) error,
) (*model.Citation, error) {
	citationID = strings.TrimSpace(citationID)
	if citationID == "" {
		return nil, apperror.ValidationFailed("id", "citation ID is required")
	}

	if err := apply(ctx, citationID, actor.ID); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("engagement removal failed",
			slog.String("op", op),
			slog.String("citationID", citationID),
			slog.String("userID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s citation: %w", op, err)
	}

	s.logger.Info("engagement removed",
		slog.String("op", op),
		slog.String("citationID", citationID),
		slog.String("userID", actor.ID),
	)
	return s.citations.GetByID(ctx, citationID)
}
