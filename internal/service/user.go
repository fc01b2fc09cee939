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

const MaxPseudoLength = 50

// UserService handles profile reads and the administrative user management
// surface. Role checks live in the middleware; this service assumes the
// actor was already authorized for admin operations.
type UserService struct {
	users       repository.UserRepository
	citations   repository.CitationRepository
	engagements repository.EngagementRepository
	logger      *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	citations repository.CitationRepository,
	engagements repository.EngagementRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:       users,
		citations:   citations,
		engagements: engagements,
		logger:      logger,
	}
}

// Profile assembles a user's record together with the three derived lists:
// allCitations (authored), allLiked, and allFavorite. The lists are read
// from the citation and engagement rows, so they can never disagree with the
// citations' own likes/favs.
func (s *UserService) Profile(ctx context.Context, id string) (*model.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	authored, err := s.citations.IDsByWriter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading authored citations: %w", err)
	}
	liked, err := s.engagements.LikedCitationIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading liked citations: %w", err)
	}
	favorite, err := s.engagements.FavoriteCitationIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading favorite citations: %w", err)
	}

	return &model.Profile{
		User:         *u,
		AllCitations: authored,
		AllLiked:     liked,
		AllFavorite:  favorite,
	}, nil
}

// List returns all users. Admin surface.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Create registers a user from the admin API. Pseudo is required; the role
// defaults to ROLE_USER. A caller-supplied id that already exists surfaces
// as a Conflict.
func (s *UserService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	u.Pseudo = strings.TrimSpace(u.Pseudo)
	if u.Pseudo == "" {
		return nil, apperror.ValidationFailed("pseudo", "pseudo is required")
	}
	if len(u.Pseudo) > MaxPseudoLength {
		return nil, apperror.ValidationFailed("pseudo",
			fmt.Sprintf("pseudo must be %d characters or less", MaxPseudoLength))
	}
	if u.Role != "" && u.Role != model.RoleUser && u.Role != model.RoleAdmin {
		return nil, apperror.ValidationFailed("role", "unknown role")
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", u.ID),
		slog.String("pseudo", u.Pseudo),
	)
	return u, nil
}

// Update modifies a user's pseudo, email, avatar, or role. Non-empty fields
// replace the stored values; the repository refreshes the denormalized name
// snapshots when the pseudo changes.
func (s *UserService) Update(ctx context.Context, id string, changes model.User) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	if pseudo := strings.TrimSpace(changes.Pseudo); pseudo != "" {
		if len(pseudo) > MaxPseudoLength {
			return nil, apperror.ValidationFailed("pseudo",
				fmt.Sprintf("pseudo must be %d characters or less", MaxPseudoLength))
		}
		u.Pseudo = pseudo
	}
	if changes.Email != "" {
		u.Email = changes.Email
	}
	if changes.AvatarURL != "" {
		u.AvatarURL = changes.AvatarURL
	}
	if changes.Role != "" {
		if changes.Role != model.RoleUser && changes.Role != model.RoleAdmin {
			return nil, apperror.ValidationFailed("role", "unknown role")
		}
		u.Role = changes.Role
	}

	if err := s.users.UpdateUser(ctx, u); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to update user",
			slog.String("id", u.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.String("id", u.ID))
	return u, nil
}

// Delete removes a user. The repository cascade removes the user's authored
// citations (scrubbing their engagements first), the user's own likes and
// favorites (adjusting the affected citations' counters), and finally the
// account — all in one transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.users.DeleteUserCascade(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Error("failed to delete user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}
