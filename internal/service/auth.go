package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/auth"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// AuthService orchestrates login and registration. It sits between the HTTP
// handlers and the user repository / token utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// Two identity paths share it: Discord OAuth (the primary one) and local
// email/password accounts.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterDiscord handles the Discord OAuth callback: upsert the
// account keyed by the Discord ID (insert on first login, refresh the
// pseudo/avatar snapshot afterwards), then issue a session token carrying
// {id, pseudo, role}.
func (s *AuthService) LoginOrRegisterDiscord(ctx context.Context, du *auth.DiscordUser) (*AuthResult, error) {
	if du == nil {
		return nil, fmt.Errorf("service/auth: Discord user must not be nil")
	}

	user := &model.User{
		DiscordID: du.ID,
		Pseudo:    du.Username,
		Email:     du.Email,
		AvatarURL: du.AvatarURL(),
	}

	if err := s.users.UpsertDiscordUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (discordID=%s): %w", du.ID, err)
	}

	s.logger.Info("user authenticated via Discord",
		slog.String("userID", user.ID),
		slog.String("pseudo", user.Pseudo),
	)

	return s.issue(user)
}

// RegisterPassword creates a local email/password account and logs it in.
func (s *AuthService) RegisterPassword(ctx context.Context, pseudo, email, password string) (*AuthResult, error) {
	pseudo = strings.TrimSpace(pseudo)
	email = strings.ToLower(strings.TrimSpace(email))

	if pseudo == "" {
		return nil, apperror.ValidationFailed("pseudo", "pseudo is required")
	}
	if len(pseudo) > MaxPseudoLength {
		return nil, apperror.ValidationFailed("pseudo",
			fmt.Sprintf("pseudo must be %d characters or less", MaxPseudoLength))
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user", email)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Pseudo:       pseudo,
		Email:        email,
		Role:         model.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("pseudo", user.Pseudo),
	)

	return s.issue(user)
}

// LoginPassword authenticates a local account. Unknown email and wrong
// password both map to the same Unauthorized error, so the response doesn't
// reveal which one failed.
func (s *AuthService) LoginPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil || user.PasswordHash == "" || !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("pseudo", user.Pseudo),
	)

	return s.issue(user)
}

// GetUserByID returns the account behind a validated token's subject. Used
// by the /api/me handler.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(model.Actor{
		ID:     user.ID,
		Pseudo: user.Pseudo,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
