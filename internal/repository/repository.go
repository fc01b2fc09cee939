// Package repository declares the storage interfaces consumed by the service
// layer. The sqlite subpackage provides the concrete implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/citewall/internal/model"
)

// ListOptions controls LIMIT/OFFSET pagination on list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// SearchField selects which column a citation search matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
)

// CitationRepository persists citations and their engagement rows.
//
// GetByID, List, Search, and Random return citations with Likes and Favs
// populated. DeleteCascade performs the scrub-then-delete sequence (likes,
// favorites, then the citation row) in a single transaction.
type CitationRepository interface {
	Create(ctx context.Context, c *model.Citation) error
	GetByID(ctx context.Context, id string) (*model.Citation, error)
	List(ctx context.Context, opts ListOptions) ([]model.Citation, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, field SearchField, value string) ([]model.Citation, error)
	Random(ctx context.Context, n int) ([]model.Citation, error)
	Update(ctx context.Context, c *model.Citation) error
	DeleteCascade(ctx context.Context, id string) error
	IDsByWriter(ctx context.Context, userID string) ([]string, error)
}

// EngagementRepository manages the like and favorite rows.
//
// AddLike and AddFavorite return apperror.ErrDuplicate when the user already
// has a row for the citation; the remove methods return apperror.ErrNotFound
// when there is nothing to remove. AddLike/RemoveLike refresh the citation's
// cached numberLike in the same transaction as the row change.
type EngagementRepository interface {
	AddLike(ctx context.Context, citationID string, e model.Engagement) error
	RemoveLike(ctx context.Context, citationID, userID string) error
	AddFavorite(ctx context.Context, citationID string, e model.Engagement) error
	RemoveFavorite(ctx context.Context, citationID, userID string) error
	LikedCitationIDs(ctx context.Context, userID string) ([]string, error)
	FavoriteCitationIDs(ctx context.Context, userID string) ([]string, error)
}

// UserRepository persists user accounts.
//
// UpsertDiscord inserts on first login and updates the profile snapshot on
// subsequent logins, keyed by the Discord ID. DeleteCascade removes the user
// together with their citations (full citation cascade each) and their
// like/favorite rows, in one transaction.
// Method names carry the User suffix because the sqlite implementation backs
// every repository interface with one struct; the unsuffixed names belong to
// CitationRepository.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	UpsertDiscordUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUserCascade(ctx context.Context, id string) error
}

// HumorRepository reads the static humor-category reference data.
type HumorRepository interface {
	ListHumors(ctx context.Context) ([]model.Humor, error)
	GetHumorByID(ctx context.Context, id string) (*model.Humor, error)
}
