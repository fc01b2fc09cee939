package model

import "time"

// Roles understood by the authorization middleware. The values match the
// token claims issued at login, so renaming them invalidates outstanding
// sessions.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents a registered account.
//
// We use Discord OAuth as the primary identity provider, so the external
// identifier is the Discord user ID (a snowflake, kept as a string). We still
// generate our own internal xid for consistency with Citation and to avoid
// tying primary keys to a third party's numbering scheme. Accounts created
// through email/password registration have an empty DiscordID and a non-empty
// PasswordHash instead.
//
// PasswordHash is tagged `json:"-"` — it must never appear in a response body.
type User struct {
	ID           string    `json:"id"`
	DiscordID    string    `json:"discordId,omitempty"` // Discord snowflake; empty for password accounts
	Pseudo       string    `json:"pseudo"`              // display name shown on citations
	Email        string    `json:"email,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is a User plus the three derived reference lists. The lists are
// computed from the engagement and citation rows at read time — they are the
// same rows a citation's likes/favs are read from, which is what keeps the
// two sides consistent.
type Profile struct {
	User
	AllCitations []string `json:"allCitations"`
	AllLiked     []string `json:"allLiked"`
	AllFavorite  []string `json:"allFavorite"`
}

// Actor is the authenticated identity acting on a request, extracted from the
// JWT by the auth middleware and threaded explicitly into every service call.
// Services never read identity out of a context.
type Actor struct {
	ID     string
	Pseudo string
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
