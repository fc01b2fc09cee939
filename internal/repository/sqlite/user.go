package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, discord_id, pseudo, email, avatar_url, role, password_hash, created_at, updated_at`

// CreateUser inserts a new user. If the caller supplied an ID (the admin API
// allows it) it is kept; otherwise an xid is generated. A duplicate ID
// surfaces as apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	var exists int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, u.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking user %s: %w", u.ID, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", u.ID)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, discord_id, pseudo, email, avatar_url, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.DiscordID,
		u.Pseudo,
		u.Email,
		u.AvatarURL,
		u.Role,
		u.PasswordHash,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", u.ID, err)
	}
	return nil
}

// UpsertDiscordUser inserts the user on first Discord login and refreshes the
// pseudo/avatar snapshot on subsequent logins, keyed by the Discord ID. The
// internal ID is preserved across logins.
func (db *DB) UpsertDiscordUser(ctx context.Context, u *model.User) error {
	if u.DiscordID == "" {
		return fmt.Errorf("sqlite: upserting user without discord id")
	}

	var existingID, existingRole string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, role FROM users WHERE discord_id = ?`, u.DiscordID,
	).Scan(&existingID, &existingRole)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by discord_id %s: %w", u.DiscordID, err)
	}

	if existingID != "" {
		// Known account — refresh the profile snapshot, keep id and role.
		u.ID = existingID
		u.Role = existingRole
		u.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET pseudo = ?, email = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			u.Pseudo,
			u.Email,
			u.AvatarURL,
			u.UpdatedAt,
			u.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
		}
		return nil
	}

	u.ID = ""
	return db.CreateUser(ctx, u)
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id, id)
}

// GetUserByEmail retrieves a user by email, for password login.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email, email)
}

func (db *DB) getUser(ctx context.Context, query, arg, label string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.DiscordID,
		&u.Pseudo,
		&u.Email,
		&u.AvatarURL,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", label, err)
	}
	return &u, nil
}

// ListUsers returns every user, oldest account first. Admin-only surface, so no
// pagination here.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.DiscordID, &u.Pseudo, &u.Email, &u.AvatarURL,
			&u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser persists the mutable account fields. When the pseudo changes, the
// denormalized writer_name and user_name snapshots are refreshed in the same
// transaction so reads stay consistent with the account.
func (db *DB) UpdateUser(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET pseudo = ?, email = ?, avatar_url = ?, role = ?, updated_at = ?
		 WHERE id = ?`,
		u.Pseudo,
		u.Email,
		u.AvatarURL,
		u.Role,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", u.ID)
	}

	for _, stmt := range []string{
		`UPDATE citations SET writer_name = ? WHERE writer_id = ?`,
		`UPDATE citation_likes SET user_name = ? WHERE user_id = ?`,
		`UPDATE citation_favorites SET user_name = ? WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, u.Pseudo, u.ID); err != nil {
			return fmt.Errorf("sqlite: refreshing name snapshots for user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user update: %w", err)
	}
	return nil
}

// DeleteUserCascade removes a user and everything that references them, in one
// transaction:
//
//  1. the user's own citations, each with the full citation cascade
//     (their like/favorite rows first, then the citation row);
//  2. the user's likes on other citations, decrementing those citations'
//     cached number_like;
//  3. the user's favorite rows;
//  4. the user record itself.
func (db *DB) DeleteUserCascade(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user delete: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: checking user %s: %w", id, err)
	}
	if exists == 0 {
		return apperror.NotFound("user", id)
	}

	// 1. Authored citations and all engagements attached to them.
	for _, stmt := range []string{
		`DELETE FROM citation_likes WHERE citation_id IN (SELECT id FROM citations WHERE writer_id = ?)`,
		`DELETE FROM citation_favorites WHERE citation_id IN (SELECT id FROM citations WHERE writer_id = ?)`,
		`DELETE FROM citations WHERE writer_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("sqlite: cascading authored citations for user %s: %w", id, err)
		}
	}

	// 2. Likes placed by the user on surviving citations. The counter
	// adjustment runs before the rows disappear.
	if _, err := tx.ExecContext(ctx,
		`UPDATE citations SET number_like = number_like - 1
		 WHERE id IN (SELECT citation_id FROM citation_likes WHERE user_id = ?)`,
		id,
	); err != nil {
		return fmt.Errorf("sqlite: adjusting like counters for user %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM citation_likes WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: removing likes by user %s: %w", id, err)
	}

	// 3. Favorites placed by the user.
	if _, err := tx.ExecContext(ctx, `DELETE FROM citation_favorites WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: removing favorites by user %s: %w", id, err)
	}

	// 4. The account.
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user delete: %w", err)
	}
	return nil
}
