package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// Compile-time check that *DB implements repository.EngagementRepository.
var _ repository.EngagementRepository = (*DB)(nil)

// AddLike records a like and refreshes the citation's cached number_like in
// the same transaction, so number_like == len(likes) at every commit point.
//
// The duplicate check reads inside the transaction; with SQLite's
// single-writer serialization two racing likes from the same user cannot both
// pass it. Returns apperror.ErrDuplicate when the user already liked the
// citation.
func (db *DB) AddLike(ctx context.Context, citationID string, e model.Engagement) error {
	return db.addEngagement(ctx, "citation_likes", citationID, e, "already liked", true)
}

// RemoveLike removes a like matched by userId equality and refreshes
// number_like transactionally. Returns apperror.ErrNotFound when the user has
// no like on the citation.
func (db *DB) RemoveLike(ctx context.Context, citationID, userID string) error {
	return db.removeEngagement(ctx, "citation_likes", citationID, userID, "like", true)
}

// AddFavorite records a favorite. No counter is cached for favorites —
// callers derive the count from len(favs).
func (db *DB) AddFavorite(ctx context.Context, citationID string, e model.Engagement) error {
	return db.addEngagement(ctx, "citation_favorites", citationID, e, "already favorited", false)
}

// RemoveFavorite removes a favorite matched by userId equality.
func (db *DB) RemoveFavorite(ctx context.Context, citationID, userID string) error {
	return db.removeEngagement(ctx, "citation_favorites", citationID, userID, "favorite", false)
}

// LikedCitationIDs returns the user's allLiked list, oldest engagement first.
func (db *DB) LikedCitationIDs(ctx context.Context, userID string) ([]string, error) {
	return db.engagedCitationIDs(ctx, "citation_likes", userID)
}

// FavoriteCitationIDs returns the user's allFavorite list.
func (db *DB) FavoriteCitationIDs(ctx context.Context, userID string) ([]string, error) {
	return db.engagedCitationIDs(ctx, "citation_favorites", userID)
}

func (db *DB) addEngagement(ctx context.Context, table, citationID string, e model.Engagement, dupMessage string, counted bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning engagement transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM citations WHERE id = ?`, citationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking citation %s: %w", citationID, err)
	}
	if exists == 0 {
		return apperror.NotFound("citation", citationID)
	}

	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE citation_id = ? AND user_id = ?`,
		citationID, e.UserID,
	).Scan(&dup)
	if err != nil {
		return fmt.Errorf("sqlite: checking existing engagement: %w", err)
	}
	if dup > 0 {
		return apperror.Duplicate(dupMessage)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+table+` (citation_id, user_id, user_name, created_at) VALUES (?, ?, ?, ?)`,
		citationID, e.UserID, e.UserName, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting engagement: %w", err)
	}

	if counted {
		if err := refreshNumberLike(ctx, tx, citationID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing engagement: %w", err)
	}
	return nil
}

func (db *DB) removeEngagement(ctx context.Context, table, citationID, userID, kind string, counted bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning engagement transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE citation_id = ? AND user_id = ?`,
		citationID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing engagement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(kind, citationID)
	}

	if counted {
		if err := refreshNumberLike(ctx, tx, citationID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing engagement removal: %w", err)
	}
	return nil
}

// refreshNumberLike re-derives the cached counter from the like rows, inside
// the caller's transaction.
func refreshNumberLike(ctx context.Context, tx *sql.Tx, citationID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE citations
		 SET number_like = (SELECT COUNT(*) FROM citation_likes WHERE citation_id = ?)
		 WHERE id = ?`,
		citationID, citationID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: refreshing number_like for %s: %w", citationID, err)
	}
	return nil
}

func (db *DB) engagedCitationIDs(ctx context.Context, table, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT citation_id FROM `+table+` WHERE user_id = ? ORDER BY created_at, citation_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s for user %s: %w", table, userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", table, err)
	}
	return ids, nil
}
