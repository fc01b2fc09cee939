package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// Compile-time check that *DB implements repository.CitationRepository.
var _ repository.CitationRepository = (*DB)(nil)

const citationColumns = `id, title, description, humor_id, writer_id, writer_name, number_like, created_at, updated_at`

// Create inserts a new citation. The ID and timestamps are generated here;
// the caller's struct is updated in place.
func (db *DB) Create(ctx context.Context, c *model.Citation) error {
	c.ID = xid.New().String()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO citations (id, title, description, humor_id, writer_id, writer_name, number_like, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		c.ID,
		c.Title,
		c.Description,
		c.HumorID,
		c.WriterID,
		c.WriterName,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating citation: %w", err)
	}

	c.NumberLike = 0
	c.Likes = []model.Engagement{}
	c.Favs = []model.Engagement{}
	return nil
}

// GetByID retrieves a single citation with its likes and favs populated.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Citation, error) {
	var c model.Citation
	var humorID sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+citationColumns+` FROM citations WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&humorID,
		&c.WriterID,
		&c.WriterName,
		&c.NumberLike,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("citation", id)
		}
		return nil, fmt.Errorf("sqlite: getting citation %s: %w", id, err)
	}
	c.HumorID = humorID.String

	citations := []model.Citation{c}
	if err := db.attachEngagements(ctx, citations); err != nil {
		return nil, err
	}
	return &citations[0], nil
}

// List retrieves citations newest-first with LIMIT/OFFSET pagination,
// engagements included.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Citation, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	return db.queryCitations(ctx,
		`SELECT `+citationColumns+` FROM citations
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

// Count returns the total number of citations, for pagination envelopes.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM citations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting citations: %w", err)
	}
	return n, nil
}

// Search matches citations by case-insensitive substring on the title or the
// denormalized writer name, newest first. An unknown field matches nothing;
// the service validates the field before calling.
func (db *DB) Search(ctx context.Context, field repository.SearchField, value string) ([]model.Citation, error) {
	var column string
	switch field {
	case repository.SearchByTitle:
		column = "title"
	case repository.SearchByAuthor:
		column = "writer_name"
	default:
		return []model.Citation{}, nil
	}

	// The column name comes from the switch above, never from the caller —
	// only the value is a bound parameter.
	return db.queryCitations(ctx,
		`SELECT `+citationColumns+` FROM citations
		 WHERE `+column+` LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY created_at DESC, id DESC`,
		value,
	)
}

// Random samples up to n citations uniformly.
func (db *DB) Random(ctx context.Context, n int) ([]model.Citation, error) {
	if n <= 0 {
		n = 10
	}
	if n > 100 {
		n = 100
	}
	return db.queryCitations(ctx,
		`SELECT `+citationColumns+` FROM citations ORDER BY RANDOM() LIMIT ?`, n,
	)
}

// Update persists the mutable fields of a citation. Identity, writer, and
// created_at are immutable; number_like is owned by the engagement methods.
func (db *DB) Update(ctx context.Context, c *model.Citation) error {
	c.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE citations SET title = ?, description = ?, humor_id = ?, updated_at = ?
		 WHERE id = ?`,
		c.Title,
		c.Description,
		c.HumorID,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating citation %s: %w", c.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("citation", c.ID)
	}
	return nil
}

// DeleteCascade removes a citation and every reference to it: the scrub of
// the like and favorite rows happens before the citation row disappears, and
// the whole sequence is one transaction so a failure mid-cascade rolls back
// rather than leaving users pointing at a vanished citation.
func (db *DB) DeleteCascade(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM citations WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking citation %s: %w", id, err)
	}
	if exists == 0 {
		return apperror.NotFound("citation", id)
	}

	// Phase 1: scrub inbound references.
	if _, err := tx.ExecContext(ctx, `DELETE FROM citation_likes WHERE citation_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: scrubbing likes for citation %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM citation_favorites WHERE citation_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: scrubbing favorites for citation %s: %w", id, err)
	}

	// Phase 2: the record itself.
	if _, err := tx.ExecContext(ctx, `DELETE FROM citations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting citation %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing citation delete: %w", err)
	}
	return nil
}

// IDsByWriter returns the ids of the citations authored by a user, oldest
// first — the author's allCitations list.
func (db *DB) IDsByWriter(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM citations WHERE writer_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing citations for writer %s: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning citation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating citation ids: %w", err)
	}
	return ids, nil
}

// queryCitations runs a SELECT over citationColumns, scans the rows, and
// attaches engagements in one batched follow-up query per table.
func (db *DB) queryCitations(ctx context.Context, query string, args ...any) ([]model.Citation, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying citations: %w", err)
	}
	defer rows.Close()

	citations := []model.Citation{}
	for rows.Next() {
		var c model.Citation
		var humorID sql.NullString
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &humorID,
			&c.WriterID, &c.WriterName, &c.NumberLike,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning citation row: %w", err)
		}
		c.HumorID = humorID.String
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating citations: %w", err)
	}

	if err := db.attachEngagements(ctx, citations); err != nil {
		return nil, err
	}
	return citations, nil
}

// attachEngagements populates Likes and Favs for the given citations with a
// single IN query per engagement table, avoiding an N+1 per citation.
func (db *DB) attachEngagements(ctx context.Context, citations []model.Citation) error {
	for i := range citations {
		citations[i].Likes = []model.Engagement{}
		citations[i].Favs = []model.Engagement{}
	}
	if len(citations) == 0 {
		return nil
	}

	index := make(map[string]int, len(citations))
	placeholders := make([]string, len(citations))
	args := make([]any, len(citations))
	for i, c := range citations {
		index[c.ID] = i
		placeholders[i] = "?"
		args[i] = c.ID
	}
	in := strings.Join(placeholders, ", ")

	load := func(table string, assign func(i int, e model.Engagement)) error {
		rows, err := db.conn.QueryContext(ctx,
			`SELECT citation_id, user_id, user_name, created_at
			 FROM `+table+`
			 WHERE citation_id IN (`+in+`)
			 ORDER BY created_at, user_id`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("sqlite: loading %s: %w", table, err)
		}
		defer rows.Close()

		for rows.Next() {
			var citationID string
			var e model.Engagement
			if err := rows.Scan(&citationID, &e.UserID, &e.UserName, &e.CreatedAt); err != nil {
				return fmt.Errorf("sqlite: scanning %s row: %w", table, err)
			}
			if i, ok := index[citationID]; ok {
				assign(i, e)
			}
		}
		return rows.Err()
	}

	if err := load("citation_likes", func(i int, e model.Engagement) {
		citations[i].Likes = append(citations[i].Likes, e)
	}); err != nil {
		return err
	}
	return load("citation_favorites", func(i int, e model.Engagement) {
		citations[i].Favs = append(citations[i].Favs, e)
	})
}
