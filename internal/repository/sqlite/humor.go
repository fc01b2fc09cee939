package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

var _ repository.HumorRepository = (*DB)(nil)

// List returns all humor categories, alphabetically.
func (db *DB) ListHumors(ctx context.Context) ([]model.Humor, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM humors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing humors: %w", err)
	}
	defer rows.Close()

	humors := []model.Humor{}
	for rows.Next() {
		var h model.Humor
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning humor row: %w", err)
		}
		humors = append(humors, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating humors: %w", err)
	}
	return humors, nil
}

// GetHumorByID retrieves one humor category.
func (db *DB) GetHumorByID(ctx context.Context, id string) (*model.Humor, error) {
	var h model.Humor
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM humors WHERE id = ?`, id).Scan(&h.ID, &h.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("humor", id)
		}
		return nil, fmt.Errorf("sqlite: getting humor %s: %w", id, err)
	}
	return &h, nil
}
