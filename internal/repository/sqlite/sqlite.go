// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite (a pure-Go translation of the SQLite sources)
// rather than the CGo driver, so the binary cross-compiles without a C
// toolchain. The database is a single file; tests use ":memory:".
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all of them keeps cross-entity transactions
// (the delete cascades) inside a single component.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, configures it, and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent readers while a write is in progress — one
	// request handler per HTTP request all share this pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the engagement tables
	// reference citations and users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is checkpointed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			discord_id    TEXT NOT NULL DEFAULT '',
			pseudo        TEXT NOT NULL,
			email         TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'ROLE_USER',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_discord_id
			ON users(discord_id) WHERE discord_id != '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email != '';
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS humors (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating humors table: %w", err)
	}

	// writer_name is a denormalized snapshot of the author's pseudo, and
	// number_like a cached count of the like rows. Both are maintained by
	// this package, never recomputed at read time.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS citations (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			humor_id    TEXT NOT NULL DEFAULT '',
			writer_id   TEXT NOT NULL REFERENCES users(id),
			writer_name TEXT NOT NULL,
			number_like INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_citations_created_at ON citations(created_at);
		CREATE INDEX IF NOT EXISTS idx_citations_writer_id ON citations(writer_id);
	`)
	if err != nil {
		return fmt.Errorf("creating citations table: %w", err)
	}

	// The composite primary key makes "a user likes a citation at most once"
	// structural. user_name is the engagement-time pseudo snapshot.
	for _, table := range []string{"citation_likes", "citation_favorites"} {
		_, err = db.conn.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				citation_id TEXT NOT NULL REFERENCES citations(id),
				user_id     TEXT NOT NULL REFERENCES users(id),
				user_name   TEXT NOT NULL,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (citation_id, user_id)
			);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_user_id ON %[1]s(user_id);
		`, table))
		if err != nil {
			return fmt.Errorf("creating %s table: %w", table, err)
		}
	}

	if err := db.seedHumors(); err != nil {
		return fmt.Errorf("seeding humors: %w", err)
	}

	return nil
}

// seedHumors inserts the static humor categories. INSERT OR IGNORE keeps the
// seed idempotent across restarts.
func (db *DB) seedHumors() error {
	seed := []struct{ id, name string }{
		{"absurd", "Absurd"},
		{"dark", "Dark"},
		{"deadpan", "Deadpan"},
		{"ironic", "Ironic"},
		{"satirical", "Satirical"},
		{"wholesome", "Wholesome"},
	}
	for _, h := range seed {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO humors (id, name) VALUES (?, ?)`, h.id, h.name,
		); err != nil {
			return err
		}
	}
	return nil
}
