package capestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"capestudio/internal/cape"
	"capestudio/internal/config"
)

// ErrNotFound reports an unknown item id.
var ErrNotFound = errors.New("cape not found")

// Store manages cape persistence backed by SQLite.
type Store struct {
	db          *sql.DB
	path        string
	texturesDir string
}

// Open initializes or connects to the cape database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DatabasePath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, texturesDir: cfg.TexturesDir()}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const capeColumns = `item_id, piece_uuid, name, description, creator_name, thumbnail_url,
    rarity, texture_path, archive_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCape(row rowScanner) (*cape.Definition, error) {
	var def cape.Definition
	var rarity string
	if err := row.Scan(
		&def.ItemID, &def.PieceUUID, &def.Name, &def.Description, &def.CreatorName,
		&def.ThumbnailURL, &rarity, &def.TexturePath, &def.ArchivePath,
	); err != nil {
		return nil, err
	}
	def.Rarity = cape.Rarity(rarity)
	return &def, nil
}

// Add inserts def at the end of the library.
func (s *Store) Add(ctx context.Context, def cape.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO capes (`+capeColumns+`, position, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
                 (SELECT COALESCE(MAX(position), 0) + 1 FROM capes), ?, ?)`,
		def.ItemID, def.PieceUUID, def.Name, def.Description, def.CreatorName,
		def.ThumbnailURL, string(def.Rarity), def.TexturePath, def.ArchivePath,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert cape: %w", err)
	}
	return nil
}

// Get fetches a cape by item id. It returns nil when no row matches.
func (s *Store) Get(ctx context.Context, itemID string) (*cape.Definition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+capeColumns+` FROM capes WHERE item_id = ?`, itemID)
	def, err := scanCape(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cape: %w", err)
	}
	return def, nil
}

// List returns every cape in insertion order.
func (s *Store) List(ctx context.Context) ([]cape.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+capeColumns+` FROM capes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list capes: %w", err)
	}
	defer rows.Close()

	var defs []cape.Definition
	for rows.Next() {
		def, err := scanCape(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cape: %w", err)
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// Update persists every mutable field of def.
func (s *Store) Update(ctx context.Context, def cape.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE capes
         SET piece_uuid = ?, name = ?, description = ?, creator_name = ?, thumbnail_url = ?,
             rarity = ?, texture_path = ?, archive_path = ?, updated_at = ?
         WHERE item_id = ?`,
		def.PieceUUID, def.Name, def.Description, def.CreatorName, def.ThumbnailURL,
		string(def.Rarity), def.TexturePath, def.ArchivePath,
		time.Now().UTC().Format(time.RFC3339Nano),
		def.ItemID,
	)
	if err != nil {
		return fmt.Errorf("update cape: %w", err)
	}
	return requireOne(res, def.ItemID)
}

// SetArchivePath records the archive produced for itemID.
func (s *Store) SetArchivePath(ctx context.Context, itemID, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE capes SET archive_path = ?, updated_at = ? WHERE item_id = ?`,
		path, time.Now().UTC().Format(time.RFC3339Nano), itemID,
	)
	if err != nil {
		return fmt.Errorf("set archive path: %w", err)
	}
	return requireOne(res, itemID)
}

// Remove deletes a cape.
func (s *Store) Remove(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM capes WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("remove cape: %w", err)
	}
	return requireOne(res, itemID)
}

func requireOne(res sql.Result, itemID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	return nil
}
