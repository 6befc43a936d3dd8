// Package sqlite implements the storage interface on a single-file SQLite
// database, for self-hosted servers that want durability without running
// Redis.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"sunward.gg/internal/model"
	"sunward.gg/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Open creates or opens the database at path and prepares the schema
func Open(path string) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The driver serializes writes; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the save-after-every-mutation write pattern.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS structures (
			owner_id TEXT NOT NULL,
			structure_id TEXT NOT NULL,
			record_json TEXT NOT NULL,
			PRIMARY KEY (owner_id, structure_id)
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			record_json TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Structure operations

func (s *Storage) SaveStructures(ctx context.Context, owner model.PlayerID, records map[model.StructureID]model.StructureRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM structures WHERE owner_id = ?`, string(owner)); err != nil {
		return err
	}
	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO structures (owner_id, structure_id, record_json) VALUES (?, ?, ?)`,
			string(owner), string(id), string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) LoadStructures(ctx context.Context, owner model.PlayerID) (map[model.StructureID]model.StructureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT structure_id, record_json FROM structures WHERE owner_id = ?`, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[model.StructureID]model.StructureRecord)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var rec model.StructureRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, err
		}
		records[model.StructureID(id)] = rec
	}
	return records, rows.Err()
}

func (s *Storage) Owners(ctx context.Context) ([]model.PlayerID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM structures`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []model.PlayerID
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, model.PlayerID(owner))
	}
	return owners, rows.Err()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (player_id, record_json) VALUES (?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET record_json = excluded.record_json`,
		string(player.ID), string(data))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM players WHERE player_id = ?`, string(id)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal([]byte(raw), &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Ping verifies the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
