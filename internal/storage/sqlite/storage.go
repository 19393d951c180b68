package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface.
// Sortable and filterable fields are columns; the full record is JSON.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open opens (creating if needed) the database at path
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
	// Single writer; SQLite serializes anyway
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
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
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
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			money REAL NOT NULL,
			is_online INTEGER NOT NULL,
			last_seen_ms INTEGER NOT NULL,
			created_at_ms INTEGER NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_players_money ON players(money DESC, id);`,
		`CREATE INDEX IF NOT EXISTS idx_players_created ON players(created_at_ms);`,
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

func (s *Storage) LoadPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM players WHERE id = ?`, string(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, money, is_online, last_seen_ms, created_at_ms, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			money = excluded.money,
			is_online = excluded.is_online,
			last_seen_ms = excluded.last_seen_ms,
			created_at_ms = excluded.created_at_ms,
			data = excluded.data`,
		string(player.ID),
		player.Money,
		boolToInt(player.IsOnline),
		toMillis(player.LastSeen),
		toMillis(player.CreatedAt),
		string(data),
	)
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, n int, since time.Time) ([]*model.Player, error) {
	players := make([]*model.Player, 0, max(n, 0))
	if n <= 0 {
		return players, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM players
		WHERE created_at_ms >= ?
		ORDER BY money DESC, id ASC
		LIMIT ?`,
		toMillis(since), n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p, err := decode(data)
		if err != nil {
			continue // Skip invalid data
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) Rank(ctx context.Context, id model.PlayerID) (int, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&total); err != nil {
		return 0, 0, err
	}

	var money float64
	err := s.db.QueryRowContext(ctx, `SELECT money FROM players WHERE id = ?`, string(id)).Scan(&money)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, total, nil
		}
		return 0, 0, err
	}

	var ahead int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players
		WHERE money > ? OR (money = ? AND id < ?)`,
		money, money, string(id),
	).Scan(&ahead)
	if err != nil {
		return 0, 0, err
	}
	return ahead + 1, total, nil
}

func (s *Storage) DeleteStale(ctx context.Context, criteria storage.StaleCriteria) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM players
		WHERE is_online = 0 AND last_seen_ms < ? AND money < ?`,
		toMillis(criteria.LastSeenBefore), criteria.MoneyBelow,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func decode(data string) (*model.Player, error) {
	var p model.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// toMillis maps the zero time to 0 so it sorts before every real timestamp
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
