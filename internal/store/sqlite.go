package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbeisheim/chess-server/internal/model"
	_ "github.com/mattn/go-sqlite3"
)

var ErrDuplicate = errors.New("result already recorded")

// endedAtLayout is fixed width so that ended_at sorts as text in time order.
const endedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `CREATE TABLE IF NOT EXISTS results (
	game_id  TEXT PRIMARY KEY,
	winner   TEXT NOT NULL,
	reason   TEXT NOT NULL,
	white_id TEXT NOT NULL,
	black_id TEXT NOT NULL,
	ended_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS results_ended_at ON results (ended_at);`

type sqliteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dsn and applies the
// schema. ":memory:" is accepted.
func NewSQLite(dsn string) (ResultStore, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}
	db, err := sql.Open("sqlite3", withBusyTimeout(dsn))
	if err != nil {
		return nil, err
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// withBusyTimeout appends the driver's busy timeout to dsn, keeping any query
// parameters already present.
func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_busy_timeout=5000"
	}
	return dsn + "?_busy_timeout=5000"
}

func (s *sqliteStore) Record(ctx context.Context, r model.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (game_id, winner, reason, white_id, black_id, ended_at) VALUES (?,?,?,?,?,?)`,
		r.GameID, string(r.Winner), r.Reason, r.White, r.Black, r.EndedAt.UTC().Format(endedAtLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert result %s: %w", r.GameID, err)
	}
	return nil
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]model.Result, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, winner, reason, white_id, black_id, ended_at FROM results ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		var r model.Result
		var winner, ended string
		if err := rows.Scan(&r.GameID, &winner, &r.Reason, &r.White, &r.Black, &ended); err != nil {
			return nil, err
		}
		r.Winner = model.PlayerColor(winner)
		if r.EndedAt, err = time.Parse(endedAtLayout, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at for %s: %w", r.GameID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
