package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// SQLiteDAL implements LeagueDAL using SQLite
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection keeps the version check atomic
	db.SetMaxOpenConns(1)

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leagues (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS watchlists (
		username TEXT NOT NULL,
		player_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (username, player_id)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Seed default data if empty
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM leagues").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		for _, l := range getDefaultLeagues() {
			if err := s.CreateLeague(context.Background(), &l); err != nil {
				return fmt.Errorf("failed to seed league %s: %w", l.ID, err)
			}
		}
	}

	return nil
}

func (s *SQLiteDAL) ListLeagues(ctx context.Context) ([]models.League, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data, version FROM leagues ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := []models.League{}
	for rows.Next() {
		var data string
		var version int64
		if err := rows.Scan(&data, &version); err != nil {
			return nil, err
		}
		l, err := decodeLeague([]byte(data), version)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (s *SQLiteDAL) GetLeague(ctx context.Context, id string) (*models.League, error) {
	return s.getOne(ctx, `SELECT data, version FROM leagues WHERE id = ?`, id)
}

func (s *SQLiteDAL) GetLeagueByCode(ctx context.Context, code string) (*models.League, error) {
	return s.getOne(ctx, `SELECT data, version FROM leagues WHERE code = ?`, code)
}

func (s *SQLiteDAL) getOne(ctx context.Context, query string, arg string) (*models.League, error) {
	var data string
	var version int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeLeague([]byte(data), version)
}

func (s *SQLiteDAL) CreateLeague(ctx context.Context, league *models.League) error {
	league.Version = 1
	data, err := encodeLeague(league)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leagues (id, code, name, version, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, league.ID, league.Code, league.Name, league.Version, string(data), league.CreatedAt.UnixMilli(), now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *SQLiteDAL) SaveLeague(ctx context.Context, league *models.League, expectedVersion int64) error {
	next := *league
	next.Version = expectedVersion + 1
	data, err := encodeLeague(&next)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leagues SET data = ?, name = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`, string(data), next.Name, next.Version, time.Now().UnixMilli(), league.ID, expectedVersion)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM leagues WHERE id = ?`, league.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	league.Version = next.Version
	return nil
}

func (s *SQLiteDAL) AddToWatchlist(ctx context.Context, username, playerID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlists (username, player_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (username, player_id) DO NOTHING
	`, username, playerID, time.Now().UnixMilli())
	return err
}

func (s *SQLiteDAL) RemoveFromWatchlist(ctx context.Context, username, playerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE username = ? AND player_id = ?`, username, playerID)
	return err
}

func (s *SQLiteDAL) Watchlist(ctx context.Context, username string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id FROM watchlists WHERE username = ? ORDER BY created_at, rowid
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *SQLiteDAL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
