package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// PostgresDAL implements LeagueDAL using PostgreSQL
type PostgresDAL struct {
	db *sql.DB
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// CloudNativePG optimization: Configure connection pool settings
	db.SetMaxOpenConns(25)                 // CloudNativePG default max_connections is 100
	db.SetMaxIdleConns(5)                  // Keep some idle connections for quick reuse
	db.SetConnMaxLifetime(5 * time.Minute) // Recycle connections to handle failovers gracefully
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Test connection with retry logic for Kubernetes DNS resolution
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()

		if lastErr == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{db: db}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leagues (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		version BIGINT NOT NULL DEFAULT 1,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS draft_picks (
		league_id TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
		pick_number INTEGER NOT NULL,
		round INTEGER NOT NULL,
		team_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		player_data JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (league_id, pick_number),
		UNIQUE (league_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS watchlists (
		username TEXT NOT NULL,
		player_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (username, player_id)
	);

	-- CloudNativePG optimization: Add indexes for common query patterns
	CREATE INDEX IF NOT EXISTS idx_leagues_created_at ON leagues(created_at);
	CREATE INDEX IF NOT EXISTS idx_draft_picks_team ON draft_picks(league_id, team_id);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return err
	}

	// Check if we need to seed data
	var count int
	if err := p.db.QueryRow("SELECT COUNT(*) FROM leagues").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		for _, l := range getDefaultLeagues() {
			if err := p.CreateLeague(context.Background(), &l); err != nil {
				return fmt.Errorf("failed to seed league %s: %w", l.ID, err)
			}
		}
	}

	return nil
}

func (p *PostgresDAL) ListLeagues(ctx context.Context) ([]models.League, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT data, version FROM leagues ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := []models.League{}
	for rows.Next() {
		var data []byte
		var version int64
		if err := rows.Scan(&data, &version); err != nil {
			return nil, err
		}
		l, err := decodeLeague(data, version)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (p *PostgresDAL) GetLeague(ctx context.Context, id string) (*models.League, error) {
	return p.getOne(ctx, `SELECT data, version FROM leagues WHERE id = $1`, id)
}

func (p *PostgresDAL) GetLeagueByCode(ctx context.Context, code string) (*models.League, error) {
	return p.getOne(ctx, `SELECT data, version FROM leagues WHERE code = $1`, code)
}

func (p *PostgresDAL) getOne(ctx context.Context, query, arg string) (*models.League, error) {
	var data []byte
	var version int64
	err := p.db.QueryRowContext(ctx, query, arg).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeLeague(data, version)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (p *PostgresDAL) CreateLeague(ctx context.Context, league *models.League) error {
	league.Version = 1
	data, err := encodeLeague(league)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO leagues (id, code, name, version, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, league.ID, league.Code, league.Name, league.Version, data, league.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (p *PostgresDAL) SaveLeague(ctx context.Context, league *models.League, expectedVersion int64) error {
	next := *league
	next.Version = expectedVersion + 1
	data, err := encodeLeague(&next)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leagues SET data = $1, name = $2, version = $3, updated_at = NOW()
		WHERE id = $4 AND version = $5
	`, data, next.Name, next.Version, league.ID, expectedVersion)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leagues WHERE id = $1)`, league.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}

	if err := syncPicks(ctx, tx, league.ID, next.DraftPicks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	league.Version = next.Version
	return nil
}

// syncPicks mirrors the league's pick list into draft_picks so pick history
// can be queried without decoding league documents
func syncPicks(ctx context.Context, tx *sql.Tx, leagueID string, picks []models.Pick) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_picks WHERE league_id = $1 AND pick_number > $2`, leagueID, len(picks)); err != nil {
		return fmt.Errorf("failed to trim draft picks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO draft_picks (league_id, pick_number, round, team_id, player_id, player_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (league_id, pick_number) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pick := range picks {
		playerData, err := json.Marshal(pick.Player)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, leagueID, pick.Pick, pick.Round, pick.TeamID, pick.Player.ID, playerData); err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to record pick %d: %w", pick.Pick, err)
		}
	}
	return nil
}

func (p *PostgresDAL) AddToWatchlist(ctx context.Context, username, playerID string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO watchlists (username, player_id)
		VALUES ($1, $2)
		ON CONFLICT (username, player_id) DO NOTHING
	`, username, playerID)
	return err
}

func (p *PostgresDAL) RemoveFromWatchlist(ctx context.Context, username, playerID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM watchlists WHERE username = $1 AND player_id = $2`, username, playerID)
	return err
}

func (p *PostgresDAL) Watchlist(ctx context.Context, username string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT player_id FROM watchlists WHERE username = $1 ORDER BY created_at, player_id
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (p *PostgresDAL) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
