package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// Client records draft picks in ClickHouse and computes average draft position
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client and makes sure the picks table exists
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.ensureSchema(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureSchema(ctx context.Context) error {
	err := c.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS draft_picks (
			league_id   String,
			format      LowCardinality(String),
			pick_number UInt16,
			round       UInt16,
			team_id     String,
			player_id   String,
			player_name String,
			position    LowCardinality(String),
			nfl_team    LowCardinality(String),
			picked_at   DateTime64(3)
		) ENGINE = ReplacingMergeTree
		ORDER BY (league_id, pick_number)
	`)
	if err != nil {
		return fmt.Errorf("failed to create draft_picks table: %w", err)
	}
	return nil
}

// RecordPicks appends picks made in a league. Re-recording the same pick
// number collapses on merge.
func (c *Client) RecordPicks(ctx context.Context, leagueID string, format models.Format, picks []models.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `INSERT INTO draft_picks`)
	if err != nil {
		return fmt.Errorf("failed to prepare pick batch: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range picks {
		err := batch.Append(
			leagueID,
			string(format),
			uint16(p.Pick),
			uint16(p.Round),
			p.TeamID,
			p.Player.ID,
			p.Player.Name,
			p.Player.Position,
			p.Player.Team,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to append pick %d: %w", p.Pick, err)
		}
	}
	return batch.Send()
}

// AverageDraftPosition returns players ordered by their average pick over the
// last 90 days. An empty format covers every scoring format.
func (c *Client) AverageDraftPosition(ctx context.Context, format models.Format, limit int) ([]models.ADP, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT
			player_id,
			any(player_name) AS name,
			any(position) AS position,
			avg(pick_number) AS adp,
			min(pick_number) AS best,
			max(pick_number) AS worst,
			uniqExact(league_id) AS drafts
		FROM draft_picks FINAL
		WHERE picked_at >= now() - INTERVAL 90 DAY
		AND (? = '' OR format = ?)
		GROUP BY player_id
		ORDER BY adp ASC, drafts DESC
		LIMIT ?
	`

	rows, err := c.conn.Query(ctx, query, string(format), string(format), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ADP{}
	for rows.Next() {
		var (
			a           models.ADP
			best, worst uint16
			drafts      uint64
		)
		if err := rows.Scan(&a.PlayerID, &a.Name, &a.Position, &a.Average, &best, &worst, &drafts); err != nil {
			return nil, err
		}
		a.Best, a.Worst, a.Drafts = int(best), int(worst), int(drafts)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
