package dal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

func encodeLeague(l *models.League) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode league %s: %w", l.ID, err)
	}
	return data, nil
}

func decodeLeague(data []byte, version int64) (*models.League, error) {
	var l models.League
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode league: %w", err)
	}
	l.Version = version
	return &l, nil
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// getDefaultLeagues returns the demo leagues a fresh store starts with
func getDefaultLeagues() []models.League {
	member := func(names ...string) []models.Member {
		out := make([]models.Member, len(names))
		for i, n := range names {
			out[i] = models.Member{Username: n, Label: n}
		}
		return out
	}

	return []models.League{
		{
			ID:           "demo-1",
			Name:         "Sunday Slate",
			Commissioner: "Morgan Patel",
			Format:       models.FormatPPR,
			Size:         10,
			Code:         "SLATE9",
			CreatedAt:    time.Date(2024, 8, 18, 12, 0, 0, 0, time.UTC),
			Members:      member("Morgan Patel", "Jessie Han", "Chris Lee", "Taylor Brooks"),
		},
		{
			ID:           "demo-2",
			Name:         "Rookie Rebuild",
			Commissioner: "Alex Rivera",
			Format:       models.FormatHalfPPR,
			Size:         12,
			Code:         "ROOK13",
			CreatedAt:    time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC),
			Members:      member("Alex Rivera", "Priya Shah", "Jordan Wu", "Ella Chen", "Sam Carter"),
		},
		{
			ID:           "demo-3",
			Name:         "Two-Minute Drill",
			Commissioner: "Jamie Lee",
			Format:       models.FormatStandard,
			Size:         8,
			Code:         "DRILL8",
			CreatedAt:    time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC),
			Members:      member("Jamie Lee", "Pat O’Neal", "Riley James"),
		},
	}
}
