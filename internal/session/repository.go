package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"

	_ "github.com/lib/pq"
)

const resultsSchema = `CREATE TABLE IF NOT EXISTS checkers_results (
	game_id     TEXT NOT NULL,
	round       INTEGER NOT NULL,
	winner      TEXT NOT NULL,
	plies       INTEGER NOT NULL,
	white_left  INTEGER NOT NULL,
	red_left    INTEGER NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL,
	PRIMARY KEY (game_id, round)
)`

// PostgresResults stores finished games in the checkers_results table.
type PostgresResults struct {
	db *sql.DB
}

func NewPostgresResults(databaseURL string) (*PostgresResults, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, resultsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresResults{db: db}, nil
}

func (r *PostgresResults) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game.
func (r *PostgresResults) SaveResult(ctx context.Context, res Result) error {
	if r == nil || r.db == nil {
		return nil
	}
	q := `INSERT INTO checkers_results (
		game_id, round, winner, plies, white_left, red_left, started_at, ended_at, duration_ms
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	ON CONFLICT (game_id, round) DO UPDATE SET
		winner=EXCLUDED.winner,
		plies=EXCLUDED.plies,
		white_left=EXCLUDED.white_left,
		red_left=EXCLUDED.red_left,
		started_at=EXCLUDED.started_at,
		ended_at=EXCLUDED.ended_at,
		duration_ms=EXCLUDED.duration_ms`
	_, err := r.db.ExecContext(ctx, q,
		res.GameID, res.Round, string(res.Winner), res.Plies, res.WhiteLeft, res.RedLeft,
		res.StartedAt, res.EndedAt, res.Duration().Milliseconds(),
	)
	return err
}

// RecentResults returns the latest finished games, newest first.
func (r *PostgresResults) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, round, winner, plies, white_left, red_left, started_at, ended_at
		FROM checkers_results ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			res    Result
			winner string
		)
		if err := rows.Scan(&res.GameID, &res.Round, &winner, &res.Plies, &res.WhiteLeft, &res.RedLeft, &res.StartedAt, &res.EndedAt); err != nil {
			return nil, err
		}
		res.Winner = checkers.Color(winner)
		out = append(out, res)
	}
	return out, rows.Err()
}
