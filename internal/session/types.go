package session

import (
	"errors"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFinished     = errors.New("game already finished")
	ErrConcurrentUpdate = errors.New("concurrent update detected")
	ErrBadSquare        = errors.New("square is off the board")
)

// Status represents a game lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// Record is the persisted state of one game session. Round counts the games
// played in the session and starts at 1.
type Record struct {
	ID        string            `json:"id"`
	Round     int               `json:"round"`
	Snapshot  checkers.Snapshot `json:"snapshot"`
	Status    Status            `json:"status"`
	Winner    checkers.Color    `json:"winner,omitempty"`
	Plies     int               `json:"plies"`
	WhiteLeft int               `json:"white_left"`
	RedLeft   int               `json:"red_left"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Game rebuilds the core game from the stored snapshot.
func (r *Record) Game() (*checkers.Game, error) {
	return checkers.Restore(r.Snapshot)
}

// sync copies the position and derived fields out of g.
func (r *Record) sync(g *checkers.Game, now time.Time) {
	b := g.Board()
	r.Snapshot = g.Snapshot()
	r.WhiteLeft = b.LiveCount(checkers.White)
	r.RedLeft = b.LiveCount(checkers.Red)
	r.Winner = g.Winner()
	r.Status = StatusActive
	if r.Winner != checkers.NoColor {
		r.Status = StatusFinished
	}
	r.UpdatedAt = now
}

// Result is the archived summary of a finished game.
type Result struct {
	GameID    string         `json:"game_id"`
	Round     int            `json:"round"`
	Winner    checkers.Color `json:"winner"`
	Plies     int            `json:"plies"`
	WhiteLeft int            `json:"white_left"`
	RedLeft   int            `json:"red_left"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

func (r Result) Duration() time.Duration {
	if d := r.EndedAt.Sub(r.StartedAt); d > 0 {
		return d
	}
	return 0
}

func resultFrom(rec *Record) Result {
	return Result{
		GameID:    rec.ID,
		Round:     rec.Round,
		Winner:    rec.Winner,
		Plies:     rec.Plies,
		WhiteLeft: rec.WhiteLeft,
		RedLeft:   rec.RedLeft,
		StartedAt: rec.CreatedAt,
		EndedAt:   rec.UpdatedAt,
	}
}
