package httpapi

import (
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
)

// GameView is the polled state of one game.
type GameView struct {
	ID        string                `json:"id"`
	Round     int                   `json:"round"`
	Rows      [checkers.Size]string `json:"rows"`
	Turn      checkers.Color        `json:"turn"`
	Selected  *checkers.Pos         `json:"selected,omitempty"`
	Offered   []checkers.Pos        `json:"offered"`
	Status    string                `json:"status"`
	Winner    checkers.Color        `json:"winner,omitempty"`
	WhiteLeft int                   `json:"white_left"`
	RedLeft   int                   `json:"red_left"`
	Plies     int                   `json:"plies"`
	Message   string                `json:"message"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SelectRequest is a board click. Both fields are required.
type SelectRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type SelectResponse struct {
	Handled bool     `json:"handled"`
	Game    GameView `json:"game"`
}

type ResultView struct {
	GameID     string         `json:"game_id"`
	Round      int            `json:"round"`
	Winner     checkers.Color `json:"winner"`
	Plies      int            `json:"plies"`
	WhiteLeft  int            `json:"white_left"`
	RedLeft    int            `json:"red_left"`
	EndedAt    time.Time      `json:"ended_at"`
	DurationMS int64          `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}
