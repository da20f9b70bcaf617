package models

import (
	"time"

	"github.com/backsoul/citizenquiz/pkg/engine"
)

// ResultScreen pantalla final de una sesión
type ResultScreen struct {
	GameID      string            `json:"gameId"`
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Passed      bool              `json:"passed"`
	CoinsEarned int               `json:"coinsEarned"`
	XPEarned    int               `json:"xpEarned"`
	NextGame    *GameRef          `json:"nextGame,omitempty"`
	Responses   []engine.Response `json:"responses"`
}

// ArchivedResult resultado guardado de una pasada completa
type ArchivedResult struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Pass        int       `json:"pass"`
	GameID      string    `json:"gameId"`
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Passed      bool      `json:"passed"`
	Coins       int       `json:"coins"`
	XP          int       `json:"xp"`
	CompletedAt time.Time `json:"completedAt"`
}

// LeaderboardEntry entrada en la tabla de posiciones
type LeaderboardEntry struct {
	Position   int    `json:"position"`
	PlayerName string `json:"playerName"`
	Coins      int    `json:"coins"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	GameID     string `json:"gameId"`
	Avatar     string `json:"avatar"`
}

// LeaderboardResponse respuesta de la tabla de posiciones
type LeaderboardResponse struct {
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	TotalPlayers  int                `json:"totalPlayers"`
	ActivePlayers int                `json:"activePlayers"`
}
