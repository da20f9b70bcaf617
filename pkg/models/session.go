package models

import (
	"time"

	"github.com/backsoul/citizenquiz/pkg/engine"
)

// Estados de una sesión del shell
const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

// GameSession representa la sesión de un jugador en un juego
type GameSession struct {
	ID           string       `json:"id"`
	GameID       string       `json:"gameId"`
	PlayerName   string       `json:"playerName"`
	Pass         int          `json:"pass"` // se incrementa con cada reset
	Status       string       `json:"status"`
	StartTime    time.Time    `json:"startTime"`
	LastActivity time.Time    `json:"lastActivity"`
	State        engine.State `json:"state"`
}

// SessionView lo que el shell necesita para pintar una sesión, sin respuestas correctas
type SessionView struct {
	ID         string      `json:"id"`
	GameID     string      `json:"gameId"`
	PlayerName string      `json:"playerName"`
	Pass       int         `json:"pass"`
	Phase      string      `json:"phase"`
	Index      int         `json:"index"`
	Total      int         `json:"total"`
	Score      int         `json:"score"`
	Current    *PublicItem `json:"current,omitempty"`
}

// SessionCreateRequest request para crear sesión
type SessionCreateRequest struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// SubmitRequest envío de una opción o de un texto de reflexión
type SubmitRequest struct {
	ItemID   string `json:"itemId"`
	OptionID string `json:"optionId,omitempty"`
	Text     string `json:"text,omitempty"`
}

// SubmitResponse resultado de un envío. Ignored indica un envío duplicado descartado.
type SubmitResponse struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
	Ignored bool `json:"ignored,omitempty"`
}

// AdvanceResponse el siguiente ítem o la pantalla de resultados
type AdvanceResponse struct {
	Session *SessionView  `json:"session"`
	Results *ResultScreen `json:"results,omitempty"`
}

// SessionResponse respuesta de sesión
type SessionResponse struct {
	Session  *SessionView  `json:"session,omitempty"`
	Sessions []SessionView `json:"sessions,omitempty"`
	Message  string        `json:"message,omitempty"`
}
