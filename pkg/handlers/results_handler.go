package handlers

import (
	"fmt"

	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/valyala/fasthttp"
)

// ResultsHandler historial y tabla de posiciones
type ResultsHandler struct {
	resultsService *services.ResultsService
	sessionService *services.SessionService
}

func NewResultsHandler(resultsService *services.ResultsService, sessionService *services.SessionService) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
		sessionService: sessionService,
	}
}

// GetPlayerHistory maneja GET /api/players/{name}/history
func (h *ResultsHandler) GetPlayerHistory(ctx *fasthttp.RequestCtx) {
	playerName := ctx.UserValue("playerName").(string)

	reqCtx, cancel := requestContext()
	defer cancel()

	history, err := h.resultsService.GetPlayerHistory(reqCtx, playerName)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo historial: %v", err))
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"player":  playerName,
		"results": history,
		"count":   len(history),
	}, "Historial del jugador obtenido exitosamente")
}

// GetLeaderboard maneja GET /api/leaderboard
func (h *ResultsHandler) GetLeaderboard(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := requestContext()
	defer cancel()

	active, err := h.sessionService.GetActiveSessions()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo sesiones activas: %v", err))
		return
	}

	leaderboard, err := h.resultsService.GetLeaderboard(reqCtx, len(active))
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo tabla de posiciones: %v", err))
		return
	}

	respondWithSuccess(ctx, leaderboard, "Tabla de posiciones obtenida exitosamente")
}
