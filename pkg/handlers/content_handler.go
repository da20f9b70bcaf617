package handlers

import (
	"fmt"

	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/valyala/fasthttp"
)

// ContentHandler maneja las peticiones HTTP del catálogo de juegos
type ContentHandler struct {
	contentService *services.ContentService
	resultsService *services.ResultsService
	catalogPath    string
}

// NewContentHandler crea una nueva instancia del handler del catálogo
func NewContentHandler(contentService *services.ContentService, resultsService *services.ResultsService, catalogPath string) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		resultsService: resultsService,
		catalogPath:    catalogPath,
	}
}

// GetAllGames maneja GET /api/games
func (h *ContentHandler) GetAllGames(ctx *fasthttp.RequestCtx) {
	games, err := h.contentService.ListGames()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo juegos: %v", err))
		return
	}

	// sin metadatos la lista sigue siendo válida
	metadata, _ := h.contentService.GetMetadata()

	responseData := models.GameResponse{
		Games:    games,
		Count:    len(games),
		Metadata: metadata,
	}

	respondWithSuccess(ctx, responseData, fmt.Sprintf("%d juegos obtenidos", len(games)))
}

// GetGame maneja GET /api/games/{id}; nunca expone las respuestas correctas
func (h *ContentHandler) GetGame(ctx *fasthttp.RequestCtx) {
	gameID := ctx.UserValue("id").(string)

	game, err := h.contentService.GetGame(gameID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	public := models.NewPublicGame(*game)
	respondWithSuccess(ctx, models.GameResponse{Game: &public}, "Juego obtenido exitosamente")
}

// GetNextGame maneja GET /api/games/{id}/next
func (h *ContentHandler) GetNextGame(ctx *fasthttp.RequestCtx) {
	gameID := ctx.UserValue("id").(string)

	if _, err := h.contentService.GetGame(gameID); err != nil {
		respondWithErr(ctx, err)
		return
	}

	next, err := h.contentService.Resolver()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error resolviendo siguiente juego: %v", err))
		return
	}

	ref := next(gameID)
	message := "Siguiente juego obtenido"
	if ref == nil {
		message = "Es el último juego del catálogo"
	}
	respondWithSuccess(ctx, models.GameResponse{Next: ref}, message)
}

// ReloadGames maneja POST /api/games/reload
func (h *ContentHandler) ReloadGames(ctx *fasthttp.RequestCtx) {
	count, err := h.contentService.LoadGamesFromFile(h.catalogPath)
	if err != nil {
		respondWithError(ctx, statusFor(err), fmt.Sprintf("Error recargando juegos: %v", err))
		return
	}

	next, err := h.contentService.Resolver()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error resolviendo orden del catálogo: %v", err))
		return
	}
	h.resultsService.SetResolver(next)

	respondWithSuccess(ctx, models.GameResponse{Count: count}, fmt.Sprintf("%d juegos recargados", count))
}

// HealthCheck maneja GET /api/health
func (h *ContentHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := h.contentService.HealthCheck(); err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Servicio no disponible: %v", err))
		return
	}

	count, _ := h.contentService.GetGameCount()
	respondWithSuccess(ctx, map[string]interface{}{
		"status": "healthy",
		"redis":  "connected",
		"games":  count,
	}, "Servicio funcionando correctamente")
}
