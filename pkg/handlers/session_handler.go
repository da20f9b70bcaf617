package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/valyala/fasthttp"
)

// SessionHandler maneja las peticiones HTTP para sesiones
type SessionHandler struct {
	sessionService *services.SessionService
	notifier       Notifier
}

// NewSessionHandler crea una nueva instancia del handler de sesiones
func NewSessionHandler(sessionService *services.SessionService, notifier Notifier) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		notifier:       notifier,
	}
}

// CreateSession maneja POST /api/sessions
func (h *SessionHandler) CreateSession(ctx *fasthttp.RequestCtx) {
	var request models.SessionCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	if request.PlayerName == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "Nombre del jugador es requerido")
		return
	}
	if request.GameID == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "Juego es requerido")
		return
	}

	session, err := h.sessionService.CreateSession(request.GameID, request.PlayerName)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	h.respondWithView(ctx, session, "Sesión creada exitosamente")
}

// GetSession maneja GET /api/sessions/{id}
func (h *SessionHandler) GetSession(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	h.respondWithView(ctx, session, "Sesión obtenida exitosamente")
}

// Submit maneja POST /api/sessions/{id}/submit
func (h *SessionHandler) Submit(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	var request models.SubmitRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}
	if request.ItemID == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "itemId es requerido")
		return
	}

	result, err := h.sessionService.Submit(sessionID, request)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	if result.Ignored {
		respondWithSuccess(ctx, result, "Envío ignorado: el ítem ya fue respondido")
		return
	}

	h.notifier.Publish(sessionID, EventFeedback, result)

	message := "Respuesta incorrecta"
	if result.Correct {
		message = "¡Correcto!"
	}
	respondWithSuccess(ctx, result, message)
}

// Advance maneja POST /api/sessions/{id}/advance
func (h *SessionHandler) Advance(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	reqCtx, cancel := requestContext()
	defer cancel()

	result, err := h.sessionService.Advance(reqCtx, sessionID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	if result.Results != nil {
		h.notifier.Publish(sessionID, EventComplete, result.Results)
		respondWithSuccess(ctx, result, fmt.Sprintf("Juego terminado: %d de %d", result.Results.Score, result.Results.Total))
		return
	}

	h.notifier.Publish(sessionID, EventAdvance, result.Session)
	respondWithSuccess(ctx, result, "Siguiente ítem")
}

// Summary maneja GET /api/sessions/{id}/summary
func (h *SessionHandler) Summary(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	screen, err := h.sessionService.Summary(sessionID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	respondWithSuccess(ctx, screen, "Resultados obtenidos exitosamente")
}

// Reset maneja POST /api/sessions/{id}/reset
func (h *SessionHandler) Reset(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	session, err := h.sessionService.Reset(sessionID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	view, err := h.sessionService.View(session)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	h.notifier.Publish(sessionID, EventReset, view)
	respondWithSuccess(ctx, models.SessionResponse{Session: &view}, "Sesión reiniciada")
}

// FinishSession maneja POST /api/sessions/{id}/finish
func (h *SessionHandler) FinishSession(ctx *fasthttp.RequestCtx) {
	sessionID := ctx.UserValue("id").(string)

	if err := h.sessionService.FinishSession(sessionID); err != nil {
		respondWithErr(ctx, err)
		return
	}

	respondWithSuccess(ctx, nil, "Sesión terminada exitosamente")
}

// GetActiveSessions maneja GET /api/sessions/active
func (h *SessionHandler) GetActiveSessions(ctx *fasthttp.RequestCtx) {
	sessions, err := h.sessionService.GetActiveSessions()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo sesiones activas: %v", err))
		return
	}

	views := make([]models.SessionView, 0, len(sessions))
	for i := range sessions {
		view, err := h.sessionService.View(&sessions[i])
		if err != nil {
			continue
		}
		views = append(views, view)
	}

	respondWithSuccess(ctx, models.SessionResponse{Sessions: views}, fmt.Sprintf("%d sesiones activas obtenidas", len(views)))
}

// GetPlayerNames maneja GET /api/sessions/players
func (h *SessionHandler) GetPlayerNames(ctx *fasthttp.RequestCtx) {
	playerNames, err := h.sessionService.GetPlayerNames()
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo jugadores: %v", err))
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"players": playerNames,
		"count":   len(playerNames),
	}, fmt.Sprintf("%d jugadores registrados", len(playerNames)))
}

func (h *SessionHandler) respondWithView(ctx *fasthttp.RequestCtx, session *models.GameSession, message string) {
	view, err := h.sessionService.View(session)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: &view}, message)
}
