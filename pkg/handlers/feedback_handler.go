package handlers

import (
	"log"

	"github.com/backsoul/citizenquiz/pkg/services"
	websocketHub "github.com/backsoul/citizenquiz/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// FeedbackHandler canal WebSocket con el feedback de una sesión
type FeedbackHandler struct {
	sessionService *services.SessionService
	hub            *websocketHub.Hub
}

func NewFeedbackHandler(sessionService *services.SessionService, hub *websocketHub.Hub) *FeedbackHandler {
	return &FeedbackHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // Permitir conexiones desde cualquier origen en desarrollo
	},
}

// HandleWebSocket maneja GET /ws?session={id}
func (h *FeedbackHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.QueryArgs().Peek("session"))
	if sessionID == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "Parámetro session es requerido")
		return
	}

	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}
	view, err := h.sessionService.View(session)
	if err != nil {
		respondWithErr(ctx, err)
		return
	}

	err = upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		// el estado inicial se escribe antes de registrar: el hub no admite escrituras concurrentes
		if !sendInitial(ws, sessionID, view) {
			ws.Close()
			return
		}

		h.hub.Register(ws, sessionID)
		defer h.hub.Unregister(ws)

		// Escuchar mensajes del cliente
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				log.Printf("Error leyendo mensaje WebSocket: %v", err)
				break
			}
		}
	})

	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		ctx.Error("Error upgrading to WebSocket", fasthttp.StatusInternalServerError)
	}
}

// sendInitial envía la vista de la sesión; false si la conexión ya no sirve
func sendInitial(conn websocketHub.Conn, sessionID string, view interface{}) bool {
	data, err := websocketHub.Encode(sessionID, EventSession, view)
	if err != nil {
		log.Printf("Error serializando estado inicial de %s: %v", sessionID, err)
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Error enviando estado inicial de %s: %v", sessionID, err)
		return false
	}
	return true
}
