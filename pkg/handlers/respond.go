package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/backsoul/citizenquiz/pkg/engine"
	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/valyala/fasthttp"
)

// tiempo máximo para operaciones que tocan el archivo de resultados
const requestTimeout = 5 * time.Second

// Notifier recibe los eventos de una sesión para reenviarlos al shell
type Notifier interface {
	Publish(sessionID, msgType string, data interface{})
}

// Tipos de evento enviados por WebSocket
const (
	EventSession  = "session"
	EventFeedback = "feedback"
	EventAdvance  = "advance"
	EventComplete = "complete"
	EventReset    = "reset"
)

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// statusFor traduce los errores del motor y de los servicios a códigos HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrGameNotFound), errors.Is(err, services.ErrSessionNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, engine.ErrInvalidConfiguration), errors.Is(err, engine.ErrInvalidState):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrOutOfSequenceAdvance),
		errors.Is(err, engine.ErrSessionIncomplete),
		errors.Is(err, engine.ErrNotStarted):
		return fasthttp.StatusConflict
	case errors.Is(err, engine.ErrUnknownOption),
		errors.Is(err, engine.ErrWrongItemKind),
		errors.Is(err, engine.ErrReflectionTooShort):
		return fasthttp.StatusBadRequest
	default:
		return fasthttp.StatusInternalServerError
	}
}

func respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error al serializar respuesta"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondWithErr usa statusFor para elegir el código
func respondWithErr(ctx *fasthttp.RequestCtx, err error) {
	respondWithError(ctx, statusFor(err), err.Error())
}

func respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
