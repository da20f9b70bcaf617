package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/backsoul/citizenquiz/pkg/engine"
	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/redis"
	"github.com/google/uuid"
)

const (
	sessionKeyPrefix       = "quiz:session:"
	activeSessionsKey      = "quiz:active_sessions"
	playerSessionsPrefix   = "quiz:player_sessions:"
	sessionLockStripeCount = 64
)

// ErrSessionNotFound la sesión no existe o expiró
var ErrSessionNotFound = errors.New("sesión no encontrada")

var (
	_ SessionStore = (*redis.RedisClient)(nil)
	_ CatalogStore = (*redis.RedisClient)(nil)
)

// SessionStore almacén clave/valor con conjuntos, implementado por Redis
type SessionStore interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
	Del(key string) error
	AddToSet(key, member string) error
	RemoveFromSet(key, member string) error
	GetSetMembers(key string) ([]string, error)
	GetKeysByPattern(pattern string) ([]string, error)
}

// GameSource de dónde salen los ítems de un juego
type GameSource interface {
	GetGame(id string) (*models.Game, error)
}

// SessionService maneja las sesiones de los jugadores. El estado del motor se
// guarda en el store entre peticiones y se reconstruye con engine.Restore.
type SessionService struct {
	store   SessionStore
	games   GameSource
	results *ResultsService
	ttl     time.Duration
	now     func() time.Time
	locks   [sessionLockStripeCount]sync.Mutex
}

// NewSessionService crea una nueva instancia del servicio de sesiones
func NewSessionService(store SessionStore, games GameSource, results *ResultsService, ttl time.Duration) *SessionService {
	return &SessionService{
		store:   store,
		games:   games,
		results: results,
		ttl:     ttl,
		now:     time.Now,
	}
}

// lock serializa las operaciones sobre una misma sesión; la UI puede disparar eventos dos veces
func (s *SessionService) lock(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%sessionLockStripeCount]
	mu.Lock()
	return mu.Unlock
}

// CreateSession inicia una sesión nueva de un jugador en un juego
func (s *SessionService) CreateSession(gameID, playerName string) (*models.GameSession, error) {
	game, err := s.games.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	e, err := engine.New(game.Items)
	if err != nil {
		return nil, fmt.Errorf("juego %s: %w", gameID, err)
	}

	now := s.now()
	session := &models.GameSession{
		ID:           uuid.New().String(),
		GameID:       gameID,
		PlayerName:   playerName,
		Pass:         1,
		Status:       models.StatusActive,
		StartTime:    now,
		LastActivity: now,
		State:        e.Snapshot(),
	}

	if err := s.saveSession(session); err != nil {
		return nil, fmt.Errorf("error guardando sesión: %w", err)
	}
	if err := s.store.AddToSet(activeSessionsKey, session.ID); err != nil {
		log.Printf("⚠️ Error agregando a sesiones activas: %v", err)
	}
	if err := s.store.AddToSet(playerSessionsPrefix+playerName, session.ID); err != nil {
		log.Printf("⚠️ Error agregando a sesiones del jugador: %v", err)
	}

	log.Printf("✅ Nueva sesión de %s para %s (ID: %s)", gameID, playerName, session.ID)
	return session, nil
}

// GetSession obtiene una sesión por ID
func (s *SessionService) GetSession(sessionID string) (*models.GameSession, error) {
	data, err := s.store.Get(sessionKeyPrefix + sessionID)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("error leyendo sesión %s: %w", sessionID, err)
	}

	var session models.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("error parsing sesión: %w", err)
	}
	return &session, nil
}

// View arma la vista pública de una sesión
func (s *SessionService) View(session *models.GameSession) (models.SessionView, error) {
	e, err := engine.Restore(session.State)
	if err != nil {
		return models.SessionView{}, fmt.Errorf("sesión %s corrupta: %w", session.ID, err)
	}
	return viewOf(session, e), nil
}

func viewOf(session *models.GameSession, e *engine.Engine) models.SessionView {
	view := models.SessionView{
		ID:         session.ID,
		GameID:     session.GameID,
		PlayerName: session.PlayerName,
		Pass:       session.Pass,
		Phase:      e.Phase().String(),
		Index:      e.Index(),
		Total:      e.Total(),
		Score:      e.Score(),
	}
	if cur, ok := e.Current(); ok {
		pub := models.NewPublicItem(cur)
		view.Current = &pub
	}
	return view
}

// load lee la sesión y reconstruye su motor
func (s *SessionService) load(sessionID string) (*models.GameSession, *engine.Engine, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.Restore(session.State)
	if err != nil {
		return nil, nil, fmt.Errorf("sesión %s corrupta: %w", sessionID, err)
	}
	return session, e, nil
}

// Submit envía la respuesta del ítem actual. Un envío duplicado no es un error:
// se devuelve con Ignored y el estado no cambia.
func (s *SessionService) Submit(sessionID string, req models.SubmitRequest) (*models.SubmitResponse, error) {
	defer s.lock(sessionID)()

	session, e, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}

	var res engine.Result
	if isReflection(session.State.Items, req.ItemID) {
		res, err = e.SubmitText(req.ItemID, req.Text)
	} else {
		res, err = e.Submit(req.ItemID, req.OptionID)
	}
	if errors.Is(err, engine.ErrIgnoredDuplicateSubmission) {
		return &models.SubmitResponse{Score: res.Score, Ignored: true}, nil
	}
	if err != nil {
		return nil, err
	}

	session.State = e.Snapshot()
	if err := s.saveSession(session); err != nil {
		return nil, fmt.Errorf("error guardando respuesta: %w", err)
	}
	return &models.SubmitResponse{Correct: res.Correct, Score: res.Score}, nil
}

func isReflection(items []engine.Item, itemID string) bool {
	for _, it := range items {
		if it.ID == itemID {
			return it.Kind == engine.KindReflection
		}
	}
	return false
}

// Advance pasa al siguiente ítem. Al terminar archiva el resultado una vez por pasada.
func (s *SessionService) Advance(ctx context.Context, sessionID string) (*models.AdvanceResponse, error) {
	defer s.lock(sessionID)()

	session, e, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}

	step, err := e.Advance()
	if err != nil {
		return nil, err
	}
	session.State = e.Snapshot()

	var screen *models.ResultScreen
	if step.Done() {
		sc := s.screen(session, *step.Summary)
		screen = &sc
		if session.Status != models.StatusComplete {
			// la sesión queda activa hasta archivar: otro advance reintenta el archivo
			if err := s.results.Archive(ctx, session, sc); err != nil {
				if saveErr := s.saveSession(session); saveErr != nil {
					log.Printf("⚠️ Error guardando sesión %s: %v", session.ID, saveErr)
				}
				return nil, err
			}
			session.Status = models.StatusComplete
			if err := s.store.RemoveFromSet(activeSessionsKey, session.ID); err != nil {
				log.Printf("⚠️ Error removiendo de sesiones activas: %v", err)
			}
		}
	}

	if err := s.saveSession(session); err != nil {
		return nil, fmt.Errorf("error guardando sesión: %w", err)
	}
	view := viewOf(session, e)
	return &models.AdvanceResponse{Session: &view, Results: screen}, nil
}

// Summary devuelve la pantalla de resultados de una sesión completa
func (s *SessionService) Summary(sessionID string) (*models.ResultScreen, error) {
	session, e, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}
	summary, err := e.Summary()
	if err != nil {
		return nil, err
	}
	screen := s.screen(session, summary)
	return &screen, nil
}

// screen usa las reglas del juego; si el juego ya no está en el catálogo usa las de por defecto
func (s *SessionService) screen(session *models.GameSession, summary engine.Summary) models.ResultScreen {
	game, err := s.games.GetGame(session.GameID)
	if err != nil {
		log.Printf("⚠️ Juego %s no disponible para resultados: %v", session.GameID, err)
		game = &models.Game{ID: session.GameID}
	}
	return s.results.Screen(*game, summary)
}

// Reset reinicia la sesión completa con los mismos ítems; cuenta como una pasada nueva
func (s *SessionService) Reset(sessionID string) (*models.GameSession, error) {
	defer s.lock(sessionID)()

	session, e, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Reset(); err != nil {
		return nil, err
	}

	session.State = e.Snapshot()
	session.Pass++
	session.Status = models.StatusActive
	if err := s.saveSession(session); err != nil {
		return nil, fmt.Errorf("error guardando sesión: %w", err)
	}
	if err := s.store.AddToSet(activeSessionsKey, session.ID); err != nil {
		log.Printf("⚠️ Error agregando a sesiones activas: %v", err)
	}

	log.Printf("🔄 Sesión %s reiniciada (pasada %d)", session.ID, session.Pass)
	return session, nil
}

// FinishSession abandona una sesión: se descarta su estado
func (s *SessionService) FinishSession(sessionID string) error {
	defer s.lock(sessionID)()

	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	if err := s.store.Del(sessionKeyPrefix + sessionID); err != nil {
		return fmt.Errorf("error eliminando sesión: %w", err)
	}
	if err := s.store.RemoveFromSet(activeSessionsKey, sessionID); err != nil {
		log.Printf("⚠️ Error removiendo de sesiones activas: %v", err)
	}
	if err := s.store.RemoveFromSet(playerSessionsPrefix+session.PlayerName, sessionID); err != nil {
		log.Printf("⚠️ Error removiendo de sesiones del jugador: %v", err)
	}
	return nil
}

// GetActiveSessions obtiene todas las sesiones activas; limpia las que expiraron o terminaron
func (s *SessionService) GetActiveSessions() ([]models.GameSession, error) {
	ids, err := s.store.GetSetMembers(activeSessionsKey)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo sesiones activas: %w", err)
	}

	var sessions []models.GameSession
	for _, id := range ids {
		session, err := s.GetSession(id)
		if err != nil || session.Status != models.StatusActive {
			if err := s.store.RemoveFromSet(activeSessionsKey, id); err != nil {
				log.Printf("⚠️ Error removiendo %s de sesiones activas: %v", id, err)
			}
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// GetPlayerNames obtiene todos los nombres de jugadores registrados
func (s *SessionService) GetPlayerNames() ([]string, error) {
	keys, err := s.store.GetKeysByPattern(playerSessionsPrefix + "*")
	if err != nil {
		return nil, fmt.Errorf("error obteniendo nombres de jugadores: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key[len(playerSessionsPrefix):])
	}
	return names, nil
}

func (s *SessionService) saveSession(session *models.GameSession) error {
	session.LastActivity = s.now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error serializando sesión: %w", err)
	}
	return s.store.Set(sessionKeyPrefix+session.ID, string(data), s.ttl)
}
