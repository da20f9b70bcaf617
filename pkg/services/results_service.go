package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/backsoul/citizenquiz/pkg/engine"
	"github.com/backsoul/citizenquiz/pkg/models"
)

// ResultArchive dónde se guardan los resultados de las sesiones completadas
type ResultArchive interface {
	Record(ctx context.Context, r models.ArchivedResult) error
	PlayerHistory(ctx context.Context, player string, limit int) ([]models.ArchivedResult, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	CountPlayers(ctx context.Context) (int, error)
}

var avatars = []string{"🎯", "⭐", "🔥", "💎", "🌟", "🎪", "🚀", "👤", "🎨", "🎵", "🌊", "⚡", "🎭", "🦄", "🔮"}

// ResultsService arma la pantalla de resultados: aprobado, monedas, xp y siguiente juego.
// El motor solo da conteos; el umbral y las recompensas son de cada juego.
type ResultsService struct {
	archive         ResultArchive
	mu              sync.RWMutex
	next            NextGameResolver
	defaultRatio    float64
	leaderboardSize int
}

// NewResultsService crea el servicio. next puede ser nil si no hay navegación.
func NewResultsService(archive ResultArchive, next NextGameResolver, defaultRatio float64, leaderboardSize int) *ResultsService {
	return &ResultsService{
		archive:         archive,
		next:            next,
		defaultRatio:    defaultRatio,
		leaderboardSize: leaderboardSize,
	}
}

// SetResolver cambia el resolvedor, por ejemplo tras recargar el catálogo
func (rs *ResultsService) SetResolver(next NextGameResolver) {
	rs.mu.Lock()
	rs.next = next
	rs.mu.Unlock()
}

// Screen aplica las reglas del juego al resumen de la sesión
func (rs *ResultsService) Screen(game models.Game, summary engine.Summary) models.ResultScreen {
	passed := NewPassPredicate(game.Pass, rs.defaultRatio)(summary.Score, summary.Total)
	coins := NewRewardPolicy(game.Reward)(summary.Score, summary.Total, passed)

	screen := models.ResultScreen{
		GameID:      game.ID,
		Score:       summary.Score,
		Total:       summary.Total,
		Passed:      passed,
		CoinsEarned: coins,
		Responses:   summary.Responses,
	}
	if passed {
		screen.XPEarned = game.XP
	}
	rs.mu.RLock()
	next := rs.next
	rs.mu.RUnlock()
	if next != nil {
		screen.NextGame = next(game.ID)
	}
	return screen
}

// Archive guarda el resultado de una pasada completa
func (rs *ResultsService) Archive(ctx context.Context, session *models.GameSession, screen models.ResultScreen) error {
	err := rs.archive.Record(ctx, models.ArchivedResult{
		SessionID:  session.ID,
		Pass:       session.Pass,
		GameID:     session.GameID,
		PlayerName: session.PlayerName,
		Score:      screen.Score,
		Total:      screen.Total,
		Passed:     screen.Passed,
		Coins:      screen.CoinsEarned,
		XP:         screen.XPEarned,
	})
	if err != nil {
		return fmt.Errorf("error archivando resultado de %s: %w", session.ID, err)
	}
	log.Printf("🏁 %s terminó %s con %d/%d (%d monedas)", session.PlayerName, session.GameID, screen.Score, screen.Total, screen.CoinsEarned)
	return nil
}

// GetPlayerHistory obtiene el historial de un jugador
func (rs *ResultsService) GetPlayerHistory(ctx context.Context, player string) ([]models.ArchivedResult, error) {
	history, err := rs.archive.PlayerHistory(ctx, player, rs.leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo historial de %s: %w", player, err)
	}
	return history, nil
}

// GetLeaderboard obtiene la tabla de posiciones. activePlayers lo aporta el llamador.
func (rs *ResultsService) GetLeaderboard(ctx context.Context, activePlayers int) (*models.LeaderboardResponse, error) {
	entries, err := rs.archive.Leaderboard(ctx, rs.leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo tabla de posiciones: %w", err)
	}
	total, err := rs.archive.CountPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error contando jugadores: %w", err)
	}

	for i := range entries {
		entries[i].Avatar = avatars[i%len(avatars)]
	}
	return &models.LeaderboardResponse{
		Leaderboard:   entries,
		TotalPlayers:  total,
		ActivePlayers: activePlayers,
	}, nil
}
