package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/backsoul/citizenquiz/pkg/models"
)

// ResultStore archivo de resultados de sesiones completadas
type ResultStore struct {
	db *sql.DB
}

// Open abre el archivo de resultados con el driver indicado
func Open(ctx context.Context, driver Driver, dsn string) (*ResultStore, error) {
	db, err := openDB(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error { return s.db.Close() }

// Record guarda un resultado. Una misma (sesión, pasada) solo se guarda una vez.
func (s *ResultStore) Record(ctx context.Context, r models.ArchivedResult) error {
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO results
		(session_id,pass,game_id,player_name,score,total,passed,coins,xp,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (session_id, pass) DO NOTHING`,
		r.SessionID, r.Pass, r.GameID, r.PlayerName, r.Score, r.Total, boolInt(r.Passed), r.Coins, r.XP, r.CompletedAt.Unix())
	return err
}

// PlayerHistory resultados de un jugador, del más reciente al más antiguo
func (s *ResultStore) PlayerHistory(ctx context.Context, player string, limit int) ([]models.ArchivedResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,session_id,pass,game_id,player_name,score,total,passed,coins,xp,completed_at
		FROM results WHERE player_name=$1 ORDER BY completed_at DESC, id DESC LIMIT $2`, player, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ArchivedResult
	for rows.Next() {
		var r models.ArchivedResult
		var passed int
		var completed int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Pass, &r.GameID, &r.PlayerName,
			&r.Score, &r.Total, &passed, &r.Coins, &r.XP, &completed); err != nil {
			return nil, err
		}
		r.Passed = passed != 0
		r.CompletedAt = time.Unix(completed, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard mejor resultado de cada jugador, ordenado por monedas y luego score
func (s *ResultStore) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.player_name, r.game_id, r.score, r.total, r.coins
		FROM results r
		WHERE r.id = (
			SELECT r2.id FROM results r2 WHERE r2.player_name = r.player_name
			ORDER BY r2.coins DESC, r2.score DESC, r2.id ASC LIMIT 1)
		ORDER BY r.coins DESC, r.score DESC, r.player_name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.GameID, &e.Score, &e.Total, &e.Coins); err != nil {
			return nil, err
		}
		e.Position = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountPlayers número de jugadores distintos con algún resultado
func (s *ResultStore) CountPlayers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT player_name) FROM results`).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
