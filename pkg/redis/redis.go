package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	gameKeyPrefix = "quiz:game:"
	gameIDsKey    = "quiz:game_ids"
	metadataKey   = "quiz:metadata"
)

// ErrNotFound la clave no existe en Redis
var ErrNotFound = errors.New("not found")

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient crea una nueva instancia del cliente Redis y verifica la conexión.
// ctx solo acota el ping inicial; los comandos posteriores no dependen de él.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error conectando a Redis en %s: %w", addr, err)
	}

	log.Println("✅ Conexión exitosa a Redis")

	return newRedisClient(rdb), nil
}

func newRedisClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{
		client: rdb,
		ctx:    context.Background(),
	}
}

// SaveCatalog reemplaza el catálogo de juegos guardado en Redis. El reemplazo
// va en una sola transacción: un lector ve el catálogo anterior o el nuevo.
func (r *RedisClient) SaveCatalog(games []models.Game, metadata models.CatalogMetadata) (int, error) {
	log.Printf("📚 Guardando %d juegos en Redis...", len(games))

	payloads := make(map[string][]byte, len(games))
	ids := make([]interface{}, 0, len(games))
	for _, game := range games {
		gameJSON, err := json.Marshal(game)
		if err != nil {
			log.Printf("❌ Error serializando juego %s: %v", game.ID, err)
			continue
		}
		payloads[game.ID] = gameJSON
		ids = append(ids, game.ID)
	}

	metadata.Total = len(ids)
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("error serializing metadata: %w", err)
	}

	previous, err := r.GetSetMembers(gameIDsKey)
	if err != nil {
		return 0, fmt.Errorf("error getting game ids: %w", err)
	}

	_, err = r.client.TxPipelined(r.ctx, func(pipe redis.Pipeliner) error {
		for _, id := range previous {
			if _, keep := payloads[id]; !keep {
				pipe.Del(r.ctx, gameKeyPrefix+id)
			}
		}
		pipe.Del(r.ctx, gameIDsKey)
		for id, gameJSON := range payloads {
			pipe.Set(r.ctx, gameKeyPrefix+id, gameJSON, 0)
		}
		if len(ids) > 0 {
			pipe.SAdd(r.ctx, gameIDsKey, ids...)
		}
		pipe.Set(r.ctx, metadataKey, metadataJSON, 0)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error saving catalog: %w", err)
	}
	return len(ids), nil
}

// GetGame obtiene un juego específico por ID
func (r *RedisClient) GetGame(id string) (*models.Game, error) {
	gameJSON, err := r.Get(gameKeyPrefix + id)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(gameJSON), &game); err != nil {
		return nil, fmt.Errorf("error parsing game: %w", err)
	}
	return &game, nil
}

// GetAllGames obtiene todos los juegos, sin orden
func (r *RedisClient) GetAllGames() ([]models.Game, error) {
	ids, err := r.GetSetMembers(gameIDsKey)
	if err != nil {
		return nil, fmt.Errorf("error getting game ids: %w", err)
	}

	var games []models.Game
	for _, id := range ids {
		game, err := r.GetGame(id)
		if err != nil {
			log.Printf("⚠️ Error obteniendo juego %s: %v", id, err)
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}

// GetGameCount obtiene el número total de juegos en Redis
func (r *RedisClient) GetGameCount() (int, error) {
	count, err := r.client.SCard(r.ctx, gameIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting game count: %w", err)
	}
	return int(count), nil
}

// GetMetadata obtiene los metadatos del catálogo
func (r *RedisClient) GetMetadata() (map[string]interface{}, error) {
	metadataJSON, err := r.Get(metadataKey)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return nil, fmt.Errorf("error parsing metadata: %w", err)
	}
	return metadata, nil
}

// Get obtiene un valor; ErrNotFound si la clave no existe
func (r *RedisClient) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting %s: %w", key, err)
	}
	return val, nil
}

// Set guarda un valor con TTL (0 = sin expiración)
func (r *RedisClient) Set(key, value string, ttl time.Duration) error {
	return r.client.Set(r.ctx, key, value, ttl).Err()
}

func (r *RedisClient) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

func (r *RedisClient) AddToSet(key, member string) error {
	return r.client.SAdd(r.ctx, key, member).Err()
}

func (r *RedisClient) RemoveFromSet(key, member string) error {
	return r.client.SRem(r.ctx, key, member).Err()
}

func (r *RedisClient) GetSetMembers(key string) ([]string, error) {
	return r.client.SMembers(r.ctx, key).Result()
}

// GetKeysByPattern recorre las claves con SCAN para no bloquear Redis
func (r *RedisClient) GetKeysByPattern(pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(r.ctx, 0, pattern, 100).Iterator()
	for iter.Next(r.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", pattern, err)
	}
	return keys, nil
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck() error {
	if _, err := r.client.Ping(r.ctx).Result(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
