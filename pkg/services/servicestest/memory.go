// Package servicestest implementaciones en memoria de los stores, para tests.
package servicestest

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/redis"
)

// KV implementa services.SessionStore en memoria
type KV struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
	sets map[string]map[string]struct{}
}

func NewKV() *KV {
	return &KV{
		vals: map[string]string{},
		ttls: map[string]time.Duration{},
		sets: map[string]map[string]struct{}{},
	}
}

func (f *KV) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (f *KV) Set(key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vals[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *KV) Del(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vals, key)
	delete(f.sets, key)
	return nil
}

func (f *KV) AddToSet(key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets[key] == nil {
		f.sets[key] = map[string]struct{}{}
	}
	f.sets[key][member] = struct{}{}
	return nil
}

func (f *KV) RemoveFromSet(key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets[key], member)
	return nil
}

func (f *KV) GetSetMembers(key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (f *KV) GetKeysByPattern(pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.sets {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Catalog implementa services.CatalogStore en memoria
type Catalog struct {
	games    map[string]models.Game
	metadata models.CatalogMetadata
}

func NewCatalog(games ...models.Game) *Catalog {
	c := &Catalog{games: map[string]models.Game{}}
	for _, g := range games {
		c.games[g.ID] = g
	}
	return c
}

func (c *Catalog) SaveCatalog(games []models.Game, metadata models.CatalogMetadata) (int, error) {
	c.games = map[string]models.Game{}
	for _, g := range games {
		c.games[g.ID] = g
	}
	metadata.Total = len(games)
	c.metadata = metadata
	return len(games), nil
}

func (c *Catalog) GetGame(id string) (*models.Game, error) {
	g, ok := c.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, redis.ErrNotFound)
	}
	return &g, nil
}

func (c *Catalog) GetAllGames() ([]models.Game, error) {
	var out []models.Game
	for _, g := range c.games {
		out = append(out, g)
	}
	return out, nil
}

func (c *Catalog) GetGameCount() (int, error) { return len(c.games), nil }

func (c *Catalog) GetMetadata() (map[string]interface{}, error) {
	return map[string]interface{}{"version": c.metadata.Version, "totalGames": c.metadata.Total}, nil
}

func (c *Catalog) HealthCheck() error { return nil }

// Archive implementa services.ResultArchive en memoria
type Archive struct {
	mu      sync.Mutex
	results []models.ArchivedResult
	err     error
}

// FailWith hace que Record devuelva err hasta que se llame con nil
func (a *Archive) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *Archive) Record(_ context.Context, r models.ArchivedResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	for _, existing := range a.results {
		if existing.SessionID == r.SessionID && existing.Pass == r.Pass {
			return nil
		}
	}
	a.results = append(a.results, r)
	return nil
}

func (a *Archive) PlayerHistory(_ context.Context, player string, limit int) ([]models.ArchivedResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.ArchivedResult
	for i := len(a.results) - 1; i >= 0 && len(out) < limit; i-- {
		if a.results[i].PlayerName == player {
			out = append(out, a.results[i])
		}
	}
	return out, nil
}

func (a *Archive) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.LeaderboardEntry
	for i, r := range a.results {
		if i >= limit {
			break
		}
		out = append(out, models.LeaderboardEntry{Position: i + 1, PlayerName: r.PlayerName, Coins: r.Coins})
	}
	return out, nil
}

func (a *Archive) CountPlayers(_ context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	seen := map[string]struct{}{}
	for _, r := range a.results {
		seen[r.PlayerName] = struct{}{}
	}
	return len(seen), nil
}

// TTL devuelve el TTL con el que se guardó key
func (f *KV) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

func (c *Catalog) Metadata() models.CatalogMetadata { return c.metadata }

// Results copia de los resultados archivados, en orden de llegada
func (a *Archive) Results() []models.ArchivedResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.ArchivedResult, len(a.results))
	copy(out, a.results)
	return out
}
