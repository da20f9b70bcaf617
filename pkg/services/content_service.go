package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/backsoul/citizenquiz/pkg/engine"
	"github.com/backsoul/citizenquiz/pkg/models"
	"github.com/backsoul/citizenquiz/pkg/redis"
)

// ErrGameNotFound el juego no está en el catálogo
var ErrGameNotFound = errors.New("juego no encontrado")

// CatalogStore dónde vive el catálogo de juegos
type CatalogStore interface {
	SaveCatalog(games []models.Game, metadata models.CatalogMetadata) (int, error)
	GetGame(id string) (*models.Game, error)
	GetAllGames() ([]models.Game, error)
	GetGameCount() (int, error)
	GetMetadata() (map[string]interface{}, error)
	HealthCheck() error
}

// NextGameResolver devuelve el juego que sigue a currentID, o nil si es el último
type NextGameResolver func(currentID string) *models.GameRef

// ContentService maneja la lógica de negocio del catálogo de juegos
type ContentService struct {
	store CatalogStore
}

// NewContentService crea una nueva instancia del servicio
func NewContentService(store CatalogStore) *ContentService {
	return &ContentService{store: store}
}

// LoadGamesFromFile carga el catálogo desde un archivo JSON
func (s *ContentService) LoadGamesFromFile(filePath string) (int, error) {
	log.Printf("📂 Cargando juegos desde: %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("error leyendo archivo JSON: %w", err)
	}
	return s.LoadGames(data)
}

// LoadGames valida cada juego con el motor y guarda los válidos.
// Un juego inválido se descarta sin impedir la carga del resto.
func (s *ContentService) LoadGames(data []byte) (int, error) {
	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return 0, fmt.Errorf("error parsing catálogo: %w", err)
	}

	valid := make([]models.Game, 0, len(catalog.Games))
	seen := make(map[string]struct{}, len(catalog.Games))
	for _, g := range catalog.Games {
		if g.ID == "" {
			log.Printf("⚠️ Juego sin id descartado (%q)", g.Title)
			continue
		}
		if _, dup := seen[g.ID]; dup {
			log.Printf("⚠️ Juego %s repetido, se descarta", g.ID)
			continue
		}
		if err := engine.ValidateItems(g.Items); err != nil {
			log.Printf("⚠️ Juego %s descartado: %v", g.ID, err)
			continue
		}
		if err := ValidateRules(g); err != nil {
			log.Printf("⚠️ Juego %s descartado: %v", g.ID, err)
			continue
		}
		seen[g.ID] = struct{}{}
		valid = append(valid, g)
	}

	// un archivo sin ningún juego válido no reemplaza el catálogo actual
	if len(valid) == 0 && len(catalog.Games) > 0 {
		return 0, fmt.Errorf("%w: ninguno de los %d juegos es válido, se mantiene el catálogo actual",
			engine.ErrInvalidConfiguration, len(catalog.Games))
	}

	saved, err := s.store.SaveCatalog(valid, catalog.Metadata)
	if err != nil {
		return saved, fmt.Errorf("error guardando catálogo: %w", err)
	}
	log.Printf("✅ %d de %d juegos cargados", saved, len(catalog.Games))
	return saved, nil
}

// GetGame obtiene un juego con sus respuestas; solo para uso interno
func (s *ContentService) GetGame(id string) (*models.Game, error) {
	game, err := s.store.GetGame(id)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error obteniendo juego %s: %w", id, err)
	}
	return game, nil
}

// ListGames devuelve las referencias del catálogo en orden de currículo
func (s *ContentService) ListGames() ([]models.GameRef, error) {
	games, err := s.store.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo juegos: %w", err)
	}
	refs := make([]models.GameRef, len(games))
	for i, g := range games {
		refs[i] = g.Ref()
	}
	sortRefs(refs)
	return refs, nil
}

// Resolver construye el resolvedor del siguiente juego con el catálogo actual
func (s *ContentService) Resolver() (NextGameResolver, error) {
	refs, err := s.ListGames()
	if err != nil {
		return nil, err
	}
	return NewCatalogResolver(refs), nil
}

func (s *ContentService) GetGameCount() (int, error) {
	count, err := s.store.GetGameCount()
	if err != nil {
		return 0, fmt.Errorf("error obteniendo conteo de juegos: %w", err)
	}
	return count, nil
}

func (s *ContentService) GetMetadata() (interface{}, error) {
	metadata, err := s.store.GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo metadatos: %w", err)
	}
	return metadata, nil
}

// HealthCheck verifica que el servicio esté funcionando
func (s *ContentService) HealthCheck() error {
	if err := s.store.HealthCheck(); err != nil {
		return fmt.Errorf("error en health check del catálogo: %w", err)
	}
	return nil
}

// NewCatalogResolver resuelve el siguiente juego según el orden de refs.
// Es una función pura: copia refs y no consulta estado compartido.
func NewCatalogResolver(refs []models.GameRef) NextGameResolver {
	ordered := make([]models.GameRef, len(refs))
	copy(ordered, refs)
	sortRefs(ordered)

	index := make(map[string]int, len(ordered))
	for i, r := range ordered {
		index[r.ID] = i
	}
	return func(currentID string) *models.GameRef {
		i, ok := index[currentID]
		if !ok || i+1 >= len(ordered) {
			return nil
		}
		next := ordered[i+1]
		return &next
	}
}

func sortRefs(refs []models.GameRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Order != refs[j].Order {
			return refs[i].Order < refs[j].Order
		}
		return refs[i].ID < refs[j].ID
	})
}
