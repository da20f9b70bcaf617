package models

import "github.com/backsoul/citizenquiz/pkg/engine"

// Modos de recompensa por juego
const (
	RewardPerCorrect = "per_correct"
	RewardThreshold  = "threshold"
	RewardFlat       = "flat"
)

// Modos de aprobado por juego
const (
	PassAll        = "all"
	PassMinCorrect = "min_correct"
	PassRatio      = "ratio"
)

// RewardRule cuántas monedas da un juego. Es configuración del juego, no del motor.
type RewardRule struct {
	Mode  string  `json:"mode"`
	Coins int     `json:"coins"`
	Ratio float64 `json:"ratio,omitempty"` // solo RewardThreshold
}

// PassRule umbral de aprobado de un juego
type PassRule struct {
	Mode  string  `json:"mode"`
	Value float64 `json:"value,omitempty"`
}

// Game estructura para representar un mini-juego del catálogo
type Game struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Category string        `json:"category,omitempty"`
	Order    int           `json:"order"`
	Items    []engine.Item `json:"items"`
	Reward   RewardRule    `json:"reward"`
	Pass     PassRule      `json:"pass"`
	XP       int           `json:"xp,omitempty"`
}

// Ref devuelve la referencia de navegación del juego
func (g Game) Ref() GameRef {
	return GameRef{ID: g.ID, Title: g.Title, Path: "/games/" + g.ID, Order: g.Order}
}

// GameRef referencia a un juego para navegar al siguiente
type GameRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Order int    `json:"order"`
}

// CatalogMetadata metadatos del catálogo
type CatalogMetadata struct {
	Total       int    `json:"totalGames"`
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Description string `json:"description"`
}

// Catalog estructura para el JSON completo
type Catalog struct {
	Games    []Game          `json:"games"`
	Metadata CatalogMetadata `json:"metadata"`
}

// PublicOption opción sin las marcas de respuesta correcta
type PublicOption struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// PublicItem lo que ve el jugador de un ítem
type PublicItem struct {
	ID        string         `json:"id"`
	Kind      engine.Kind    `json:"kind"`
	Prompt    string         `json:"prompt"`
	Options   []PublicOption `json:"options,omitempty"`
	MinLength int            `json:"minLength,omitempty"`
}

// NewPublicItem quita IsCorrect, Ignore y ShouldIgnore de un ítem
func NewPublicItem(it engine.Item) PublicItem {
	pub := PublicItem{ID: it.ID, Kind: it.Kind, Prompt: it.Prompt, MinLength: it.MinLength}
	for _, o := range it.Options {
		pub.Options = append(pub.Options, PublicOption{ID: o.ID, Label: o.Label, Icon: o.Icon})
	}
	return pub
}

// PublicGame un juego sin respuestas
type PublicGame struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Category string       `json:"category,omitempty"`
	Items    []PublicItem `json:"items"`
	XP       int          `json:"xp,omitempty"`
}

func NewPublicGame(g Game) PublicGame {
	items := make([]PublicItem, len(g.Items))
	for i, it := range g.Items {
		items[i] = NewPublicItem(it)
	}
	return PublicGame{ID: g.ID, Title: g.Title, Category: g.Category, Items: items, XP: g.XP}
}

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GameResponse respuesta específica para juegos
type GameResponse struct {
	Game     *PublicGame `json:"game,omitempty"`
	Games    []GameRef   `json:"games,omitempty"`
	Next     *GameRef    `json:"next,omitempty"`
	Count    int         `json:"count,omitempty"`
	Metadata interface{} `json:"metadata,omitempty"`
}
