package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifica la variante de un ítem
type Kind string

const (
	KindChoice         Kind = "choice"
	KindClassification Kind = "classification"
	KindReflection     Kind = "reflection"
)

// Option una respuesta seleccionable. Label e Icon son opacos para el motor.
type Option struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Icon      string `json:"icon,omitempty"`
	IsCorrect bool   `json:"isCorrect,omitempty"` // solo para KindChoice
	Ignore    bool   `json:"ignore,omitempty"`    // solo para KindClassification: la acción "ignorar"
}

// Item una pregunta, escenario o reflexión dentro de una sesión
type Item struct {
	ID           string   `json:"id"`
	Kind         Kind     `json:"kind"`
	Prompt       string   `json:"prompt"`
	Options      []Option `json:"options,omitempty"`
	ShouldIgnore bool     `json:"shouldIgnore,omitempty"` // KindClassification
	MinLength    int      `json:"minLength,omitempty"`    // KindReflection, en runas
}

func (it Item) option(id string) (Option, bool) {
	for _, o := range it.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func (it Item) clone() Item {
	out := it
	if it.Options != nil {
		out.Options = make([]Option, len(it.Options))
		copy(out.Options, it.Options)
	}
	return out
}

// grade decide si la opción elegida es correcta según la variante del ítem
func (it Item) grade(o Option) bool {
	switch it.Kind {
	case KindClassification:
		return o.Ignore == it.ShouldIgnore
	default:
		return o.IsCorrect
	}
}

// meetsLength aplica el predicado de longitud mínima de las reflexiones
func (it Item) meetsLength(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= it.MinLength
}

func (it Item) validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: item without id", ErrInvalidConfiguration)
	}

	switch it.Kind {
	case KindChoice, KindClassification:
	case KindReflection:
		if len(it.Options) > 0 {
			return fmt.Errorf("%w: reflection item %q must not have options", ErrInvalidConfiguration, it.ID)
		}
		if it.MinLength < 0 {
			return fmt.Errorf("%w: reflection item %q has negative minimum length", ErrInvalidConfiguration, it.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: item %q has unknown kind %q", ErrInvalidConfiguration, it.ID, it.Kind)
	}

	if len(it.Options) < 2 {
		return fmt.Errorf("%w: item %q has %d options, need at least 2", ErrInvalidConfiguration, it.ID, len(it.Options))
	}

	seen := make(map[string]struct{}, len(it.Options))
	correct, ignore := 0, 0
	for _, o := range it.Options {
		if o.ID == "" {
			return fmt.Errorf("%w: item %q has an option without id", ErrInvalidConfiguration, it.ID)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: item %q repeats option %q", ErrInvalidConfiguration, it.ID, o.ID)
		}
		seen[o.ID] = struct{}{}
		if o.IsCorrect {
			correct++
		}
		if o.Ignore {
			ignore++
		}
	}

	if it.Kind == KindChoice && correct != 1 {
		return fmt.Errorf("%w: item %q has %d correct options, need exactly 1", ErrInvalidConfiguration, it.ID, correct)
	}
	if it.Kind == KindClassification && (ignore == 0 || ignore == len(it.Options)) {
		return fmt.Errorf("%w: item %q needs both an ignore and an accept option", ErrInvalidConfiguration, it.ID)
	}
	return nil
}

// ValidateItems comprueba una lista de ítems sin crear una sesión
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidConfiguration)
	}
	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		if err := it.validate(); err != nil {
			return err
		}
		if _, dup := ids[it.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidConfiguration, it.ID)
		}
		ids[it.ID] = struct{}{}
	}
	return nil
}
