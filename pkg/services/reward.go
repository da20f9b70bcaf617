package services

import (
	"fmt"
	"math"

	"github.com/backsoul/citizenquiz/pkg/engine"
	"github.com/backsoul/citizenquiz/pkg/models"
)

// PassPredicate decide si una sesión aprueba a partir de los conteos crudos
type PassPredicate func(score, total int) bool

// RewardPolicy calcula las monedas ganadas en una sesión
type RewardPolicy func(score, total int, passed bool) int

// NewPassPredicate construye el umbral de un juego. Sin modo usa defaultRatio.
func NewPassPredicate(rule models.PassRule, defaultRatio float64) PassPredicate {
	switch rule.Mode {
	case models.PassAll:
		return func(score, total int) bool { return score == total }
	case models.PassMinCorrect:
		min := int(rule.Value)
		return func(score, total int) bool { return score >= min }
	case models.PassRatio:
		return ratioAtLeast(rule.Value)
	default:
		return ratioAtLeast(defaultRatio)
	}
}

func ratioAtLeast(r float64) PassPredicate {
	return func(score, total int) bool {
		if total == 0 {
			return false
		}
		// tolerancia para productos como 0.7*10
		return float64(score)+1e-9 >= r*float64(total)
	}
}

// NewRewardPolicy construye la política de monedas de un juego
func NewRewardPolicy(rule models.RewardRule) RewardPolicy {
	switch rule.Mode {
	case models.RewardPerCorrect:
		return func(score, _ int, _ bool) int { return rule.Coins * score }
	case models.RewardThreshold:
		meets := ratioAtLeast(rule.Ratio)
		return func(score, total int, _ bool) int {
			if meets(score, total) {
				return rule.Coins
			}
			return 0
		}
	case models.RewardFlat:
		return func(_, _ int, passed bool) int {
			if passed {
				return rule.Coins
			}
			return 0
		}
	default:
		return func(int, int, bool) int { return 0 }
	}
}

// ValidateRules rechaza reglas de aprobado o recompensa que no se pueden aplicar
// a los ítems del juego. Sin modo se usan los valores por defecto.
func ValidateRules(g models.Game) error {
	switch g.Pass.Mode {
	case "", models.PassAll:
	case models.PassMinCorrect:
		if g.Pass.Value < 0 || g.Pass.Value != math.Trunc(g.Pass.Value) || int(g.Pass.Value) > len(g.Items) {
			return fmt.Errorf("%w: min_correct %v con %d ítems", engine.ErrInvalidConfiguration, g.Pass.Value, len(g.Items))
		}
	case models.PassRatio:
		if !validRatio(g.Pass.Value) {
			return fmt.Errorf("%w: ratio de aprobado %v fuera de [0,1]", engine.ErrInvalidConfiguration, g.Pass.Value)
		}
	default:
		return fmt.Errorf("%w: modo de aprobado desconocido %q", engine.ErrInvalidConfiguration, g.Pass.Mode)
	}

	switch g.Reward.Mode {
	case "", models.RewardPerCorrect, models.RewardFlat:
	case models.RewardThreshold:
		if !validRatio(g.Reward.Ratio) {
			return fmt.Errorf("%w: ratio de recompensa %v fuera de [0,1]", engine.ErrInvalidConfiguration, g.Reward.Ratio)
		}
	default:
		return fmt.Errorf("%w: modo de recompensa desconocido %q", engine.ErrInvalidConfiguration, g.Reward.Mode)
	}
	if g.Reward.Coins < 0 {
		return fmt.Errorf("%w: monedas negativas (%d)", engine.ErrInvalidConfiguration, g.Reward.Coins)
	}
	if g.XP < 0 {
		return fmt.Errorf("%w: xp negativa (%d)", engine.ErrInvalidConfiguration, g.XP)
	}
	return nil
}

func validRatio(r float64) bool { return r >= 0 && r <= 1 }
