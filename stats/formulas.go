// Package stats implements the generic stack-scaling evaluators the content
// boundary references. The simulation never hard-codes a specific item or
// character; it evaluates whichever formula a definition names.
package stats

import "fmt"

// FormulaKind enumerates the supported stack-scaling curves.
type FormulaKind string

const (
	// FormulaLinear adds Scale per stack on top of Base.
	FormulaLinear FormulaKind = "linear"
	// FormulaHyperbolic approaches Cap asymptotically as stacks grow.
	FormulaHyperbolic FormulaKind = "hyperbolic"
	// FormulaCappedChance adds Scale per stack, clamped to Cap.
	FormulaCappedChance FormulaKind = "cappedChance"
	// FormulaUnique yields Base once regardless of stack count.
	FormulaUnique FormulaKind = "unique"
)

// Formula describes one scaling curve. Base and Scale are curve-specific:
// linear uses Base + Scale*stacks, hyperbolic uses Cap*(1 - 1/(1+Scale*stacks)),
// cappedChance uses min(Base+Scale*stacks, Cap), unique ignores stacks.
type Formula struct {
	Kind  FormulaKind `json:"kind"`
	Base  float64     `json:"base"`
	Scale float64     `json:"scale"`
	Cap   float64     `json:"cap,omitempty"`
}

// Validate rejects unknown kinds up front; an unrecognized formula in content
// is a configuration bug, never a runtime fallback.
func (f Formula) Validate() error {
	switch f.Kind {
	case FormulaLinear, FormulaHyperbolic, FormulaCappedChance, FormulaUnique:
		return nil
	default:
		return fmt.Errorf("stats: unknown formula kind %q", f.Kind)
	}
}

// Eval computes the formula value for the given stack count. Zero or negative
// stacks always evaluate to zero.
func (f Formula) Eval(stacks int) float64 {
	if stacks <= 0 {
		return 0
	}
	s := float64(stacks)
	switch f.Kind {
	case FormulaLinear:
		return f.Base + f.Scale*s
	case FormulaHyperbolic:
		denom := 1 + f.Scale*s
		if denom <= 0 {
			return f.Cap
		}
		return f.Cap * (1 - 1/denom)
	case FormulaCappedChance:
		v := f.Base + f.Scale*s
		if f.Cap > 0 && v > f.Cap {
			return f.Cap
		}
		return v
	case FormulaUnique:
		return f.Base
	default:
		return 0
	}
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
