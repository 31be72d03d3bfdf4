package blockgraph

import "strings"

// Kind classifies what a reasoning block contributes to the case.
type Kind string

const (
	KindObservation      Kind = "observation"
	KindInterpretation   Kind = "interpretation"
	KindConsideration    Kind = "consideration"
	KindContraindication Kind = "contraindication"
	KindDecision         Kind = "decision"
)

// FallbackKind is assigned to blocks whose kind is missing or unrecognized.
const FallbackKind = KindObservation

// AllKinds returns every kind in reasoning order.
func AllKinds() []Kind {
	return []Kind{
		KindObservation,
		KindInterpretation,
		KindConsideration,
		KindContraindication,
		KindDecision,
	}
}

// NonTerminalKinds returns the kinds that precede a decision.
func NonTerminalKinds() []Kind {
	return []Kind{
		KindObservation,
		KindInterpretation,
		KindConsideration,
		KindContraindication,
	}
}

// ParseKind maps s onto a Kind, ignoring case and surrounding space.
// Unknown values yield FallbackKind and ok=false.
func ParseKind(s string) (k Kind, ok bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindObservation:
		return KindObservation, true
	case KindInterpretation:
		return KindInterpretation, true
	case KindConsideration:
		return KindConsideration, true
	case KindContraindication:
		return KindContraindication, true
	case KindDecision:
		return KindDecision, true
	}
	return FallbackKind, false
}

// Valid reports whether k is one of the five defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindObservation, KindInterpretation, KindConsideration, KindContraindication, KindDecision:
		return true
	}
	return false
}

// DisplayName returns a human-readable label.
func (k Kind) DisplayName() string {
	switch k {
	case KindObservation:
		return "Observation"
	case KindInterpretation:
		return "Interpretation"
	case KindConsideration:
		return "Consideration"
	case KindContraindication:
		return "Contraindication"
	case KindDecision:
		return "Decision"
	default:
		return string(k)
	}
}
