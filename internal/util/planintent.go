package util

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// PlanIntent is the treatment intent recorded in an RT Plan (300A,000A).
type PlanIntent int

const (
	IntentCurative PlanIntent = iota
	IntentPalliative
	IntentProphylactic
	IntentVerification
)

// String returns the DICOM defined term for the intent.
func (p PlanIntent) String() string {
	switch p {
	case IntentPalliative:
		return "PALLIATIVE"
	case IntentProphylactic:
		return "PROPHYLACTIC"
	case IntentVerification:
		return "VERIFICATION"
	default:
		return "CURATIVE"
	}
}

// ParsePlanIntent parses a defined term into a PlanIntent.
func ParsePlanIntent(s string) (PlanIntent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CURATIVE":
		return IntentCurative, nil
	case "PALLIATIVE":
		return IntentPalliative, nil
	case "PROPHYLACTIC":
		return IntentProphylactic, nil
	case "VERIFICATION":
		return IntentVerification, nil
	default:
		return IntentCurative, fmt.Errorf("invalid plan intent: %s (valid: CURATIVE, PALLIATIVE, PROPHYLACTIC, VERIFICATION)", s)
	}
}

// GeneratePlanIntent picks an intent with a clinic-like distribution:
// 70% CURATIVE, 25% PALLIATIVE, 5% PROPHYLACTIC.
func GeneratePlanIntent(rng *rand.Rand) PlanIntent {
	if rng == nil {
		rng = defaultRNG
	}

	r := rng.Float64()
	if r < 0.70 {
		return IntentCurative
	} else if r < 0.95 {
		return IntentPalliative
	}
	return IntentProphylactic
}
