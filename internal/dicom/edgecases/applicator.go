package edgecases

import "math/rand/v2"

// Applicator applies edge cases to generated values
type Applicator struct {
	config Config
	rng    *rand.Rand
}

// NewApplicator creates a new edge case applicator
func NewApplicator(config Config, rng *rand.Rand) *Applicator {
	return &Applicator{config: config, rng: rng}
}

// ShouldApply returns true if edge cases should apply to the next value
func (a *Applicator) ShouldApply() bool {
	return a.rng.IntN(100) < a.config.Percentage
}

// SelectEdgeCaseType randomly selects which edge case type to apply
func (a *Applicator) SelectEdgeCaseType() EdgeCaseType {
	return a.config.Types[a.rng.IntN(len(a.config.Types))]
}

// ApplyToROIName returns a variant of a clean ROI name the way planning
// systems and hurried planners actually spell them.
func (a *Applicator) ApplyToROIName(original string) string {
	switch a.SelectEdgeCaseType() {
	case MessyCase:
		return MessyCaseVariant(original, a.rng)
	case VendorPrefix:
		return PrefixedVariant(original, a.rng)
	case SpecialChars:
		return SpecialCharROIName(original, a.rng)
	case LongNames:
		return LongROIName(original, a.rng)
	default:
		return original
	}
}

// ApplyToPatientName applies edge cases to a patient name
func (a *Applicator) ApplyToPatientName(sex, original string) string {
	switch a.SelectEdgeCaseType() {
	case SpecialChars:
		return SpecialCharPatientName(sex, a.rng)
	case LongNames:
		return LongPatientName(a.rng)
	default:
		return original
	}
}

// GetTagsToOmit returns optional RT tags to leave out of generated objects
func (a *Applicator) GetTagsToOmit() []string {
	if !a.config.HasType(MissingTags) {
		return nil
	}
	count := 1 + a.rng.IntN(3) // Omit 1-3 tags
	return SelectTagsToOmit(a.rng, count)
}
