package edgecases

import (
	"math/rand/v2"
	"strings"
)

// vendorPrefixes are the markers planning systems and clinics put in front
// of helper or imported structures.
var vendorPrefixes = []string{"z_", "Z", "x", "ECL_", "_", "NS_"}

// MessyCaseVariant changes the case, spacing or separators of name while
// keeping its letters.
func MessyCaseVariant(name string, rng *rand.Rand) string {
	switch rng.IntN(5) {
	case 0:
		return strings.ToLower(name)
	case 1:
		return strings.ToUpper(name)
	case 2:
		return " " + name + "  "
	case 3:
		return strings.ReplaceAll(name, "_", "-")
	default:
		return strings.ReplaceAll(name, "_", " ")
	}
}

// PrefixedVariant prepends a vendor or clinic marker to name.
func PrefixedVariant(name string, rng *rand.Rand) string {
	return vendorPrefixes[rng.IntN(len(vendorPrefixes))] + name
}

// SpecialCharROIName decorates name with punctuation seen in clinical
// structure sets.
func SpecialCharROIName(name string, rng *rand.Rand) string {
	decorations := []func(string) string{
		func(s string) string { return s + "*" },
		func(s string) string { return s + "#1" },
		func(s string) string { return s + " (old)" },
		func(s string) string { return s + "/" },
		func(s string) string { return "é" + s },
	}
	return decorations[rng.IntN(len(decorations))](name)
}
