package edgecases

import (
	"fmt"
	"slices"
	"strings"
)

// EdgeCaseType represents a category of edge case
type EdgeCaseType string

const (
	SpecialChars EdgeCaseType = "special-chars"
	LongNames    EdgeCaseType = "long-names"
	MissingTags  EdgeCaseType = "missing-tags"
	MessyCase    EdgeCaseType = "messy-case"
	VendorPrefix EdgeCaseType = "vendor-prefix"
)

var descriptions = map[EdgeCaseType]string{
	SpecialChars: "diacritics and apostrophes in patient and ROI names",
	LongNames:    "patient and ROI names at the 64-character LO limit",
	MissingTags:  "optional structure set and study attributes left out",
	MessyCase:    "ROI names in random case with stray separators",
	VendorPrefix: "ROI names carrying planning-system prefixes",
}

// AllEdgeCaseTypes returns all valid edge case types
func AllEdgeCaseTypes() []EdgeCaseType {
	return []EdgeCaseType{SpecialChars, LongNames, MissingTags, MessyCase, VendorPrefix}
}

// Description is a one-line explanation for help output.
func (t EdgeCaseType) Description() string {
	return descriptions[t]
}

// Config holds edge case generation settings
type Config struct {
	Percentage int            // 0-100, share of ROI names (and patients) altered
	Types      []EdgeCaseType // Which edge case types to enable
}

// ParseTypes parses comma-separated edge case types.
// The special value "all" enables every type.
func ParseTypes(input string) ([]EdgeCaseType, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	result := make([]EdgeCaseType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "all" {
			return AllEdgeCaseTypes(), nil
		}
		t := EdgeCaseType(p)
		if _, ok := descriptions[t]; !ok {
			return nil, fmt.Errorf("unknown edge case type %q, valid types: %v", p, AllEdgeCaseTypes())
		}
		if !slices.Contains(result, t) {
			result = append(result, t)
		}
	}
	return result, nil
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.Percentage < 0 || c.Percentage > 100 {
		return fmt.Errorf("edge-cases percentage must be 0-100, got %d", c.Percentage)
	}
	if c.Percentage > 0 && len(c.Types) == 0 {
		return fmt.Errorf("edge-cases enabled but no types specified")
	}
	return nil
}

// IsEnabled returns true if edge cases are enabled
func (c *Config) IsEnabled() bool {
	return c.Percentage > 0 && len(c.Types) > 0
}

// HasType checks if a specific edge case type is enabled
func (c *Config) HasType(t EdgeCaseType) bool {
	return slices.Contains(c.Types, t)
}
