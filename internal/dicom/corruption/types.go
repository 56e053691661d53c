package corruption

import (
	"fmt"
	"strings"
)

// CorruptionType names one kind of awkward input a synthetic patient
// directory can contain.
type CorruptionType string

// Vendor types add private elements to image slices. File types drop extra
// unreadable files next to the series.
const (
	SiemensCSA     CorruptionType = "siemens-csa"
	GEPrivate      CorruptionType = "ge-private"
	PhilipsPrivate CorruptionType = "philips-private"

	NotDICOM  CorruptionType = "not-dicom"
	Empty     CorruptionType = "empty"
	Truncated CorruptionType = "truncated"
	BadMagic  CorruptionType = "bad-magic"
)

// AllCorruptionTypes returns all valid corruption types
func AllCorruptionTypes() []CorruptionType {
	return []CorruptionType{SiemensCSA, GEPrivate, PhilipsPrivate, NotDICOM, Empty, Truncated, BadMagic}
}

// IsFileLevel reports whether t produces a standalone junk file rather than
// private elements inside a slice.
func (t CorruptionType) IsFileLevel() bool {
	switch t {
	case NotDICOM, Empty, Truncated, BadMagic:
		return true
	}
	return false
}

// Config holds corruption generation settings
type Config struct {
	Types []CorruptionType
}

// ParseTypes parses comma-separated corruption types.
// The special value "all" enables every type.
func ParseTypes(input string) ([]CorruptionType, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	valid := make(map[CorruptionType]bool)
	for _, t := range AllCorruptionTypes() {
		valid[t] = true
	}

	parts := strings.Split(input, ",")
	result := make([]CorruptionType, 0, len(parts))
	seen := make(map[CorruptionType]bool)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "all" {
			return AllCorruptionTypes(), nil
		}
		t := CorruptionType(p)
		if !valid[t] {
			return nil, fmt.Errorf("unknown corruption type %q, valid types: %v (or 'all')", p, AllCorruptionTypes())
		}
		if !seen[t] {
			result = append(result, t)
			seen[t] = true
		}
	}
	return result, nil
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if len(c.Types) == 0 {
		return fmt.Errorf("corruption enabled but no types specified")
	}
	for _, t := range c.Types {
		if !t.IsFileLevel() && t != SiemensCSA && t != GEPrivate && t != PhilipsPrivate {
			return fmt.Errorf("unknown corruption type %q", t)
		}
	}
	return nil
}

// IsEnabled returns true if corruption is enabled
func (c *Config) IsEnabled() bool {
	return len(c.Types) > 0
}

// HasType checks if a specific corruption type is enabled
func (c *Config) HasType(t CorruptionType) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// FileTypes returns the enabled file-level types in configuration order.
func (c *Config) FileTypes() []CorruptionType {
	var out []CorruptionType
	for _, t := range c.Types {
		if t.IsFileLevel() {
			out = append(out, t)
		}
	}
	return out
}
