package edgecases

import (
	"math/rand/v2"
	"testing"
)

func TestApplicator_ShouldApply(t *testing.T) {
	config := Config{Percentage: 50, Types: []EdgeCaseType{SpecialChars}}
	app := NewApplicator(config, rand.New(rand.NewPCG(42, 42)))

	applied := 0
	for i := 0; i < 100; i++ {
		if app.ShouldApply() {
			applied++
		}
	}
	// Should be roughly 50% (allow 30-70 range for randomness)
	if applied < 30 || applied > 70 {
		t.Errorf("50%% should apply ~50 times in 100, got %d", applied)
	}
}

func TestApplicator_ApplyToROIName(t *testing.T) {
	tests := []struct {
		name    string
		types   []EdgeCaseType
		changed bool
	}{
		{"messy case", []EdgeCaseType{MessyCase}, true},
		{"vendor prefix", []EdgeCaseType{VendorPrefix}, true},
		{"special chars", []EdgeCaseType{SpecialChars}, true},
		{"long names", []EdgeCaseType{LongNames}, true},
		{"missing tags leaves names alone", []EdgeCaseType{MissingTags}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApplicator(Config{Percentage: 100, Types: tt.types}, rand.New(rand.NewPCG(42, 42)))
			// "Parotid_L" differs from every messy-case variant
			got := app.ApplyToROIName("Parotid_L")
			if (got != "Parotid_L") != tt.changed {
				t.Errorf("ApplyToROIName() = %q, changed want %v", got, tt.changed)
			}
		})
	}
}

func TestApplicator_ApplyToPatientName(t *testing.T) {
	app := NewApplicator(Config{Percentage: 100, Types: []EdgeCaseType{SpecialChars}}, rand.New(rand.NewPCG(42, 42)))
	if name := app.ApplyToPatientName("M", "SMITH^JOHN"); name == "SMITH^JOHN" {
		t.Error("Edge case should modify the name")
	}

	app = NewApplicator(Config{Percentage: 100, Types: []EdgeCaseType{VendorPrefix}}, rand.New(rand.NewPCG(42, 42)))
	if name := app.ApplyToPatientName("M", "SMITH^JOHN"); name != "SMITH^JOHN" {
		t.Errorf("vendor-prefix should not touch patient names, got %q", name)
	}
}

func TestApplicator_GetTagsToOmit(t *testing.T) {
	app := NewApplicator(Config{Percentage: 100, Types: []EdgeCaseType{MissingTags}}, rand.New(rand.NewPCG(42, 42)))
	if tags := app.GetTagsToOmit(); len(tags) == 0 {
		t.Error("Should return tags to omit when MissingTags is enabled")
	}

	app = NewApplicator(Config{Percentage: 100, Types: []EdgeCaseType{SpecialChars}}, rand.New(rand.NewPCG(42, 42)))
	if tags := app.GetTagsToOmit(); len(tags) != 0 {
		t.Error("Should return empty when MissingTags is not enabled")
	}
}
