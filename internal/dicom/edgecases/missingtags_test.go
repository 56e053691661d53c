package edgecases

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestSelectTagsToOmit(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "none", count: 0, want: 0},
		{name: "one", count: 1, want: 1},
		{name: "three", count: 3, want: 3},
		{name: "more than available", count: 100, want: len(OptionalTags)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(42, 42))
			tags := SelectTagsToOmit(rng, tt.count)
			if len(tags) != tt.want {
				t.Fatalf("got %d tags, want %d", len(tags), tt.want)
			}
			seen := map[string]bool{}
			for _, tag := range tags {
				if !slices.Contains(OptionalTags, tag) {
					t.Errorf("Tag %s not in OptionalTags", tag)
				}
				if seen[tag] {
					t.Errorf("Tag %s selected twice", tag)
				}
				seen[tag] = true
			}
			if tt.want > 0 && !slices.Contains(roiTags, tags[0]) {
				t.Errorf("first omitted tag %s is not a structure set attribute", tags[0])
			}
		})
	}
}

func TestSelectTagsToOmit_DoesNotAliasOptionalTags(t *testing.T) {
	tags := SelectTagsToOmit(rand.New(rand.NewPCG(1, 1)), len(OptionalTags))
	tags[0] = "changed"
	if OptionalTags[0] == "changed" {
		t.Error("returned slice shares storage with OptionalTags")
	}
}

func TestOptionalTagsExcludeRequiredOnes(t *testing.T) {
	for _, required := range []string{"Modality", "ROINumber", "ROIName", "ReferencedROINumber", "ContourData", "DoseGridScaling"} {
		if slices.Contains(OptionalTags, required) {
			t.Errorf("%s must never be omitted", required)
		}
	}
}
