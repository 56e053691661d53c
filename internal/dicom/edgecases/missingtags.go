package edgecases

import (
	"math/rand/v2"
	"slices"
)

// Structure set attributes the ROI extractor reads when present and
// defaults when absent.
var roiTags = []string{
	"ROIGenerationAlgorithm",
	"ROIObservationLabel",
}

// Descriptive patient, study and series attributes. Nothing classifies
// files or computes a DVH from them.
var descriptiveTags = []string{
	"StudyDescription",
	"SeriesDescription",
	"InstitutionName",
	"ReferringPhysicianName",
	"OperatorsName",
	"Manufacturer",
}

// OptionalTags lists every attribute the missing-tags case may leave out.
var OptionalTags = slices.Concat(roiTags, descriptiveTags)

// SelectTagsToOmit picks count distinct optional tags. The first one is
// always a structure set attribute.
func SelectTagsToOmit(rng *rand.Rand, count int) []string {
	if count <= 0 {
		return nil
	}
	if count >= len(OptionalTags) {
		return slices.Clone(OptionalTags)
	}

	first := roiTags[rng.IntN(len(roiTags))]
	rest := slices.DeleteFunc(slices.Clone(OptionalTags), func(t string) bool { return t == first })
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append([]string{first}, rest[:count-1]...)
}
