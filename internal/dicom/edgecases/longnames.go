package edgecases

import (
	"math/rand/v2"
	"strings"
)

// DICOMLOMaxLength is the maximum length of an LO value such as ROIName.
const DICOMLOMaxLength = 64

var longLastNames = []string{
	"ALEXANDROPOULOSWILLIAMSONBERG",
	"VANDENBERGHEMONTGOMERYSMITH",
	"CHRISTODOULOPOULOSSMITHBAUER",
}

var longFirstNames = []string{
	"ALEXANDERMAXIMILIANWILLIAM",
	"ELIZABETHCATHERINEANNAMARIE",
	"MARGARETISABELLAVICTORIAJANE",
}

var roiSuffixes = []string{
	"_PLANNING_TARGET_VOLUME",
	"_DO_NOT_USE_FOR_OPTIMIZATION",
	"_EXPANDED_3MM_CROPPED_FROM_EXTERNAL",
	"_CONTOURED_ON_PLANNING_CT_SERIES",
}

// LongPatientName builds a family^given name truncated at the LO limit.
func LongPatientName(rng *rand.Rand) string {
	name := longLastNames[rng.IntN(len(longLastNames))] + "^" + longFirstNames[rng.IntN(len(longFirstNames))]
	if len(name) > DICOMLOMaxLength {
		name = name[:DICOMLOMaxLength]
	}
	return name
}

// LongROIName extends name with descriptive suffixes up to the LO limit.
func LongROIName(name string, rng *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString(name)
	for sb.Len() < DICOMLOMaxLength {
		sb.WriteString(roiSuffixes[rng.IntN(len(roiSuffixes))])
	}
	return sb.String()[:DICOMLOMaxLength]
}
