// Package util provides helpers shared by the rtforge packages: natural
// sorting, UID generation, patient names and the standard ROI name registry.
package util

import (
	"fmt"
	"strings"
)

// ROICategory groups standard ROI names by their clinical role.
type ROICategory int

const (
	// CategoryTarget covers treatment volumes (GTV, CTV, PTV...).
	CategoryTarget ROICategory = iota
	// CategoryOrganAtRisk covers normal tissue structures.
	CategoryOrganAtRisk
	// CategoryExternal covers the patient outline and support structures.
	CategoryExternal
)

// String returns the string representation of a ROICategory.
func (c ROICategory) String() string {
	switch c {
	case CategoryTarget:
		return "Target"
	case CategoryOrganAtRisk:
		return "OrganAtRisk"
	case CategoryExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// ROIInfo describes a standard ROI name.
type ROIInfo struct {
	Name     string
	Category ROICategory
}

// roiRegistry maps normalized ROI names to their ROIInfo.
var roiRegistry = map[string]ROIInfo{
	// Targets
	"gtv": {Name: "GTV", Category: CategoryTarget},
	"ctv": {Name: "CTV", Category: CategoryTarget},
	"ptv": {Name: "PTV", Category: CategoryTarget},
	"itv": {Name: "ITV", Category: CategoryTarget},

	// Organs at risk
	"brain":        {Name: "Brain", Category: CategoryOrganAtRisk},
	"brainstem":    {Name: "Brainstem", Category: CategoryOrganAtRisk},
	"spinalcord":   {Name: "SpinalCord", Category: CategoryOrganAtRisk},
	"chiasm":       {Name: "Chiasm", Category: CategoryOrganAtRisk},
	"opticnrv_l":   {Name: "OpticNrv_L", Category: CategoryOrganAtRisk},
	"opticnrv_r":   {Name: "OpticNrv_R", Category: CategoryOrganAtRisk},
	"eye_l":        {Name: "Eye_L", Category: CategoryOrganAtRisk},
	"eye_r":        {Name: "Eye_R", Category: CategoryOrganAtRisk},
	"lens_l":       {Name: "Lens_L", Category: CategoryOrganAtRisk},
	"lens_r":       {Name: "Lens_R", Category: CategoryOrganAtRisk},
	"cochlea_l":    {Name: "Cochlea_L", Category: CategoryOrganAtRisk},
	"cochlea_r":    {Name: "Cochlea_R", Category: CategoryOrganAtRisk},
	"parotid_l":    {Name: "Parotid_L", Category: CategoryOrganAtRisk},
	"parotid_r":    {Name: "Parotid_R", Category: CategoryOrganAtRisk},
	"mandible":     {Name: "Bone_Mandible", Category: CategoryOrganAtRisk},
	"larynx":       {Name: "Larynx", Category: CategoryOrganAtRisk},
	"esophagus":    {Name: "Esophagus", Category: CategoryOrganAtRisk},
	"heart":        {Name: "Heart", Category: CategoryOrganAtRisk},
	"lung_l":       {Name: "Lung_L", Category: CategoryOrganAtRisk},
	"lung_r":       {Name: "Lung_R", Category: CategoryOrganAtRisk},
	"lungs":        {Name: "Lungs", Category: CategoryOrganAtRisk},
	"liver":        {Name: "Liver", Category: CategoryOrganAtRisk},
	"stomach":      {Name: "Stomach", Category: CategoryOrganAtRisk},
	"bowel":        {Name: "Bowel", Category: CategoryOrganAtRisk},
	"kidney_l":     {Name: "Kidney_L", Category: CategoryOrganAtRisk},
	"kidney_r":     {Name: "Kidney_R", Category: CategoryOrganAtRisk},
	"bladder":      {Name: "Bladder", Category: CategoryOrganAtRisk},
	"rectum":       {Name: "Rectum", Category: CategoryOrganAtRisk},
	"femur_head_l": {Name: "Femur_Head_L", Category: CategoryOrganAtRisk},
	"femur_head_r": {Name: "Femur_Head_R", Category: CategoryOrganAtRisk},

	// External
	"external": {Name: "External", Category: CategoryExternal},
	"body":     {Name: "External", Category: CategoryExternal},
	"couch":    {Name: "Couch", Category: CategoryExternal},
}

// normalizeROIName lowercases name and folds spaces and dashes into underscores.
func normalizeROIName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	return n
}

// LookupROIName returns the ROIInfo for a standard ROI name.
// The lookup ignores case and treats spaces and dashes as underscores. If the
// name is not standard, an error is returned with the closest standard name
// when one is close enough (Levenshtein distance).
func LookupROIName(name string) (ROIInfo, error) {
	normalized := normalizeROIName(name)

	if info, ok := roiRegistry[normalized]; ok {
		return info, nil
	}

	if suggestion := SuggestROIName(name); suggestion != "" {
		return ROIInfo{}, fmt.Errorf("non-standard ROI name %q, did you mean %q?", name, suggestion)
	}

	return ROIInfo{}, fmt.Errorf("non-standard ROI name %q", name)
}

// IsStandardROIName reports whether name is in the registry.
func IsStandardROIName(name string) bool {
	_, ok := roiRegistry[normalizeROIName(name)]
	return ok
}

// SuggestROIName returns the standard ROI name closest to name, or "" when
// nothing is within distance 3. Exact matches return their standard spelling.
func SuggestROIName(name string) string {
	const maxDistance = 3
	input := normalizeROIName(name)
	if input == "" {
		return ""
	}
	if info, ok := roiRegistry[input]; ok {
		return info.Name
	}

	bestDistance := maxDistance + 1
	var bestKey string
	for key := range roiRegistry {
		distance := levenshteinDistance(input, key)
		// map order is random; break ties on the key so results are stable
		if distance < bestDistance || (distance == bestDistance && key < bestKey) {
			bestDistance = distance
			bestKey = key
		}
	}

	if bestDistance <= maxDistance {
		return roiRegistry[bestKey].Name
	}
	return ""
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
