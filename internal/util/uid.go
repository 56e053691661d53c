package util

import (
	"fmt"
	"hash/fnv"
)

// UIDRoot is the organisation root used for every UID rtforge generates.
const UIDRoot = "1.2.826.0.1.3680043.8.498"

// GenerateDeterministicUID derives a DICOM UID from seed.
// The same seed always yields the same UID, and the result never exceeds 64 characters.
func GenerateDeterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	sum := h.Sum64()

	h2 := fnv.New32a()
	_, _ = h2.Write([]byte(seed + "#"))

	return fmt.Sprintf("%s.%d.%d", UIDRoot, sum, h2.Sum32())
}
