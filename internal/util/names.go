package util

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Package-level default RNG to avoid allocations when rng is nil
var defaultRNG = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

var (
	maleFirstNames = []string{
		"James", "John", "Robert", "Michael", "William", "David", "Thomas", "Daniel",
		"Paul", "Andrew", "Kevin", "George", "Edward", "Samuel", "Henry", "Peter",
		"Jean", "Pierre", "Michel", "Nicolas", "Julien", "Antoine", "Hugo", "Louis",
	}

	femaleFirstNames = []string{
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Susan", "Sarah", "Karen",
		"Nancy", "Lisa", "Emily", "Anna", "Grace", "Alice", "Ruth", "Helen",
		"Marie", "Sophie", "Claire", "Camille", "Léa", "Chloé", "Julie", "Louise",
	}

	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Wilson",
		"Anderson", "Taylor", "Thomas", "Moore", "Martin", "Clark", "Lewis", "Walker",
		"Bernard", "Dubois", "Durand", "Leroy", "Moreau", "Lefebvre", "Fournier", "Girard",
	}
)

// GeneratePatientName generates a patient name for sex ("M" or "F"; anything
// else is treated as "F"). If rng is nil, the shared default RNG is used.
// The result is in DICOM PN format: "LASTNAME^FIRSTNAME".
func GeneratePatientName(sex string, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}

	first := femaleFirstNames
	if sex == "M" {
		first = maleFirstNames
	}

	return lastNames[rng.IntN(len(lastNames))] + "^" + first[rng.IntN(len(first))]
}

// GeneratePatientID generates an 8 digit hospital-style patient ID.
func GeneratePatientID(rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}
	return fmt.Sprintf("RT%08d", rng.IntN(100000000))
}
