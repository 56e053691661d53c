package edgecases

import "math/rand/v2"

// pnEntry is one person name in DICOM PN component order.
type pnEntry struct {
	family, given, middle string
	sex                   string
}

// Names that break naive ASCII handling: apostrophes, hyphenated family
// names, diacritics and a middle-name component.
var specialCharNames = []pnEntry{
	{family: "Müller-Schmidt", given: "Jean-Pierre", sex: "M"},
	{family: "O'Connor", given: "Séamus", middle: "Pádraig", sex: "M"},
	{family: "Østergaard", given: "Søren", sex: "M"},
	{family: "Wiśniewski", given: "Łukasz", sex: "M"},
	{family: "García-López", given: "José", middle: "Ángel", sex: "M"},
	{family: "D'Agostino", given: "Éléonore", sex: "F"},
	{family: "Çelik", given: "Zoë", sex: "F"},
	{family: "Škvorecká", given: "Hélène", middle: "Marie-Claire", sex: "F"},
	{family: "Nguyễn", given: "Thảo", sex: "F"},
}

// PN renders the entry as Family^Given[^Middle].
func (e pnEntry) PN() string {
	if e.middle == "" {
		return e.family + "^" + e.given
	}
	return e.family + "^" + e.given + "^" + e.middle
}

// SpecialCharPatientName picks a name matching sex. Any other sex value
// draws from the whole table.
func SpecialCharPatientName(sex string, rng *rand.Rand) string {
	pool := make([]pnEntry, 0, len(specialCharNames))
	for _, e := range specialCharNames {
		if sex != "M" && sex != "F" || e.sex == sex {
			pool = append(pool, e)
		}
	}
	return pool[rng.IntN(len(pool))].PN()
}
