package corruption

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// mustNewPrivateElement creates a DICOM element with a private tag and explicit VR.
// dicom.NewElement refuses tags missing from the dictionary.
func mustNewPrivateElement(t tag.Tag, rawVR string, data any) *dicom.Element {
	value, err := dicom.NewValue(data)
	if err != nil {
		panic(fmt.Sprintf("failed to create value for private element %v: %v", t, err))
	}
	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, rawVR),
		RawValueRepresentation: rawVR,
		Value:                  value,
	}
}

// Applicator generates vendor elements and junk files for the configured types.
type Applicator struct {
	config Config
	rng    *rand.Rand
}

// NewApplicator creates a new corruption applicator.
func NewApplicator(config Config, rng *rand.Rand) *Applicator {
	return &Applicator{config: config, rng: rng}
}

// VendorElements returns the private elements to append to one image slice.
// When manufacturer is set, only the matching vendor block is produced so a
// Siemens scanner does not carry GE tags.
func (a *Applicator) VendorElements(manufacturer string) []*dicom.Element {
	m := strings.ToUpper(manufacturer)
	want := func(t CorruptionType, vendor string) bool {
		return a.config.HasType(t) && (m == "" || strings.Contains(m, vendor))
	}

	var elements []*dicom.Element
	if want(SiemensCSA, "SIEMENS") {
		elements = append(elements, generateSiemensCSAElements(a.rng)...)
	}
	if want(GEPrivate, "GE") {
		elements = append(elements, generateGEPrivateElements(a.rng)...)
	}
	if want(PhilipsPrivate, "PHILIPS") {
		elements = append(elements, generatePhilipsPrivateElements(a.rng)...)
	}
	return elements
}

// HasFileTypes returns true if any junk file type is enabled.
func (a *Applicator) HasFileTypes() bool {
	return len(a.config.FileTypes()) > 0
}
