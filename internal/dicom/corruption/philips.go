package corruption

import (
	"fmt"
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// generatePhilipsPrivateElements generates the ELSCINT1 block Philips CT
// scanners write, including a nested private sequence.
func generatePhilipsPrivateElements(rng *rand.Rand) []*dicom.Element {
	pitch := fmt.Sprintf("%.3f", 0.5+rng.Float64())
	rotation := fmt.Sprintf("%.2f", []float64{0.27, 0.33, 0.4, 0.5}[rng.IntN(4)])

	item := []*dicom.Element{
		mustNewPrivateElement(tag.Tag{Group: 0x01F7, Element: 0x0010}, "LO", []string{"ELSCINT1"}),
		mustNewPrivateElement(tag.Tag{Group: 0x01F7, Element: 0x1022}, "UL", []int{rng.IntN(1000)}),
	}

	return []*dicom.Element{
		mustNewPrivateElement(tag.Tag{Group: 0x01F1, Element: 0x0010}, "LO", []string{"ELSCINT1"}),
		mustNewPrivateElement(tag.Tag{Group: 0x01F1, Element: 0x1026}, "DS", []string{pitch}),
		mustNewPrivateElement(tag.Tag{Group: 0x01F1, Element: 0x1027}, "DS", []string{rotation}),
		mustNewPrivateElement(tag.Tag{Group: 0x01F7, Element: 0x1100}, "SQ", [][]*dicom.Element{item}),
	}
}
