package corruption

import (
	"fmt"
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// generateGEPrivateElements generates GE GEMS private tags as found on
// LightSpeed and Revolution CT slices.
func generateGEPrivateElements(rng *rand.Rand) []*dicom.Element {
	softwareVersion := fmt.Sprintf("%02d.%d", rng.IntN(10)+10, rng.IntN(10))
	tableSpeed := fmt.Sprintf("%.4f", 20+rng.Float64()*40)

	return []*dicom.Element{
		mustNewPrivateElement(tag.Tag{Group: 0x0009, Element: 0x0010}, "LO", []string{"GEMS_IDEN_01"}),
		mustNewPrivateElement(tag.Tag{Group: 0x0009, Element: 0x1027}, "SL", []int{int(rng.Int32N(1 << 30))}),
		mustNewPrivateElement(tag.Tag{Group: 0x0009, Element: 0x10E3}, "LO", []string{softwareVersion}),
		mustNewPrivateElement(tag.Tag{Group: 0x0019, Element: 0x0010}, "LO", []string{"GEMS_ACQU_01"}),
		mustNewPrivateElement(tag.Tag{Group: 0x0019, Element: 0x1023}, "DS", []string{tableSpeed}),
	}
}
