package corruption

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// csaElement represents a single element in a CSA header
type csaElement struct {
	Name    string
	VR      string
	SyngoDT int32
	Values  []string
}

// buildCSAHeader encodes elements in the "SV10" layout syngo writes into
// (0029,1010) and (0029,1020).
func buildCSAHeader(elements []csaElement) []byte {
	var buf bytes.Buffer
	buf.WriteString("SV10")
	buf.Write([]byte{0x04, 0x03, 0x02, 0x01})

	// binary.Write to bytes.Buffer never fails.
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(elements)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0x4D))

	for _, elem := range elements {
		name := make([]byte, 64)
		copy(name, elem.Name)
		buf.Write(name)
		_ = binary.Write(&buf, binary.LittleEndian, int32(len(elem.Values)))

		vr := make([]byte, 4)
		copy(vr, elem.VR)
		buf.Write(vr)
		_ = binary.Write(&buf, binary.LittleEndian, elem.SyngoDT)
		_ = binary.Write(&buf, binary.LittleEndian, int32(len(elem.Values)))
		_ = binary.Write(&buf, binary.LittleEndian, uint32(0x4D))

		for _, v := range elem.Values {
			// item length is stored four times
			n := uint32(len(v))
			for j := 0; j < 4; j++ {
				_ = binary.Write(&buf, binary.LittleEndian, n)
			}
			buf.WriteString(v)
			if pad := (4 - len(v)%4) % 4; pad > 0 {
				buf.Write(make([]byte, pad))
			}
		}
	}
	return buf.Bytes()
}

// generateCSAImageHeader builds a CT flavored CSA image header followed by a
// random tail of vendor payload.
func generateCSAImageHeader(rng *rand.Rand) []byte {
	elements := []csaElement{
		{Name: "SliceNormalVector", VR: "FD", SyngoDT: 3, Values: []string{"0.0", "0.0", "1.0"}},
		{Name: "TablePositionVertical", VR: "FD", SyngoDT: 3, Values: []string{fmt.Sprintf("%.1f", 150+rng.Float64()*20)}},
		{Name: "ExposureModulationType", VR: "CS", SyngoDT: 16, Values: []string{"XYZ_EC"}},
		{Name: "ReconstructionAlgorithm", VR: "LO", SyngoDT: 19, Values: []string{"Br40d"}},
	}
	tail := make([]byte, rng.IntN(1024)+512)
	for i := range tail {
		tail[i] = byte(rng.IntN(256))
	}
	return append(buildCSAHeader(elements), tail...)
}

// generateSiemensCSAElements generates the Siemens private block of a CT slice.
func generateSiemensCSAElements(rng *rand.Rand) []*dicom.Element {
	series := buildCSAHeader([]csaElement{
		{Name: "UsedPatientWeight", VR: "DS", SyngoDT: 3, Values: []string{fmt.Sprintf("%d", 50+rng.IntN(50))}},
		{Name: "ScanOptions", VR: "CS", SyngoDT: 16, Values: []string{"HELICAL"}},
	})
	return []*dicom.Element{
		mustNewPrivateElement(tag.Tag{Group: 0x0029, Element: 0x0010}, "LO", []string{"SIEMENS CSA HEADER"}),
		mustNewPrivateElement(tag.Tag{Group: 0x0029, Element: 0x1010}, "OB", generateCSAImageHeader(rng)),
		mustNewPrivateElement(tag.Tag{Group: 0x0029, Element: 0x1020}, "OB", series),
	}
}
