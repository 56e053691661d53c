package synth

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// hotSpot is the maximum dose relative to the prescription.
const hotSpot = 1.05

// maxStored is the stored value of the maximum dose.
const maxStored = 60000

// DoseModel is the analytic dose distribution written to RD.dcm: a Gaussian
// centred on the first target volume.
type DoseModel struct {
	Max             float64 // Gy
	Center          [3]float64
	SigmaXY, SigmaZ float64
}

// At returns the dose in Gy at a patient position.
func (m DoseModel) At(x, y, z float64) float64 {
	dx, dy, dz := x-m.Center[0], y-m.Center[1], z-m.Center[2]
	e := (dx*dx+dy*dy)/(2*m.SigmaXY*m.SigmaXY) + dz*dz/(2*m.SigmaZ*m.SigmaZ)
	return m.Max * math.Exp(-e)
}

// NewDoseModel derives the dose model from opts. Without a target the
// distribution is centred on the middle of the series.
func NewDoseModel(opts Options) DoseModel {
	opts.applyDefaults()
	geo := geometryOf(opts)
	m := DoseModel{
		Max:     opts.PrescriptionDose * hotSpot,
		Center:  [3]float64{0, 0, 0},
		SigmaXY: 20,
		SigmaZ:  math.Max(opts.SliceThickness, float64(opts.NumSlices)*opts.SliceThickness/4),
	}
	for _, r := range opts.ROIs {
		switch interpretedType(r.Name) {
		case "PTV", "CTV", "GTV", "ITV":
		default:
			continue
		}
		first, last := geo.SliceZ(r.FirstSlice), geo.SliceZ(r.lastSlice(opts.NumSlices))
		m.Center = [3]float64{r.CenterX, r.CenterY, (first + last) / 2}
		m.SigmaXY = r.Radius * 1.2
		m.SigmaZ = math.Max(opts.SliceThickness, (last-first)/2*1.2)
		break
	}
	return m
}

// writeDose writes a multi-frame RT Dose with one frame per image slice.
func writeDose(opts Options, p *patient, sopUID, seriesUID, planUID string) (GeneratedFile, error) {
	geo := geometryOf(opts)
	x0, y0 := geo.Origin()
	spacing := opts.DoseSpacing
	cols := int(float64(geo.Columns-1)*geo.PixelSpacing/spacing) + 1
	rows := int(float64(geo.Rows-1)*geo.PixelSpacing/spacing) + 1

	model := NewDoseModel(opts)
	scaling := 1.0
	if model.Max > 0 {
		scaling = model.Max / maxStored
	}
	// the decimal string is what readers see, so quantize with it
	scalingDS := elem.DS(scaling)
	if _, err := fmt.Sscan(scalingDS, &scaling); err != nil {
		return GeneratedFile{}, fmt.Errorf("dose grid scaling %q: %w", scalingDS, err)
	}

	frames := make([]*frame.Frame, geo.NumSlices)
	offsets := make([]float64, geo.NumSlices)
	for k := range frames {
		z := geo.SliceZ(k)
		offsets[k] = z - geo.SliceZ(0)
		nf := frame.NewNativeFrame[uint16](16, rows, cols, rows*cols, 1)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				d := model.At(x0+float64(c)*spacing, y0+float64(r)*spacing, z)
				nf.RawData[r*cols+c] = uint16(math.Min(math.Round(d/scaling), math.MaxUint16))
			}
		}
		frames[k] = &frame.Frame{Encapsulated: false, NativeData: nf}
	}

	elements := headerElements(modalities.RTDOSE, sopUID)
	elements = append(elements, patientElements(p, seriesUID, 3, "RTDOSE")...)
	elements = append(elements,
		elem.MustNew(tag.ImagePositionPatient, elem.DSList([]float64{x0, y0, geo.SliceZ(0)})),
		elem.MustNew(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
		elem.MustNew(tag.FrameOfReferenceUID, []string{p.FrameUID}),
		elem.MustNew(tag.SamplesPerPixel, []int{1}),
		elem.MustNew(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		elem.MustNew(tag.NumberOfFrames, []string{elem.IS(len(frames))}),
		elem.MustNew(tag.Rows, []int{rows}),
		elem.MustNew(tag.Columns, []int{cols}),
		elem.MustNew(tag.PixelSpacing, elem.DSList([]float64{spacing, spacing})),
		elem.MustNew(tag.BitsAllocated, []int{16}),
		elem.MustNew(tag.BitsStored, []int{16}),
		elem.MustNew(tag.HighBit, []int{15}),
		elem.MustNew(tag.PixelRepresentation, []int{0}),
		elem.MustNew(tag.DoseUnits, []string{"GY"}),
		elem.MustNew(tag.DoseType, []string{"PHYSICAL"}),
		elem.MustNew(tag.DoseSummationType, []string{"PLAN"}),
		elem.MustNew(tag.GridFrameOffsetVector, elem.DSList(offsets)),
		elem.MustNew(tag.DoseGridScaling, []string{scalingDS}),
		elem.MustNew(tag.PixelData, dicom.PixelDataInfo{Frames: frames}),
	)
	if planUID != "" {
		planRef, err := elem.Sequence(tag.ReferencedRTPlanSequence, [][]*dicom.Element{{
			elem.MustNew(tag.ReferencedSOPClassUID, []string{modalities.RTPlanStorageUID}),
			elem.MustNew(tag.ReferencedSOPInstanceUID, []string{planUID}),
		}})
		if err != nil {
			return GeneratedFile{}, err
		}
		elements = append(elements, planRef)
	}
	sortElements(elements)

	path := filepath.Join(opts.OutputDir, DoseFile)
	if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
		return GeneratedFile{}, fmt.Errorf("write dose: %w", err)
	}
	return GeneratedFile{Path: path, Modality: modalities.RTDOSE, SOPInstanceUID: sopUID}, nil
}
