package dvh

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/geometry"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNoPixelData is returned when a dose dataset was parsed without usable pixel data.
var ErrNoPixelData = errors.New("dose grid has no pixel data")

// zTolerance is how close (mm) a plane must be to a frame to use it without interpolation.
const zTolerance = 1e-3

// DoseGrid is a 3D dose distribution: one row-major plane of doses per frame.
// It is never mutated after construction and may be shared by workers.
type DoseGrid struct {
	Geometry geometry.SliceGeometry
	LUT      geometry.PixelLUT
	// FrameZ is the patient z of each frame.
	FrameZ []float64
	// Frames holds dose values already multiplied by DoseGridScaling.
	Frames [][]float64
	Units  string
	Max    float64
}

// NewDoseGrid validates the frames against the geometry and precomputes the pixel LUT.
func NewDoseGrid(g geometry.SliceGeometry, frameZ []float64, frames [][]float64, units string) (*DoseGrid, error) {
	if len(frames) == 0 {
		return nil, ErrNoPixelData
	}
	if len(frameZ) != len(frames) {
		return nil, fmt.Errorf("dose grid: %d frame positions for %d frames", len(frameZ), len(frames))
	}
	lut, err := geometry.ComputePixelLUT(g)
	if err != nil {
		return nil, fmt.Errorf("dose grid: %w", err)
	}

	grid := &DoseGrid{
		Geometry: g,
		LUT:      lut,
		FrameZ:   frameZ,
		Frames:   frames,
		Units:    units,
	}
	n := g.Rows * g.Columns
	for i, f := range frames {
		if len(f) != n {
			return nil, fmt.Errorf("dose grid: frame %d has %d values, want %d", i, len(f), n)
		}
		for _, d := range f {
			if d > grid.Max {
				grid.Max = d
			}
		}
	}
	return grid, nil
}

// DoseGridFromDataset reads an RT Dose dataset parsed with its pixel data.
func DoseGridFromDataset(ds dicom.Dataset) (*DoseGrid, error) {
	g, err := geometry.FromElements(ds.Elements)
	if err != nil {
		return nil, fmt.Errorf("dose grid: %w", err)
	}

	scaling := 1.0
	if s, err := elem.Float(ds.Elements, tag.DoseGridScaling); err == nil && s > 0 {
		scaling = s
	}
	units := strings.ToUpper(elem.String(ds.Elements, tag.DoseUnits))
	if units == "" {
		units = "GY"
	}

	pixelElem := elem.Find(ds.Elements, tag.PixelData)
	if pixelElem == nil {
		return nil, ErrNoPixelData
	}
	info, ok := pixelElem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, ErrNoPixelData
	}

	frames := make([][]float64, 0, len(info.Frames))
	for i, f := range info.Frames {
		if f == nil || f.Encapsulated {
			return nil, fmt.Errorf("dose grid: frame %d: encapsulated dose is not supported", i)
		}
		values, err := nativeToDose(f.NativeData, scaling)
		if err != nil {
			return nil, fmt.Errorf("dose grid: frame %d: %w", i, err)
		}
		frames = append(frames, values)
	}

	offsets, err := elem.Floats(ds.Elements, tag.GridFrameOffsetVector)
	if err != nil || len(offsets) == 0 {
		if len(frames) != 1 {
			return nil, fmt.Errorf("dose grid: %d frames without GridFrameOffsetVector", len(frames))
		}
		offsets = []float64{0}
	}
	if len(offsets) < len(frames) {
		return nil, fmt.Errorf("dose grid: %d offsets for %d frames", len(offsets), len(frames))
	}

	return NewDoseGrid(g, frameZ(g.Position[2], offsets[:len(frames)]), frames, units)
}

// frameZ converts GridFrameOffsetVector to patient z. A vector starting at
// zero is relative to the first frame; otherwise it already holds z values.
func frameZ(originZ float64, offsets []float64) []float64 {
	z := make([]float64, len(offsets))
	relative := offsets[0] == 0
	for i, off := range offsets {
		if relative {
			z[i] = originZ + off
		} else {
			z[i] = off
		}
	}
	return z
}

func nativeToDose(nf any, scaling float64) ([]float64, error) {
	switch f := nf.(type) {
	case *frame.NativeFrame[uint8]:
		return scale(f.RawData, scaling), nil
	case *frame.NativeFrame[uint16]:
		return scale(f.RawData, scaling), nil
	case *frame.NativeFrame[uint32]:
		return scale(f.RawData, scaling), nil
	case *frame.NativeFrame[int16]:
		return scale(f.RawData, scaling), nil
	case *frame.NativeFrame[int32]:
		return scale(f.RawData, scaling), nil
	default:
		return nil, fmt.Errorf("unsupported native frame %T", nf)
	}
}

func scale[I uint8 | uint16 | uint32 | int16 | int32](raw []I, scaling float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v) * scaling
	}
	return out
}

// FrameSpacing returns the distance between the first two frames, or 0 for a single frame.
func (g *DoseGrid) FrameSpacing() float64 {
	if len(g.FrameZ) < 2 {
		return 0
	}
	return math.Abs(g.FrameZ[1] - g.FrameZ[0])
}

// PixelArea returns the in-plane area of one dose voxel in mm².
func (g *DoseGrid) PixelArea() float64 {
	return math.Abs(g.Geometry.PixelSpacing[0] * g.Geometry.PixelSpacing[1])
}

// PlaneAt returns the dose plane at z, interpolating linearly between the
// two frames that bracket it. ok is false when z lies outside the grid.
func (g *DoseGrid) PlaneAt(z float64) (plane []float64, ok bool) {
	for i, fz := range g.FrameZ {
		if math.Abs(fz-z) < zTolerance {
			return g.Frames[i], true
		}
	}
	for i := 0; i+1 < len(g.FrameZ); i++ {
		z0, z1 := g.FrameZ[i], g.FrameZ[i+1]
		if (z0 < z && z < z1) || (z1 < z && z < z0) {
			t := (z - z0) / (z1 - z0)
			a, b := g.Frames[i], g.Frames[i+1]
			out := make([]float64, len(a))
			for k := range a {
				out[k] = (1-t)*a[k] + t*b[k]
			}
			return out, true
		}
	}
	return nil, false
}
