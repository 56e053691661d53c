package dvh

import (
	"errors"
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func contourItem(geomType string, z float64, xy ...float64) []*dicom.Element {
	var data []float64
	for i := 0; i+1 < len(xy); i += 2 {
		data = append(data, xy[i], xy[i+1], z)
	}
	return []*dicom.Element{
		elem.MustNew(tag.ContourGeometricType, []string{geomType}),
		elem.MustNew(tag.NumberOfContourPoints, []string{elem.IS(len(data) / 3)}),
		elem.MustNew(tag.ContourData, elem.DSList(data)),
	}
}

func mustSeq(t tag.Tag, items [][]*dicom.Element) *dicom.Element {
	e, err := elem.Sequence(t, items)
	if err != nil {
		panic(err)
	}
	return e
}

func TestStructureSetFromDataset(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		elem.MustNew(tag.Modality, []string{"RTSTRUCT"}),
		mustSeq(tag.StructureSetROISequence, [][]*dicom.Element{
			{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
			{elem.MustNew(tag.ROINumber, []string{"2"}), elem.MustNew(tag.ROIName, []string{"Iso"})},
		}),
		mustSeq(tag.ROIContourSequence, [][]*dicom.Element{
			{
				elem.MustNew(tag.ReferencedROINumber, []string{"1"}),
				mustSeq(tag.ContourSequence, [][]*dicom.Element{
					contourItem("CLOSED_PLANAR", 2.5, 0, 0, 10, 0, 10, 10, 0, 10),
					contourItem("CLOSED_PLANAR", 0, 0, 0, 10, 0, 10, 10, 0, 10),
					contourItem("CLOSED_PLANAR", 0, 20, 20, 25, 20, 25, 25),
				}),
			},
			{
				elem.MustNew(tag.ReferencedROINumber, []string{"2"}),
				mustSeq(tag.ContourSequence, [][]*dicom.Element{
					contourItem("POINT", 0, 5, 5),
				}),
			},
		}),
	}}

	ss, err := StructureSetFromDataset(ds)
	if err != nil {
		t.Fatalf("StructureSetFromDataset: %v", err)
	}
	if len(ss.ROIs) != 2 {
		t.Fatalf("got %d ROIs, want 2", len(ss.ROIs))
	}

	ptv := ss.ROIs[1]
	if ptv.Name != "PTV" || len(ptv.Planes) != 2 {
		t.Fatalf("PTV = %q with %d planes, want 2 planes", ptv.Name, len(ptv.Planes))
	}
	if ptv.Planes[0].Z != 0 || ptv.Planes[1].Z != 2.5 {
		t.Errorf("planes not sorted by z: %v, %v", ptv.Planes[0].Z, ptv.Planes[1].Z)
	}
	if len(ptv.Planes[0].Contours) != 2 {
		t.Errorf("z=0 plane has %d contours, want 2", len(ptv.Planes[0].Contours))
	}
	if got := ptv.Planes[1].Contours[0].Points[2]; got != [2]float64{10, 10} {
		t.Errorf("third point = %v, want [10 10]", got)
	}

	if iso := ss.ROIs[2]; len(iso.Planes) != 0 {
		t.Errorf("POINT contours should be dropped, got %d planes", len(iso.Planes))
	}
}

func TestStructureSetFromDataset_Missing(t *testing.T) {
	_, err := StructureSetFromDataset(dicom.Dataset{})
	if !errors.Is(err, ErrNoStructureSet) {
		t.Errorf("error = %v, want ErrNoStructureSet", err)
	}
}

func doseDataset(t *testing.T, rows, cols int, offsets []string, frames [][]uint16, scaling string) dicom.Dataset {
	t.Helper()
	info := dicom.PixelDataInfo{}
	for _, values := range frames {
		nf := frame.NewNativeFrame[uint16](16, rows, cols, rows*cols, 1)
		copy(nf.RawData, values)
		info.Frames = append(info.Frames, &frame.Frame{Encapsulated: false, NativeData: nf})
	}
	elems := []*dicom.Element{
		elem.MustNew(tag.Modality, []string{"RTDOSE"}),
		elem.MustNew(tag.Rows, []int{rows}),
		elem.MustNew(tag.Columns, []int{cols}),
		elem.MustNew(tag.PixelSpacing, []string{"2", "2"}),
		elem.MustNew(tag.ImagePositionPatient, []string{"-2", "-2", "-10"}),
		elem.MustNew(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
		elem.MustNew(tag.DoseUnits, []string{"GY"}),
		elem.MustNew(tag.DoseGridScaling, []string{scaling}),
		elem.MustNew(tag.PixelData, info),
	}
	if offsets != nil {
		elems = append(elems, elem.MustNew(tag.GridFrameOffsetVector, offsets))
	}
	return dicom.Dataset{Elements: elems}
}

func TestDoseGridFromDataset(t *testing.T) {
	ds := doseDataset(t, 2, 3, []string{"0", "5"}, [][]uint16{
		{0, 100, 200, 300, 400, 500},
		{1000, 1000, 1000, 1000, 1000, 1000},
	}, "0.001")

	grid, err := DoseGridFromDataset(ds)
	if err != nil {
		t.Fatalf("DoseGridFromDataset: %v", err)
	}

	if len(grid.Frames) != 2 || len(grid.Frames[0]) != 6 {
		t.Fatalf("frames = %d x %d", len(grid.Frames), len(grid.Frames[0]))
	}
	if grid.FrameZ[0] != -10 || grid.FrameZ[1] != -5 {
		t.Errorf("FrameZ = %v, want [-10 -5]", grid.FrameZ)
	}
	if !approx(grid.Frames[0][5], 0.5) {
		t.Errorf("scaled dose = %v, want 0.5", grid.Frames[0][5])
	}
	if !approx(grid.Max, 1.0) {
		t.Errorf("Max = %v, want 1.0", grid.Max)
	}
	if grid.FrameSpacing() != 5 {
		t.Errorf("FrameSpacing = %v, want 5", grid.FrameSpacing())
	}
	if grid.LUT.X[2] != 2 || grid.LUT.Y[1] != 0 {
		t.Errorf("LUT = %v / %v", grid.LUT.X, grid.LUT.Y)
	}

	plane, ok := grid.PlaneAt(-7.5)
	if !ok {
		t.Fatal("PlaneAt(-7.5) should interpolate")
	}
	if !approx(plane[0], 0.5) || !approx(plane[5], 0.75) {
		t.Errorf("interpolated plane = %v", plane)
	}
	if _, ok := grid.PlaneAt(0); ok {
		t.Error("PlaneAt(0) is outside the grid")
	}
}

func TestDoseGridFromDataset_SingleFrameNoOffsets(t *testing.T) {
	ds := doseDataset(t, 1, 1, nil, [][]uint16{{7}}, "1")
	grid, err := DoseGridFromDataset(ds)
	if err != nil {
		t.Fatalf("DoseGridFromDataset: %v", err)
	}
	if len(grid.FrameZ) != 1 || grid.FrameZ[0] != -10 {
		t.Errorf("FrameZ = %v, want [-10]", grid.FrameZ)
	}
}

func TestDoseGridFromDataset_AbsoluteOffsets(t *testing.T) {
	ds := doseDataset(t, 1, 1, []string{"-10", "-7"}, [][]uint16{{1}, {2}}, "1")
	grid, err := DoseGridFromDataset(ds)
	if err != nil {
		t.Fatalf("DoseGridFromDataset: %v", err)
	}
	if grid.FrameZ[1] != -7 {
		t.Errorf("FrameZ = %v, want [-10 -7]", grid.FrameZ)
	}
}

func TestDoseGridFromDataset_Errors(t *testing.T) {
	noPixels := dicom.Dataset{Elements: []*dicom.Element{
		elem.MustNew(tag.Rows, []int{1}),
		elem.MustNew(tag.Columns, []int{1}),
		elem.MustNew(tag.PixelSpacing, []string{"1", "1"}),
		elem.MustNew(tag.ImagePositionPatient, []string{"0", "0", "0"}),
	}}
	if _, err := DoseGridFromDataset(noPixels); !errors.Is(err, ErrNoPixelData) {
		t.Errorf("error = %v, want ErrNoPixelData", err)
	}

	multiNoOffsets := doseDataset(t, 1, 1, nil, [][]uint16{{1}, {2}}, "1")
	if _, err := DoseGridFromDataset(multiNoOffsets); err == nil {
		t.Error("multi-frame grid without offsets should fail")
	}
}

// badContourSet has a valid PTV and an ROI whose ContourData is not made
// of (x, y, z) triplets.
func badContourSet() dicom.Dataset {
	bad := []*dicom.Element{
		elem.MustNew(tag.ContourGeometricType, []string{"CLOSED_PLANAR"}),
		elem.MustNew(tag.ContourData, elem.DSList([]float64{0, 0, 0, 4, 0, 0, 4, 4})),
	}
	return dicom.Dataset{Elements: []*dicom.Element{
		elem.MustNew(tag.Modality, []string{"RTSTRUCT"}),
		mustSeq(tag.StructureSetROISequence, [][]*dicom.Element{
			{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
			{elem.MustNew(tag.ROINumber, []string{"2"}), elem.MustNew(tag.ROIName, []string{"Broken"})},
		}),
		mustSeq(tag.ROIContourSequence, [][]*dicom.Element{
			{
				elem.MustNew(tag.ReferencedROINumber, []string{"1"}),
				mustSeq(tag.ContourSequence, [][]*dicom.Element{
					contourItem("CLOSED_PLANAR", 0, 0, 0, 10, 0, 10, 10, 0, 10),
					contourItem("CLOSED_PLANAR", 1, 0, 0, 10, 0, 10, 10, 0, 10),
				}),
			},
			{
				elem.MustNew(tag.ReferencedROINumber, []string{"2"}),
				mustSeq(tag.ContourSequence, [][]*dicom.Element{
					contourItem("CLOSED_PLANAR", 0, 0, 0, 4, 0, 4, 4),
					bad,
				}),
			},
		}),
	}}
}

func TestStructureSetFromDataset_MalformedContourStaysInItsROI(t *testing.T) {
	ss, err := StructureSetFromDataset(badContourSet())
	if err != nil {
		t.Fatalf("StructureSetFromDataset: %v", err)
	}

	if ptv := ss.ROIs[1]; ptv.Err != nil || len(ptv.Planes) != 2 {
		t.Errorf("PTV err = %v with %d planes, want 2 planes", ptv.Err, len(ptv.Planes))
	}
	broken := ss.ROIs[2]
	if !errors.Is(broken.Err, ErrMalformedContour) {
		t.Errorf("Broken err = %v, want ErrMalformedContour", broken.Err)
	}
	if len(broken.Planes) != 0 {
		t.Errorf("Broken kept %d planes", len(broken.Planes))
	}
	t.Logf("✓ %v", broken.Err)
}
