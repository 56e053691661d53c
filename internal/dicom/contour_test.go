package dicom

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func contourOn(t *testing.T, uids []string, z float64) []*dicom.Element {
	t.Helper()
	var refs [][]*dicom.Element
	for _, uid := range uids {
		refs = append(refs, []*dicom.Element{elem.MustNew(tag.ReferencedSOPInstanceUID, []string{uid})})
	}
	item := []*dicom.Element{
		elem.MustNew(tag.ContourGeometricType, []string{"CLOSED_PLANAR"}),
		elem.MustNew(tag.NumberOfContourPoints, []string{"3"}),
		elem.MustNew(tag.ContourData, elem.DSList([]float64{0, 0, z, 10, 0, z, 0, 10, z})),
	}
	if refs != nil {
		item = append([]*dicom.Element{mustSeq(t, tag.ContourImageSequence, refs)}, item...)
	}
	return item
}

func TestExtractContours_TwoSlices(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustSeq(t, tag.StructureSetROISequence, [][]*dicom.Element{
			{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
		}),
		mustSeq(t, tag.ROIContourSequence, [][]*dicom.Element{{
			mustSeq(t, tag.ContourSequence, [][]*dicom.Element{
				contourOn(t, []string{"1.2.3.1"}, 0),
				contourOn(t, []string{"1.2.3.2"}, 3),
			}),
			elem.MustNew(tag.ReferencedROINumber, []string{"1"}),
		}}),
	}}

	cs, err := ExtractContours(ds)
	if err != nil {
		t.Fatalf("ExtractContours() error = %v", err)
	}
	byUID := cs.Contours["PTV"]
	if len(byUID) != 2 {
		t.Fatalf("got %d image keys, want 2", len(byUID))
	}
	for uid, arrays := range byUID {
		if len(arrays) != 1 || len(arrays[0]) != 9 {
			t.Errorf("%s: %d arrays", uid, len(arrays))
		}
	}
	if got := byUID["1.2.3.2"][0][2]; got != 3 {
		t.Errorf("z of second slice = %g", got)
	}
	if cs.NumPoints["PTV"] != 6 {
		t.Errorf("NumPoints = %d, want 6", cs.NumPoints["PTV"])
	}
	if cs.GeometricTypes["PTV"]["1.2.3.1"][0] != "CLOSED_PLANAR" {
		t.Error("geometric type not kept")
	}
}

func TestExtractContours_ImageReferences(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustSeq(t, tag.StructureSetROISequence, [][]*dicom.Element{
			{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"Cord"})},
		}),
		mustSeq(t, tag.ROIContourSequence, [][]*dicom.Element{
			{
				mustSeq(t, tag.ContourSequence, [][]*dicom.Element{
					contourOn(t, []string{"a", "b"}, 0), // filed under the last reference
					contourOn(t, nil, 3),                // no reference
				}),
				elem.MustNew(tag.ReferencedROINumber, []string{"1"}),
			},
			{
				mustSeq(t, tag.ContourSequence, [][]*dicom.Element{contourOn(t, []string{"c"}, 0)}),
				elem.MustNew(tag.ReferencedROINumber, []string{"9"}), // unknown ROI
			},
		}),
	}}

	cs, err := ExtractContours(ds)
	if err != nil {
		t.Fatal(err)
	}
	keys := map[string]bool{}
	for uid := range cs.Contours["Cord"] {
		keys[uid] = true
	}
	if !reflect.DeepEqual(keys, map[string]bool{"b": true, "": true}) {
		t.Errorf("keys = %v, want b and empty", keys)
	}
	if got := cs.ROINames(); !reflect.DeepEqual(got, []string{"Cord"}) {
		t.Errorf("ROINames() = %v", got)
	}
}

func TestExtractContours_FromStructureSet(t *testing.T) {
	res := generatePatient(t, synth.Options{})
	ds, err := dicom.ParseFile(filepath.Join(res.Dir, synth.StructureFile), nil, dicom.SkipPixelData())
	if err != nil {
		t.Fatal(err)
	}
	cs, err := ExtractContours(ds)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs.ROINames()) != 4 {
		t.Errorf("ROINames() = %v", cs.ROINames())
	}
	// External covers all six slices, one contour each
	ext := cs.Contours[res.ROINames[0]]
	if len(ext) != 6 {
		t.Errorf("External on %d slices, want 6", len(ext))
	}
	for i := 0; i < 6; i++ {
		if len(ext[res.Files[i].SOPInstanceUID]) != 1 {
			t.Errorf("slice %d has %d External contours", i+1, len(ext[res.Files[i].SOPInstanceUID]))
		}
	}
}

func TestExtractContours_DuplicateNameLastWins(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustSeq(t, tag.StructureSetROISequence, [][]*dicom.Element{
			{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
			{elem.MustNew(tag.ROINumber, []string{"2"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
		}),
		mustSeq(t, tag.ROIContourSequence, [][]*dicom.Element{
			{
				mustSeq(t, tag.ContourSequence, [][]*dicom.Element{
					contourOn(t, []string{"1.2.3.1"}, 0),
					contourOn(t, []string{"1.2.3.2"}, 3),
				}),
				elem.MustNew(tag.ReferencedROINumber, []string{"1"}),
			},
			{
				mustSeq(t, tag.ContourSequence, [][]*dicom.Element{
					contourOn(t, []string{"1.2.3.3"}, 6),
				}),
				elem.MustNew(tag.ReferencedROINumber, []string{"2"}),
			},
		}),
	}}

	cs, err := ExtractContours(ds)
	if err != nil {
		t.Fatalf("ExtractContours() error = %v", err)
	}
	if got := cs.Contours["PTV"]; len(got) != 1 || got["1.2.3.3"] == nil {
		t.Errorf("PTV contours = %v, want only the second ROI's slice", got)
	}
	if cs.NumPoints["PTV"] != 3 {
		t.Errorf("NumPoints = %d, want 3", cs.NumPoints["PTV"])
	}
	if len(cs.GeometricTypes["PTV"]) != 1 {
		t.Errorf("GeometricTypes kept %d images", len(cs.GeometricTypes["PTV"]))
	}
}
