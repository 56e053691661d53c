package dicom

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/dvh"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func mustSeq(t *testing.T, tg tag.Tag, items [][]*dicom.Element) *dicom.Element {
	t.Helper()
	e, err := elem.Sequence(tg, items)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestExtractROIs_FromStructureSet(t *testing.T) {
	res := generatePatient(t, synth.Options{})
	ds, err := dicom.ParseFile(filepath.Join(res.Dir, synth.StructureFile), nil, dicom.SkipPixelData())
	if err != nil {
		t.Fatal(err)
	}

	rois, err := ExtractROIs(ds)
	if err != nil {
		t.Fatalf("ExtractROIs() error = %v", err)
	}
	if got := SortedROINumbers(rois); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("ROI numbers = %v", got)
	}
	for i, name := range res.ROINames {
		r := rois[i+1]
		if r.Name != name || r.Number != i+1 {
			t.Errorf("ROI %d = %+v, want %q", i+1, r, name)
		}
		if r.FrameOfReferenceUID != res.FrameOfReferenceUID {
			t.Errorf("ROI %d frame of reference = %q", i+1, r.FrameOfReferenceUID)
		}
		if r.GenerationAlgorithm != "MANUAL" {
			t.Errorf("ROI %d generation algorithm = %q", i+1, r.GenerationAlgorithm)
		}
	}
}

func TestExtractROIs_Edges(t *testing.T) {
	t.Run("no structure set", func(t *testing.T) {
		ds := dicom.Dataset{Elements: []*dicom.Element{elem.MustNew(tag.Modality, []string{"CT"})}}
		if _, err := ExtractROIs(ds); !errors.Is(err, dvh.ErrNoStructureSet) {
			t.Errorf("error = %v, want ErrNoStructureSet", err)
		}
	})

	t.Run("bad numbers skipped, names may repeat", func(t *testing.T) {
		ds := dicom.Dataset{Elements: []*dicom.Element{
			mustSeq(t, tag.StructureSetROISequence, [][]*dicom.Element{
				{elem.MustNew(tag.ROINumber, []string{"3"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
				{elem.MustNew(tag.ROINumber, []string{"x"}), elem.MustNew(tag.ROIName, []string{"Broken"})},
				{elem.MustNew(tag.ROINumber, []string{"1"}), elem.MustNew(tag.ROIName, []string{"PTV"})},
				{elem.MustNew(tag.ROIName, []string{"NoNumber"})},
			}),
		}}
		rois, err := ExtractROIs(ds)
		if err != nil {
			t.Fatal(err)
		}
		if got := SortedROINumbers(rois); !reflect.DeepEqual(got, []int{1, 3}) {
			t.Errorf("ROI numbers = %v, want [1 3]", got)
		}
		if rois[1].Name != "PTV" || rois[3].Name != "PTV" {
			t.Errorf("duplicate names lost: %+v", rois)
		}
	})
}
