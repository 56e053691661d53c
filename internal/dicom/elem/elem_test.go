package elem

import (
	"errors"
	"reflect"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func sampleElements() []*dicom.Element {
	roi := []*dicom.Element{
		MustNew(tag.ROINumber, []string{"7"}),
		MustNew(tag.ROIName, []string{"PTV "}),
	}
	seq, err := Sequence(tag.StructureSetROISequence, [][]*dicom.Element{roi})
	if err != nil {
		panic(err)
	}
	return []*dicom.Element{
		MustNew(tag.Modality, []string{"RTDOSE"}),
		MustNew(tag.Rows, []int{4}),
		MustNew(tag.InstanceNumber, []string{" 12"}),
		MustNew(tag.PixelSpacing, []string{"2.5", "3"}),
		MustNew(tag.ImagePositionPatient, []string{"-10", "0.5", "1e1"}),
		seq,
	}
}

func TestStrings(t *testing.T) {
	elems := sampleElements()

	if got := String(elems, tag.Modality); got != "RTDOSE" {
		t.Errorf("String(Modality) = %q, want RTDOSE", got)
	}
	if got := String(elems, tag.PatientName); got != "" {
		t.Errorf("String(missing) = %q, want empty", got)
	}
	if got := Strings(elems, tag.Rows); got != nil {
		t.Errorf("Strings(US element) = %v, want nil", got)
	}
}

func TestInts(t *testing.T) {
	elems := sampleElements()

	rows, err := Int(elems, tag.Rows)
	if err != nil || rows != 4 {
		t.Errorf("Int(Rows) = %d, %v; want 4, nil", rows, err)
	}

	n, err := Int(elems, tag.InstanceNumber)
	if err != nil || n != 12 {
		t.Errorf("Int(InstanceNumber) = %d, %v; want 12, nil", n, err)
	}

	if _, err := Int(elems, tag.Columns); !errors.Is(err, ErrNotFound) {
		t.Errorf("Int(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := Int(elems, tag.Modality); !errors.Is(err, ErrBadValue) {
		t.Errorf("Int(Modality) error = %v, want ErrBadValue", err)
	}
}

func TestFloats(t *testing.T) {
	elems := sampleElements()

	spacing, err := Floats(elems, tag.PixelSpacing)
	if err != nil {
		t.Fatalf("Floats(PixelSpacing): %v", err)
	}
	if !reflect.DeepEqual(spacing, []float64{2.5, 3}) {
		t.Errorf("Floats(PixelSpacing) = %v, want [2.5 3]", spacing)
	}

	pos, err := Floats(elems, tag.ImagePositionPatient)
	if err != nil {
		t.Fatalf("Floats(ImagePositionPatient): %v", err)
	}
	if !reflect.DeepEqual(pos, []float64{-10, 0.5, 10}) {
		t.Errorf("Floats(ImagePositionPatient) = %v", pos)
	}

	rows, err := Float(elems, tag.Rows)
	if err != nil || rows != 4 {
		t.Errorf("Float(Rows) = %v, %v; want 4, nil", rows, err)
	}
}

func TestItems(t *testing.T) {
	elems := sampleElements()

	items := Items(elems, tag.StructureSetROISequence)
	if len(items) != 1 {
		t.Fatalf("Items() returned %d items, want 1", len(items))
	}
	if got := String(items[0], tag.ROIName); got != "PTV" {
		t.Errorf("ROIName = %q, want PTV", got)
	}
	if n, _ := Int(items[0], tag.ROINumber); n != 7 {
		t.Errorf("ROINumber = %d, want 7", n)
	}

	if Items(elems, tag.ROIContourSequence) != nil {
		t.Error("Items(missing) should be nil")
	}
	if Items(elems, tag.Modality) != nil {
		t.Error("Items(non-sequence) should be nil")
	}
}

func TestReplace(t *testing.T) {
	elems := sampleElements()
	n := len(elems)

	elems = Replace(elems, MustNew(tag.Modality, []string{"RTSTRUCT"}))
	if len(elems) != n || String(elems, tag.Modality) != "RTSTRUCT" {
		t.Errorf("Replace existing: len=%d modality=%q", len(elems), String(elems, tag.Modality))
	}

	elems = Replace(elems, MustNew(tag.PatientID, []string{"P1"}))
	if len(elems) != n+1 || String(elems, tag.PatientID) != "P1" {
		t.Errorf("Replace missing should append, len=%d", len(elems))
	}
}

func TestDS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{-100.25, "-100.25"},
		{1e-5, "1e-05"},
	}
	for _, tc := range tests {
		if got := DS(tc.in); got != tc.want {
			t.Errorf("DS(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := DS(123456.78901234567)
	if len(long) > 16 {
		t.Errorf("DS() produced %q (%d chars), want <= 16", long, len(long))
	}
}
