package synth

import (
	"os"
	"sort"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

// headerElements returns the file meta and SOP common elements of an object.
func headerElements(m modalities.Modality, sopUID string) []*dicom.Element {
	class := modalities.SOPClassUID(m)
	return []*dicom.Element{
		elem.MustNew(tag.MediaStorageSOPClassUID, []string{class}),
		elem.MustNew(tag.MediaStorageSOPInstanceUID, []string{sopUID}),
		elem.MustNew(tag.TransferSyntaxUID, []string{modalities.ExplicitVRLittleEndian}),
		elem.MustNew(tag.SOPClassUID, []string{class}),
		elem.MustNew(tag.SOPInstanceUID, []string{sopUID}),
		elem.MustNew(tag.Modality, []string{string(m)}),
	}
}

// patientElements returns the patient and study modules shared by every object.
func patientElements(p *patient, seriesUID string, seriesNumber int, seriesDescription string) []*dicom.Element {
	elems := []*dicom.Element{
		elem.MustNew(tag.PatientName, []string{p.Name}),
		elem.MustNew(tag.PatientID, []string{p.ID}),
		elem.MustNew(tag.PatientBirthDate, []string{p.BirthDate}),
		elem.MustNew(tag.PatientSex, []string{p.Sex}),
		elem.MustNew(tag.StudyInstanceUID, []string{p.StudyUID}),
		elem.MustNew(tag.StudyID, []string{"1"}),
		elem.MustNew(tag.StudyDate, []string{p.StudyDate}),
		elem.MustNew(tag.StudyTime, []string{p.StudyTime}),
		elem.MustNew(tag.SeriesInstanceUID, []string{seriesUID}),
		elem.MustNew(tag.SeriesNumber, []string{elem.IS(seriesNumber)}),
	}
	optional := []struct {
		name  string
		t     tag.Tag
		value string
	}{
		{"StudyDescription", tag.StudyDescription, "RT PLANNING"},
		{"SeriesDescription", tag.SeriesDescription, seriesDescription},
		{"InstitutionName", tag.InstitutionName, "RTFORGE CANCER CENTER"},
		{"ReferringPhysicianName", tag.ReferringPhysicianName, "ONCOLOGIST^RADIATION"},
		{"OperatorsName", tag.OperatorsName, "DOSIMETRIST^PLANNING"},
		{"Manufacturer", tag.Manufacturer, p.Scanner.Manufacturer},
	}
	for _, o := range optional {
		// the clinical-data report is found by its series description
		if p.omit(o.name) && !(o.t == tag.SeriesDescription && seriesDescription == ClinicalSeriesDescription) {
			continue
		}
		elems = append(elems, elem.MustNew(o.t, []string{o.value}))
	}
	return elems
}

// sortElements orders elements by (Group, Element) so private blocks land
// between the standard groups they belong to.
func sortElements(elems []*dicom.Element) {
	sort.Slice(elems, func(i, j int) bool {
		if elems[i].Tag.Group != elems[j].Tag.Group {
			return elems[i].Tag.Group < elems[j].Tag.Group
		}
		return elems[i].Tag.Element < elems[j].Tag.Element
	})
}
