package synth

import (
	"fmt"
	randv2 "math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ClinicalSeriesDescription identifies the structured report holding
// clinical data.
const ClinicalSeriesDescription = "CLINICAL-DATA"

var diagnoses = []string{
	"Head and neck squamous cell carcinoma",
	"Non-small cell lung cancer",
	"Prostate adenocarcinoma",
	"Glioblastoma",
	"Breast ductal carcinoma",
}

// DefaultClinicalData draws the fields written when Options.ClinicalData is empty.
func DefaultClinicalData(patientID, sex, birthDate string, dose float64, rng *randv2.Rand) []ClinicalField {
	age := 2025 - mustAtoi(birthDate[:4])
	stage := fmt.Sprintf("T%dN%dM0", 1+rng.IntN(4), rng.IntN(3))
	return []ClinicalField{
		{Key: "Patient ID", Value: patientID},
		{Key: "Gender", Value: sex},
		{Key: "Age", Value: strconv.Itoa(age)},
		{Key: "Diagnosis", Value: diagnoses[rng.IntN(len(diagnoses))]},
		{Key: "Stage", Value: stage},
		{Key: "Prescription Gy", Value: elem.DS(dose)},
		{Key: "Fractions", Value: strconv.Itoa(Fractions(dose))},
	}
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("not a number: %q", s))
	}
	return n
}

// ClinicalText renders fields as "Key: Value" lines.
func ClinicalText(fields []ClinicalField) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f.Key + ": " + f.Value
	}
	return strings.Join(lines, "\n")
}

// writeClinicalReport writes a Comprehensive SR whose first content item
// holds the clinical data text.
func writeClinicalReport(opts Options, p *patient, sopUID, seriesUID string, rng *randv2.Rand) (GeneratedFile, error) {
	fields := opts.ClinicalData
	if len(fields) == 0 {
		fields = DefaultClinicalData(p.ID, p.Sex, p.BirthDate, opts.PrescriptionDose, rng)
	}

	content, err := elem.Sequence(tag.ContentSequence, [][]*dicom.Element{{
		elem.MustNew(tag.RelationshipType, []string{"CONTAINS"}),
		elem.MustNew(tag.ValueType, []string{"TEXT"}),
		elem.MustNew(tag.TextValue, []string{ClinicalText(fields)}),
	}})
	if err != nil {
		return GeneratedFile{}, err
	}

	elements := headerElements(modalities.SR, sopUID)
	elements = append(elements, patientElements(p, seriesUID, 5, ClinicalSeriesDescription)...)
	elements = append(elements,
		elem.MustNew(tag.InstanceNumber, []string{"1"}),
		elem.MustNew(tag.ValueType, []string{"CONTAINER"}),
		elem.MustNew(tag.ContinuityOfContent, []string{"SEPARATE"}),
		elem.MustNew(tag.CompletionFlag, []string{"COMPLETE"}),
		elem.MustNew(tag.VerificationFlag, []string{"UNVERIFIED"}),
		content,
	)
	sortElements(elements)

	path := filepath.Join(opts.OutputDir, ReportFile)
	if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
		return GeneratedFile{}, fmt.Errorf("write clinical report: %w", err)
	}
	return GeneratedFile{Path: path, Modality: modalities.SR, SOPInstanceUID: sopUID}, nil
}
