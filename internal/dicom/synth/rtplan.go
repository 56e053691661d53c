package synth

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"
	"path/filepath"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// dosePerFraction is the conventional 2 Gy fractionation.
const dosePerFraction = 2.0

// Fractions returns the number of fractions delivering dose, at least one.
func Fractions(dose float64) int {
	return max(1, int(math.Round(dose/dosePerFraction)))
}

// writePlan writes a beamless RT Plan carrying intent, prescription and
// fractionation.
func writePlan(opts Options, p *patient, sopUID, seriesUID, structUID string, rng *randv2.Rand) (GeneratedFile, error) {
	intent := util.GeneratePlanIntent(rng)
	if opts.PlanIntent != "" {
		fixed, err := util.ParsePlanIntent(opts.PlanIntent)
		if err != nil {
			return GeneratedFile{}, err
		}
		intent = fixed
	}

	elements := headerElements(modalities.RTPLAN, sopUID)
	elements = append(elements, patientElements(p, seriesUID, 4, "RTPLAN")...)
	elements = append(elements,
		elem.MustNew(tag.RTPlanLabel, []string{"RTFORGE_1"}),
		elem.MustNew(tag.RTPlanName, []string{fmt.Sprintf("%gGy", opts.PrescriptionDose)}),
		elem.MustNew(tag.RTPlanDate, []string{p.StudyDate}),
		elem.MustNew(tag.RTPlanTime, []string{p.StudyTime}),
		elem.MustNew(tag.PlanIntent, []string{intent.String()}),
		elem.MustNew(tag.RTPlanGeometry, []string{"PATIENT"}),
		elem.MustNew(tag.ApprovalStatus, []string{"APPROVED"}),
	)

	doseRef, err := elem.Sequence(tag.DoseReferenceSequence, [][]*dicom.Element{{
		elem.MustNew(tag.DoseReferenceNumber, []string{"1"}),
		elem.MustNew(tag.DoseReferenceStructureType, []string{"SITE"}),
		elem.MustNew(tag.DoseReferenceType, []string{"TARGET"}),
		elem.MustNew(tag.TargetPrescriptionDose, []string{elem.DS(opts.PrescriptionDose)}),
	}})
	if err != nil {
		return GeneratedFile{}, err
	}
	fractionGroup, err := elem.Sequence(tag.FractionGroupSequence, [][]*dicom.Element{{
		elem.MustNew(tag.FractionGroupNumber, []string{"1"}),
		elem.MustNew(tag.NumberOfFractionsPlanned, []string{elem.IS(Fractions(opts.PrescriptionDose))}),
		elem.MustNew(tag.NumberOfBeams, []string{"0"}),
		elem.MustNew(tag.NumberOfBrachyApplicationSetups, []string{"0"}),
	}})
	if err != nil {
		return GeneratedFile{}, err
	}
	elements = append(elements, doseRef, fractionGroup)

	if structUID != "" {
		structRef, err := elem.Sequence(tag.ReferencedStructureSetSequence, [][]*dicom.Element{{
			elem.MustNew(tag.ReferencedSOPClassUID, []string{modalities.RTStructureSetUID}),
			elem.MustNew(tag.ReferencedSOPInstanceUID, []string{structUID}),
		}})
		if err != nil {
			return GeneratedFile{}, err
		}
		elements = append(elements, structRef)
	}
	sortElements(elements)

	path := filepath.Join(opts.OutputDir, PlanFile)
	if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
		return GeneratedFile{}, fmt.Errorf("write plan: %w", err)
	}
	return GeneratedFile{Path: path, Modality: modalities.RTPLAN, SOPInstanceUID: sopUID}, nil
}
