package modalities

import (
	"math/rand/v2"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// MRGenerator generates MR simulation metadata.
type MRGenerator struct{}

// Modality returns the MR modality type.
func (g *MRGenerator) Modality() Modality {
	return MR
}

// SOPClassUID returns the MR Image Storage SOP Class UID.
func (g *MRGenerator) SOPClassUID() string {
	return MRImageStorageUID
}

// Scanners returns MR simulator configurations.
func (g *MRGenerator) Scanners() []Scanner {
	return []Scanner{
		{Manufacturer: "SIEMENS", Model: "MAGNETOM Sola RT Pro", FieldStrength: 1.5},
		{Manufacturer: "PHILIPS", Model: "Ingenia MR-RT", FieldStrength: 3.0},
		{Manufacturer: "GE MEDICAL SYSTEMS", Model: "SIGNA Architect", FieldStrength: 3.0},
	}
}

// GenerateSeriesParams generates T1/T2 parameters for a simulation series.
func (g *MRGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	params := SeriesParams{
		Modality:              MR,
		Scanner:               scanner,
		MagneticFieldStrength: scanner.FieldStrength,
		WindowCenter:          600,
		WindowWidth:           1200,
	}
	if rng.IntN(2) == 0 {
		params.SequenceName = "T1_SE"
		params.EchoTime = 10 + rng.Float64()*10
		params.RepetitionTime = 400 + rng.Float64()*300
	} else {
		params.SequenceName = "T2_FSE"
		params.EchoTime = 80 + rng.Float64()*40
		params.RepetitionTime = 3000 + rng.Float64()*2000
	}
	return params
}

// PixelConfig returns MR pixel data configuration.
func (g *MRGenerator) PixelConfig() PixelConfig {
	return PixelConfig{
		BitsAllocated:       16,
		BitsStored:          12,
		HighBit:             11,
		PixelRepresentation: 0,
		BaseValue:           600,
		MaxValue:            4095,
	}
}

// ModalityElements returns MR-specific elements.
func (g *MRGenerator) ModalityElements(params SeriesParams) []*dicom.Element {
	return []*dicom.Element{
		elem.MustNew(tag.SequenceName, []string{params.SequenceName}),
		elem.MustNew(tag.EchoTime, []string{elem.DS(params.EchoTime)}),
		elem.MustNew(tag.RepetitionTime, []string{elem.DS(params.RepetitionTime)}),
		elem.MustNew(tag.MagneticFieldStrength, []string{elem.DS(params.MagneticFieldStrength)}),
	}
}
