package modalities

import (
	"math/rand/v2"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// CTGenerator generates planning CT metadata.
type CTGenerator struct{}

// Modality returns the CT modality type.
func (g *CTGenerator) Modality() Modality {
	return CT
}

// SOPClassUID returns the CT Image Storage SOP Class UID.
func (g *CTGenerator) SOPClassUID() string {
	return CTImageStorageUID
}

// Scanners returns CT simulator configurations.
func (g *CTGenerator) Scanners() []Scanner {
	return []Scanner{
		{Manufacturer: "SIEMENS", Model: "SOMATOM Confidence", BoreSize: 80},
		{Manufacturer: "GE MEDICAL SYSTEMS", Model: "Discovery RT", BoreSize: 80},
		{Manufacturer: "PHILIPS", Model: "Brilliance CT Big Bore", BoreSize: 85},
		{Manufacturer: "CANON", Model: "Aquilion LB", BoreSize: 90},
	}
}

// GenerateSeriesParams generates CT parameters for a planning series.
func (g *CTGenerator) GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams {
	kvpOptions := []float64{120, 120, 140}

	return SeriesParams{
		Modality:         CT,
		Scanner:          scanner,
		KVP:              kvpOptions[rng.IntN(len(kvpOptions))],
		RescaleIntercept: -1024,
		RescaleSlope:     1,
		WindowCenter:     40,
		WindowWidth:      400,
	}
}

// PixelConfig returns CT pixel data configuration.
func (g *CTGenerator) PixelConfig() PixelConfig {
	return PixelConfig{
		BitsAllocated:       16,
		BitsStored:          16,
		HighBit:             15,
		PixelRepresentation: 0,
		BaseValue:           1024, // water, 0 HU with the -1024 intercept
		MaxValue:            4095,
	}
}

// ModalityElements returns CT-specific elements.
func (g *CTGenerator) ModalityElements(params SeriesParams) []*dicom.Element {
	return []*dicom.Element{
		elem.MustNew(tag.KVP, []string{elem.DS(params.KVP)}),
		elem.MustNew(tag.RescaleIntercept, []string{elem.DS(params.RescaleIntercept)}),
		elem.MustNew(tag.RescaleSlope, []string{elem.DS(params.RescaleSlope)}),
		elem.MustNew(tag.RescaleType, []string{"HU"}),
	}
}
