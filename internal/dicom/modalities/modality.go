// Package modalities classifies DICOM objects by modality and generates the
// image-series metadata used for synthetic planning scans.
package modalities

import (
	"math/rand/v2"
	"strings"

	"github.com/suyashkumar/dicom"
)

// Modality represents the DICOM Modality (0008,0060) of an object.
type Modality string

const (
	MR       Modality = "MR"       // Magnetic Resonance
	CT       Modality = "CT"       // Computed Tomography
	RTSTRUCT Modality = "RTSTRUCT" // RT Structure Set
	RTDOSE   Modality = "RTDOSE"   // RT Dose
	RTPLAN   Modality = "RTPLAN"   // RT Plan
	SR       Modality = "SR"       // Structured Report
)

// SOP Class UIDs written and recognised by rtforge.
const (
	CTImageStorageUID      = "1.2.840.10008.5.1.4.1.1.2"
	MRImageStorageUID      = "1.2.840.10008.5.1.4.1.1.4"
	RTStructureSetUID      = "1.2.840.10008.5.1.4.1.1.481.3"
	RTDoseStorageUID       = "1.2.840.10008.5.1.4.1.1.481.2"
	RTPlanStorageUID       = "1.2.840.10008.5.1.4.1.1.481.5"
	ComprehensiveSRUID     = "1.2.840.10008.5.1.4.1.1.88.33"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
)

// AllModalities returns every modality rtforge classifies.
func AllModalities() []Modality {
	return []Modality{CT, MR, RTSTRUCT, RTDOSE, RTPLAN, SR}
}

// Parse normalizes a raw Modality value (case and padding).
func Parse(s string) Modality {
	return Modality(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValid checks if a modality string is one rtforge classifies.
func IsValid(m string) bool {
	p := Parse(m)
	for _, valid := range AllModalities() {
		if valid == p {
			return true
		}
	}
	return false
}

// IsImage reports whether m is an image slice modality.
func IsImage(m Modality) bool {
	return m == CT || m == MR
}

// SOPClassUID returns the storage SOP Class UID for m, or "" if unknown.
func SOPClassUID(m Modality) string {
	switch m {
	case CT:
		return CTImageStorageUID
	case MR:
		return MRImageStorageUID
	case RTSTRUCT:
		return RTStructureSetUID
	case RTDOSE:
		return RTDoseStorageUID
	case RTPLAN:
		return RTPlanStorageUID
	case SR:
		return ComprehensiveSRUID
	default:
		return ""
	}
}

// Scanner represents an imaging device configuration.
type Scanner struct {
	Manufacturer string
	Model        string
	// MR-specific
	FieldStrength float64 // Tesla
	// CT-specific
	BoreSize int // cm, wide-bore simulators are common in RT
}

// SeriesParams holds modality-specific parameters for an image series.
type SeriesParams struct {
	Modality     Modality
	Scanner      Scanner
	WindowCenter float64
	WindowWidth  float64

	// MR-specific
	EchoTime              float64
	RepetitionTime        float64
	SequenceName          string
	MagneticFieldStrength float64

	// CT-specific
	KVP              float64
	RescaleIntercept float64
	RescaleSlope     float64
}

// PixelConfig holds pixel data configuration for a modality.
type PixelConfig struct {
	BitsAllocated       uint16
	BitsStored          uint16
	HighBit             uint16
	PixelRepresentation uint16 // 0 = unsigned, 1 = signed
	BaseValue           int    // stored value for water/soft tissue
	MaxValue            int
}

// Generator produces image-series metadata for one modality.
type Generator interface {
	Modality() Modality
	SOPClassUID() string
	Scanners() []Scanner
	GenerateSeriesParams(scanner Scanner, rng *rand.Rand) SeriesParams
	PixelConfig() PixelConfig
	// ModalityElements returns the modality-specific elements of one slice.
	ModalityElements(params SeriesParams) []*dicom.Element
}

// GetGenerator returns the image generator for m. Non-image modalities get the CT generator.
func GetGenerator(m Modality) Generator {
	switch m {
	case MR:
		return &MRGenerator{}
	default:
		return &CTGenerator{}
	}
}
