package synth

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// StructureFile, DoseFile, PlanFile and ReportFile are the names of the
// singleton objects written next to the image series.
const (
	StructureFile = "RS.dcm"
	DoseFile      = "RD.dcm"
	PlanFile      = "RP.dcm"
	ReportFile    = "SR.dcm"
)

// circleSegments is the number of vertices of a circular contour.
const circleSegments = 32

var roiColors = [][3]int{
	{0, 255, 0}, {255, 0, 0}, {255, 255, 0}, {0, 128, 255},
	{255, 0, 255}, {0, 255, 255}, {255, 128, 0}, {128, 0, 255},
}

// ContourPoints returns the closed polygon of r in the plane z, as x,y pairs.
func ContourPoints(r ROISpec) [][2]float64 {
	if r.Shape == Square {
		h := r.Radius
		return [][2]float64{
			{r.CenterX - h, r.CenterY - h},
			{r.CenterX + h, r.CenterY - h},
			{r.CenterX + h, r.CenterY + h},
			{r.CenterX - h, r.CenterY + h},
		}
	}
	pts := make([][2]float64, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = [2]float64{r.CenterX + r.Radius*math.Cos(a), r.CenterY + r.Radius*math.Sin(a)}
	}
	return pts
}

// lastSlice resolves a negative LastSlice to the end of the series.
func (r ROISpec) lastSlice(numSlices int) int {
	if r.LastSlice < 0 {
		return numSlices - 1
	}
	return r.LastSlice
}

// interpretedType maps an ROI name to its RTROIInterpretedType.
func interpretedType(name string) string {
	info, err := util.LookupROIName(name)
	if err != nil {
		return "ORGAN"
	}
	switch info.Category {
	case util.CategoryTarget:
		return strings.ToUpper(info.Name)
	case util.CategoryExternal:
		if info.Name == "External" {
			return "EXTERNAL"
		}
		return "SUPPORT"
	default:
		return "ORGAN"
	}
}

// writeStructureSet writes the RT Structure Set referencing the image slices.
func writeStructureSet(opts Options, p *patient, images []GeneratedFile, sopUID, seriesUID string) (GeneratedFile, error) {
	geo := geometryOf(opts)
	imageClass := modalities.SOPClassUID(opts.Modality)

	var roiItems, contourItems, observationItems [][]*dicom.Element
	for i, r := range opts.ROIs {
		number := i + 1
		name := p.ROINames[i]

		roiItem := []*dicom.Element{
			elem.MustNew(tag.ROINumber, []string{elem.IS(number)}),
			elem.MustNew(tag.ReferencedFrameOfReferenceUID, []string{p.FrameUID}),
			elem.MustNew(tag.ROIName, []string{name}),
		}
		if !p.omit("ROIGenerationAlgorithm") {
			roiItem = append(roiItem, elem.MustNew(tag.ROIGenerationAlgorithm, []string{"MANUAL"}))
		}
		roiItems = append(roiItems, roiItem)

		var contours [][]*dicom.Element
		points := ContourPoints(r)
		for k := r.FirstSlice; k <= r.lastSlice(opts.NumSlices); k++ {
			z := geo.SliceZ(k)
			data := make([]float64, 0, 3*len(points))
			for _, pt := range points {
				data = append(data, pt[0], pt[1], z)
			}
			imageRef, err := elem.Sequence(tag.ContourImageSequence, [][]*dicom.Element{{
				elem.MustNew(tag.ReferencedSOPClassUID, []string{imageClass}),
				elem.MustNew(tag.ReferencedSOPInstanceUID, []string{images[k].SOPInstanceUID}),
			}})
			if err != nil {
				return GeneratedFile{}, fmt.Errorf("roi %q slice %d: %w", name, k+1, err)
			}
			contours = append(contours, []*dicom.Element{
				imageRef,
				elem.MustNew(tag.ContourGeometricType, []string{"CLOSED_PLANAR"}),
				elem.MustNew(tag.NumberOfContourPoints, []string{elem.IS(len(points))}),
				elem.MustNew(tag.ContourData, elem.DSList(data)),
			})
		}
		contourSeq, err := elem.Sequence(tag.ContourSequence, contours)
		if err != nil {
			return GeneratedFile{}, fmt.Errorf("roi %q contours: %w", name, err)
		}
		color := roiColors[i%len(roiColors)]
		contourItems = append(contourItems, []*dicom.Element{
			elem.MustNew(tag.ROIDisplayColor, []string{elem.IS(color[0]), elem.IS(color[1]), elem.IS(color[2])}),
			contourSeq,
			elem.MustNew(tag.ReferencedROINumber, []string{elem.IS(number)}),
		})

		obs := []*dicom.Element{
			elem.MustNew(tag.ObservationNumber, []string{elem.IS(number)}),
			elem.MustNew(tag.ReferencedROINumber, []string{elem.IS(number)}),
		}
		if !p.omit("ROIObservationLabel") {
			obs = append(obs, elem.MustNew(tag.ROIObservationLabel, []string{name}))
		}
		obs = append(obs,
			elem.MustNew(tag.RTROIInterpretedType, []string{interpretedType(r.Name)}),
			elem.MustNew(tag.ROIInterpreter, []string{""}),
		)
		observationItems = append(observationItems, obs)
	}

	elements := headerElements(modalities.RTSTRUCT, sopUID)
	elements = append(elements, patientElements(p, seriesUID, 2, "RTSTRUCT")...)
	elements = append(elements,
		elem.MustNew(tag.StructureSetLabel, []string{"RTFORGE"}),
		elem.MustNew(tag.StructureSetDate, []string{p.StudyDate}),
		elem.MustNew(tag.StructureSetTime, []string{p.StudyTime}),
	)

	frameRef, err := elem.Sequence(tag.ReferencedFrameOfReferenceSequence, [][]*dicom.Element{{
		elem.MustNew(tag.FrameOfReferenceUID, []string{p.FrameUID}),
	}})
	if err != nil {
		return GeneratedFile{}, err
	}
	sequences := []struct {
		t     tag.Tag
		items [][]*dicom.Element
	}{
		{tag.StructureSetROISequence, roiItems},
		{tag.ROIContourSequence, contourItems},
		{tag.RTROIObservationsSequence, observationItems},
	}
	elements = append(elements, frameRef)
	for _, s := range sequences {
		seq, err := elem.Sequence(s.t, s.items)
		if err != nil {
			return GeneratedFile{}, fmt.Errorf("%s: %w", elem.Name(s.t), err)
		}
		elements = append(elements, seq)
	}
	sortElements(elements)

	path := filepath.Join(opts.OutputDir, StructureFile)
	if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
		return GeneratedFile{}, fmt.Errorf("write structure set: %w", err)
	}
	return GeneratedFile{Path: path, Modality: modalities.RTSTRUCT, SOPInstanceUID: sopUID}, nil
}
