package dicom

import (
	"sort"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ContourSet holds contour points per ROI name and referenced image.
type ContourSet struct {
	// Contours maps ROI name -> referenced SOP Instance UID -> flat x,y,z arrays.
	Contours map[string]map[string][][]float64
	// GeometricTypes parallels Contours with each contour's ContourGeometricType.
	GeometricTypes map[string]map[string][]string
	// NumPoints is the NumberOfContourPoints total per ROI name.
	NumPoints map[string]int
}

// ExtractContours reads ROIContourSequence. Each contour is filed under the
// last image its ContourImageSequence references ("" when it references
// none). ROI entries whose number is not in StructureSetROISequence are skipped.
// When two ROIs share a name, the later ROIContourSequence item replaces the
// earlier one.
func ExtractContours(ds dicom.Dataset) (*ContourSet, error) {
	rois, err := ExtractROIs(ds)
	if err != nil {
		return nil, err
	}

	cs := &ContourSet{
		Contours:       make(map[string]map[string][][]float64),
		GeometricTypes: make(map[string]map[string][]string),
		NumPoints:      make(map[string]int),
	}

	for _, rc := range elem.Items(ds.Elements, tag.ROIContourSequence) {
		number, err := elem.Int(rc, tag.ReferencedROINumber)
		if err != nil {
			continue
		}
		roi, ok := rois[number]
		if !ok {
			continue
		}
		name := roi.Name
		cs.Contours[name] = make(map[string][][]float64)
		cs.GeometricTypes[name] = make(map[string][]string)
		cs.NumPoints[name] = 0

		for _, c := range elem.Items(rc, tag.ContourSequence) {
			uid := ""
			for _, img := range elem.Items(c, tag.ContourImageSequence) {
				uid = elem.String(img, tag.ReferencedSOPInstanceUID)
			}

			if n, err := elem.Int(c, tag.NumberOfContourPoints); err == nil {
				cs.NumPoints[name] += n
			}

			data, err := elem.Floats(c, tag.ContourData)
			if err != nil {
				data = []float64{}
			}
			cs.Contours[name][uid] = append(cs.Contours[name][uid], data)
			cs.GeometricTypes[name][uid] = append(cs.GeometricTypes[name][uid], elem.String(c, tag.ContourGeometricType))
		}
	}
	return cs, nil
}

// ROINames returns the ROI names with contours, sorted.
func (cs *ContourSet) ROINames() []string {
	names := make([]string, 0, len(cs.Contours))
	for name := range cs.Contours {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
