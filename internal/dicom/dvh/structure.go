// Package dvh computes cumulative dose-volume histograms from an RT Structure
// Set and an RT Dose grid.
package dvh

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNoStructureSet is returned when a dataset has no StructureSetROISequence.
var ErrNoStructureSet = errors.New("no StructureSetROISequence")

// ErrMalformedContour marks an ROI whose ContourSequence could not be read.
var ErrMalformedContour = errors.New("malformed contour")

// ErrUnknownROI is returned when a calculation names an ROI absent from the structure set.
var ErrUnknownROI = errors.New("unknown ROI")

// Contour is one closed polygon on a plane.
type Contour struct {
	GeometricType string
	// Points holds (x, y) pairs in mm.
	Points [][2]float64
}

// Plane groups the contours of one ROI lying at the same z.
type Plane struct {
	Z        float64
	Contours []Contour
}

// ROI is the planar geometry of one structure, planes sorted by z.
type ROI struct {
	Number int
	Name   string
	Planes []Plane
	// Err is set when a contour of the ROI could not be read. Planes is
	// then empty and Calculate returns Err.
	Err error
}

// StructureSet holds every ROI of an RT Structure Set by ROI number.
// It is never mutated after construction and may be shared by workers.
type StructureSet struct {
	ROIs map[int]*ROI
}

// zKey rounds z to a hundredth of a millimetre so contours from the same plane group together.
func zKey(z float64) int64 {
	return int64(math.Round(z * 100))
}

// StructureSetFromDataset builds the planar geometry of every ROI in ds.
// POINT contours are dropped since they enclose no volume. A malformed
// contour only marks its own ROI with Err.
func StructureSetFromDataset(ds dicom.Dataset) (*StructureSet, error) {
	roiItems := elem.Items(ds.Elements, tag.StructureSetROISequence)
	if elem.Find(ds.Elements, tag.StructureSetROISequence) == nil {
		return nil, ErrNoStructureSet
	}

	ss := &StructureSet{ROIs: make(map[int]*ROI)}
	for _, item := range roiItems {
		number, err := elem.Int(item, tag.ROINumber)
		if err != nil {
			continue
		}
		ss.ROIs[number] = &ROI{Number: number, Name: elem.String(item, tag.ROIName)}
	}

	for _, rc := range elem.Items(ds.Elements, tag.ROIContourSequence) {
		number, err := elem.Int(rc, tag.ReferencedROINumber)
		if err != nil {
			continue
		}
		roi, ok := ss.ROIs[number]
		if !ok {
			roi = &ROI{Number: number}
			ss.ROIs[number] = roi
		}

		planes := make(map[int64]*Plane)
		for _, c := range elem.Items(rc, tag.ContourSequence) {
			contour, z, err := contourFromItem(c)
			if err != nil {
				roi.Err = fmt.Errorf("%w: %w", ErrMalformedContour, err)
				break
			}
			if contour == nil {
				continue
			}
			key := zKey(z)
			p, ok := planes[key]
			if !ok {
				p = &Plane{Z: z}
				planes[key] = p
			}
			p.Contours = append(p.Contours, *contour)
		}

		if roi.Err != nil {
			roi.Planes = nil
			continue
		}
		for _, p := range planes {
			roi.Planes = append(roi.Planes, *p)
		}
		sort.Slice(roi.Planes, func(i, j int) bool { return roi.Planes[i].Z < roi.Planes[j].Z })
	}

	return ss, nil
}

// contourFromItem converts one ContourSequence item. A nil contour means the item is skipped.
func contourFromItem(item []*dicom.Element) (*Contour, float64, error) {
	geomType := strings.ToUpper(elem.String(item, tag.ContourGeometricType))
	if geomType == "POINT" {
		return nil, 0, nil
	}

	data, err := elem.Floats(item, tag.ContourData)
	if err != nil {
		if errors.Is(err, elem.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	if len(data)%3 != 0 {
		return nil, 0, fmt.Errorf("ContourData has %d values, not a multiple of 3", len(data))
	}
	if len(data) < 9 {
		return nil, 0, nil
	}

	c := &Contour{GeometricType: geomType, Points: make([][2]float64, 0, len(data)/3)}
	for i := 0; i < len(data); i += 3 {
		c.Points = append(c.Points, [2]float64{data[i], data[i+1]})
	}
	return c, data[2], nil
}

// thickness returns the slab thickness each plane of roi represents.
func (roi *ROI) thickness(grid *DoseGrid) float64 {
	if len(roi.Planes) < 2 {
		if s := grid.FrameSpacing(); s > 0 {
			return s
		}
		return 1
	}
	best := math.Inf(1)
	for i := 1; i < len(roi.Planes); i++ {
		d := math.Abs(roi.Planes[i].Z - roi.Planes[i-1].Z)
		if d > 0 && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}
