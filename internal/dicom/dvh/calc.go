package dvh

import (
	"fmt"
	"math"
)

// Calculator computes the cumulative DVH of one ROI. doseLimit is in cGy; 0 means no limit.
type Calculator func(ss *StructureSet, grid *DoseGrid, roiNumber int, doseLimit int) (Curve, error)

// Calculate is the default Calculator. Each plane of the ROI is intersected
// with the dose plane at its z, every enclosed dose voxel adds its volume to a
// 1 cGy differential histogram, and the histogram is accumulated from the top.
func Calculate(ss *StructureSet, grid *DoseGrid, roiNumber int, doseLimit int) (Curve, error) {
	roi, ok := ss.ROIs[roiNumber]
	if !ok {
		return Curve{}, fmt.Errorf("%w: %d", ErrUnknownROI, roiNumber)
	}
	if roi.Err != nil {
		return Curve{}, roi.Err
	}
	curve := Curve{ROINumber: roi.Number, Name: roi.Name, Units: grid.Units}
	if len(roi.Planes) == 0 {
		return curve, nil
	}

	nbins := int(grid.Max*100) + 1
	if doseLimit > 0 && doseLimit < nbins {
		nbins = doseLimit
	}
	hist := make([]float64, nbins)

	voxel := grid.PixelArea() * roi.thickness(grid)
	for _, p := range roi.Planes {
		dose, ok := grid.PlaneAt(p.Z)
		if !ok {
			continue
		}
		mask := grid.mask(p.Contours)
		for i, in := range mask {
			if !in {
				continue
			}
			bin := int(dose[i] * 100)
			if bin < 0 {
				bin = 0
			}
			if bin >= nbins {
				bin = nbins - 1
			}
			hist[bin] += voxel
		}
	}

	curve.Counts = make([]float64, nbins)
	curve.BinCenters = make([]float64, nbins)
	sum := 0.0
	for i := nbins - 1; i >= 0; i-- {
		sum += hist[i]
		curve.Counts[i] = sum / 1000 // mm³ to cm³
	}
	for i := range curve.BinCenters {
		curve.BinCenters[i] = (float64(i) + 0.5) / 100
	}
	return curve, nil
}

// mask marks the grid points enclosed by contours. Contours are combined
// with XOR so an inner contour cuts a hole in an outer one.
func (g *DoseGrid) mask(contours []Contour) []bool {
	cols := g.Geometry.Columns
	m := make([]bool, g.Geometry.Rows*cols)

	for _, c := range contours {
		minX, minY, maxX, maxY := bounds(c.Points)
		for j, y := range g.LUT.Y {
			if y < minY || y > maxY {
				continue
			}
			for i, x := range g.LUT.X {
				if x < minX || x > maxX {
					continue
				}
				if pointInPolygon(x, y, c.Points) {
					m[j*cols+i] = !m[j*cols+i]
				}
			}
		}
	}
	return m
}

func bounds(pts [][2]float64) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return minX, minY, maxX, maxY
}

// pointInPolygon is the even-odd ray casting test.
// Points on the low x/y edges are inside and points on the high edges outside.
func pointInPolygon(x, y float64, pts [][2]float64) bool {
	in := false
	n := len(pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := pts[i][0], pts[i][1]
		xj, yj := pts[j][0], pts[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}
