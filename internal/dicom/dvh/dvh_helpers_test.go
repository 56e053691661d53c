package dvh

import (
	"github.com/mrsinham/rtforge/internal/dicom/geometry"
)

// squareContour returns an axis-aligned square with its low corner at (x, y).
func squareContour(x, y, side float64) Contour {
	return Contour{
		GeometricType: "CLOSED_PLANAR",
		Points: [][2]float64{
			{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side},
		},
	}
}

// uniformGrid builds a 1 mm grid of size x size voxels starting at (-5, -5)
// with one frame per z, filled with dose(frameIndex).
func uniformGrid(size int, frameZ []float64, dose func(frame int) float64) *DoseGrid {
	g := geometry.SliceGeometry{
		PixelSpacing: [2]float64{1, 1},
		Orientation:  geometry.AxialOrientation,
		Position:     [3]float64{-5, -5, frameZ[0]},
		Rows:         size,
		Columns:      size,
	}
	frames := make([][]float64, len(frameZ))
	for f := range frames {
		frames[f] = make([]float64, size*size)
		for i := range frames[f] {
			frames[f][i] = dose(f)
		}
	}
	grid, err := NewDoseGrid(g, frameZ, frames, "GY")
	if err != nil {
		panic(err)
	}
	return grid
}

// squareROI stacks the same contours on every z.
func squareROI(number int, name string, zs []float64, contours ...Contour) *ROI {
	roi := &ROI{Number: number, Name: name}
	for _, z := range zs {
		roi.Planes = append(roi.Planes, Plane{Z: z, Contours: contours})
	}
	return roi
}
