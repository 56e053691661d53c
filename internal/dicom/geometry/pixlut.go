// Package geometry maps image pixel indices to patient coordinates.
package geometry

import (
	"errors"
	"fmt"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/mat"
)

// ErrBadGeometry is returned when a slice's geometry elements are unusable.
var ErrBadGeometry = errors.New("unusable slice geometry")

// AxialOrientation is the ImageOrientationPatient of an unrotated axial slice.
var AxialOrientation = [6]float64{1, 0, 0, 0, 1, 0}

// SliceGeometry holds the elements that place a slice in patient space.
type SliceGeometry struct {
	// PixelSpacing is (row spacing, column spacing) in mm.
	PixelSpacing [2]float64
	Orientation  [6]float64
	Position     [3]float64
	Rows         int
	Columns      int
}

// PixelLUT maps column indices to x and row indices to y, in mm.
type PixelLUT struct {
	X []float64
	Y []float64
}

// FromElements reads the slice geometry of an image or dose dataset.
// A missing ImageOrientationPatient defaults to axial.
func FromElements(elems []*dicom.Element) (SliceGeometry, error) {
	var g SliceGeometry

	spacing, err := elem.Floats(elems, tag.PixelSpacing)
	if err != nil {
		return g, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}
	if len(spacing) < 2 {
		return g, fmt.Errorf("%w: PixelSpacing has %d values", ErrBadGeometry, len(spacing))
	}
	g.PixelSpacing = [2]float64{spacing[0], spacing[1]}

	pos, err := elem.Floats(elems, tag.ImagePositionPatient)
	if err != nil {
		return g, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}
	if len(pos) < 3 {
		return g, fmt.Errorf("%w: ImagePositionPatient has %d values", ErrBadGeometry, len(pos))
	}
	g.Position = [3]float64{pos[0], pos[1], pos[2]}

	g.Orientation = AxialOrientation
	if orient, err := elem.Floats(elems, tag.ImageOrientationPatient); err == nil {
		if len(orient) < 6 {
			return g, fmt.Errorf("%w: ImageOrientationPatient has %d values", ErrBadGeometry, len(orient))
		}
		copy(g.Orientation[:], orient[:6])
	}

	if g.Rows, err = elem.Int(elems, tag.Rows); err != nil {
		return g, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}
	if g.Columns, err = elem.Int(elems, tag.Columns); err != nil {
		return g, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}
	return g, nil
}

// Matrix returns the 4x4 affine that maps (column, row, 0, 1) to patient (x, y, z, 1).
func (g SliceGeometry) Matrix() *mat.Dense {
	o := g.Orientation
	dr, dc := g.PixelSpacing[0], g.PixelSpacing[1]
	p := g.Position

	return mat.NewDense(4, 4, []float64{
		o[0] * dr, o[3] * dc, 0, p[0],
		o[1] * dr, o[4] * dc, 0, p[1],
		o[2] * dr, o[5] * dc, 0, p[2],
		0, 0, 0, 1,
	})
}

// ComputePixelLUT computes the x coordinate of every column and the y
// coordinate of every row of the slice.
func ComputePixelLUT(g SliceGeometry) (PixelLUT, error) {
	if g.Rows <= 0 || g.Columns <= 0 {
		return PixelLUT{}, fmt.Errorf("%w: %dx%d", ErrBadGeometry, g.Rows, g.Columns)
	}

	m := g.Matrix()
	lut := PixelLUT{
		X: make([]float64, g.Columns),
		Y: make([]float64, g.Rows),
	}

	var out mat.VecDense
	for i := 0; i < g.Columns; i++ {
		out.MulVec(m, mat.NewVecDense(4, []float64{float64(i), 0, 0, 1}))
		lut.X[i] = out.AtVec(0)
	}
	for j := 0; j < g.Rows; j++ {
		out.MulVec(m, mat.NewVecDense(4, []float64{0, float64(j), 0, 1}))
		lut.Y[j] = out.AtVec(1)
	}
	return lut, nil
}
