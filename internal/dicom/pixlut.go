package dicom

import (
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/geometry"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// PixelLUT and SliceGeometry are re-exported for callers of the session.
type (
	PixelLUT      = geometry.PixelLUT
	SliceGeometry = geometry.SliceGeometry
)

// ComputePixelLUT maps every column to x and every row to y for one slice.
func ComputePixelLUT(g SliceGeometry) (PixelLUT, error) {
	return geometry.ComputePixelLUT(g)
}

// BuildPixelLUTs computes a LUT for every image in fs, keyed by SOPInstanceUID.
// Slices without a UID or with unusable geometry are skipped and counted.
func BuildPixelLUTs(fs *FileSet) (map[string]PixelLUT, int) {
	luts := make(map[string]PixelLUT, len(fs.Images))
	skipped := 0
	for _, img := range fs.Images {
		uid := elem.String(img.Dataset.Elements, tag.SOPInstanceUID)
		if uid == "" {
			skipped++
			continue
		}
		g, err := geometry.FromElements(img.Dataset.Elements)
		if err != nil {
			skipped++
			continue
		}
		lut, err := geometry.ComputePixelLUT(g)
		if err != nil {
			skipped++
			continue
		}
		luts[uid] = lut
	}
	return luts, skipped
}
