package export

import (
	"fmt"
	"sort"

	"github.com/mrsinham/rtforge/internal/dicom/dvh"
)

// DefaultMaxDoseGy is the last whole-Gy column written by WriteDVH when the
// caller passes 0.
const DefaultMaxDoseGy = 80

// DVHRows builds one row per curve: identity, volume and dose statistics,
// then the cumulative volume at every whole Gy from 0 to maxGy. Curves are
// ordered by ROI number so the output is stable.
func DVHRows(patientID string, curves map[int]dvh.Curve, maxGy int) []Row {
	if maxGy <= 0 {
		maxGy = DefaultMaxDoseGy
	}

	rois := make([]int, 0, len(curves))
	for roi := range curves {
		rois = append(rois, roi)
	}
	sort.Ints(rois)

	rows := make([]Row, 0, len(rois))
	for _, roi := range rois {
		c := curves[roi]
		st := dvh.ComputeStats(c)
		row := Row{
			{"Patient ID", patientID},
			{"ROI", c.Name},
			{"Volume (cm³)", formatFloat(st.Volume, 3)},
			{"Min (Gy)", formatFloat(st.Min, 2)},
			{"Mean (Gy)", formatFloat(st.Mean, 2)},
			{"Max (Gy)", formatFloat(st.Max, 2)},
			{"D98 (Gy)", formatFloat(st.D98, 2)},
			{"D95 (Gy)", formatFloat(st.D95, 2)},
			{"D50 (Gy)", formatFloat(st.D50, 2)},
			{"D2 (Gy)", formatFloat(st.D2, 2)},
		}
		for gy := 0; gy <= maxGy; gy++ {
			v := c.VolumeAtDose(float64(gy))
			row = append(row, Field{fmt.Sprintf("%d Gy", gy), formatFloat(v, 3)})
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteDVH appends the DVH rows of one patient to path.
func WriteDVH(path, patientID string, curves map[int]dvh.Curve, maxGy int) error {
	return AppendRows(path, DVHRows(patientID, curves, maxGy))
}
