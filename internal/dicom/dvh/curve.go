package dvh

// Curve is a cumulative DVH: Counts[i] is the volume (cm³) receiving at
// least the dose at BinCenters[i].
type Curve struct {
	ROINumber  int
	Name       string
	BinCenters []float64
	Counts     []float64
	// Units are the dose units of BinCenters (GY or RELATIVE).
	Units string
}

// Empty reports whether the curve has no bins.
func (c Curve) Empty() bool {
	return len(c.Counts) == 0
}

// Volume returns the total structure volume in cm³.
func (c Curve) Volume() float64 {
	if c.Empty() {
		return 0
	}
	return c.Counts[0]
}

// Differential returns the volume in each bin.
func (c Curve) Differential() []float64 {
	diff := make([]float64, len(c.Counts))
	for i := range c.Counts {
		next := 0.0
		if i+1 < len(c.Counts) {
			next = c.Counts[i+1]
		}
		diff[i] = c.Counts[i] - next
		if diff[i] < 0 {
			diff[i] = 0
		}
	}
	return diff
}

// clone returns a copy that shares no backing arrays with c.
func (c Curve) clone() Curve {
	out := c
	out.BinCenters = append([]float64(nil), c.BinCenters...)
	out.Counts = append([]float64(nil), c.Counts...)
	return out
}
