package dvh

// Normalize converges every curve to zero volume. The input map and its
// curves are not modified.
func Normalize(curves map[int]Curve) map[int]Curve {
	out := make(map[int]Curve, len(curves))
	for roi, c := range curves {
		out[roi] = NormalizeCurve(c)
	}
	return out
}

// NormalizeCurve appends three zero-volume bins 1, 2 and 3 Gy past the last
// bin when the curve does not already end at zero. Empty curves and curves
// ending at zero are returned as copies, so the operation is idempotent.
func NormalizeCurve(c Curve) Curve {
	out := c.clone()
	if c.Empty() || c.Counts[len(c.Counts)-1] == 0 {
		return out
	}

	last := 0.0
	if n := len(c.BinCenters); n > 0 {
		last = c.BinCenters[n-1]
	}
	for step := 1; step <= 3; step++ {
		out.BinCenters = append(out.BinCenters, last+float64(step))
		out.Counts = append(out.Counts, 0)
	}
	return out
}
