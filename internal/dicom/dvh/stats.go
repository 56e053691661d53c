package dvh

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a curve.
type Stats struct {
	Volume float64 // cm³
	Min    float64
	Max    float64
	Mean   float64
	D98    float64
	D95    float64
	D50    float64
	D2     float64
}

// ComputeStats derives dose statistics from the differential histogram.
// An empty or zero-volume curve yields zero Stats.
func ComputeStats(c Curve) Stats {
	s := Stats{Volume: c.Volume()}
	if c.Empty() || s.Volume <= 0 {
		return s
	}

	diff := c.Differential()
	first, last := -1, -1
	for i, v := range diff {
		if v > 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return s
	}

	s.Min = c.BinCenters[first]
	s.Max = c.BinCenters[last]
	s.Mean = stat.Mean(c.BinCenters, diff)
	s.D98 = c.DoseToVolume(98)
	s.D95 = c.DoseToVolume(95)
	s.D50 = c.DoseToVolume(50)
	s.D2 = c.DoseToVolume(2)
	return s
}

// DoseToVolume returns the minimum dose received by the hottest percent of the volume.
func (c Curve) DoseToVolume(percent float64) float64 {
	if c.Empty() || c.Volume() <= 0 || percent <= 0 || percent > 100 {
		return 0
	}
	// the dose reached by percent of the volume is the (1 - percent) quantile
	return stat.Quantile(1-percent/100, stat.Empirical, c.BinCenters, c.Differential())
}

// VolumeAtDose returns the volume (cm³) receiving at least dose.
func (c Curve) VolumeAtDose(dose float64) float64 {
	for i, center := range c.BinCenters {
		if center >= dose {
			return c.Counts[i]
		}
	}
	return 0
}
