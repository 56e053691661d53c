package dicom

// ProgressFunc receives a stage message and the overall percent done (0-100).
type ProgressFunc func(message string, percent float64)

// Progress is the pipeline's progress state. It is a value: stages take one
// and return the advanced copy, and only the goroutine holding it reports.
type Progress struct {
	// Percent never decreases.
	Percent float64
	// Elements counts the DICOM elements read so far.
	Elements int

	from, to float64
	report   ProgressFunc
}

// NewProgress returns a Progress at 0% reporting to fn (which may be nil).
func NewProgress(fn ProgressFunc) Progress {
	return Progress{report: fn, to: 100}
}

// Stage returns a copy whose Advance calls move Percent from its current value up to end.
func (p Progress) Stage(end float64) Progress {
	p.from = p.Percent
	p.to = end
	if p.to < p.from {
		p.to = p.from
	}
	return p
}

// Advance moves to fraction (0-1) of the current stage and reports message.
func (p Progress) Advance(message string, fraction float64) Progress {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return p.set(message, p.from+(p.to-p.from)*fraction)
}

// Complete jumps to 100% and reports message.
func (p Progress) Complete(message string) Progress {
	p.from, p.to = 100, 100
	return p.set(message, 100)
}

func (p Progress) set(message string, percent float64) Progress {
	if percent > 100 {
		percent = 100
	}
	if percent < p.Percent {
		percent = p.Percent
	}
	p.Percent = percent
	if p.report != nil {
		p.report(message, percent)
	}
	return p
}
