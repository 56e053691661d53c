package dicom

import (
	"context"
	"fmt"

	"github.com/mrsinham/rtforge/internal/dicom/dvh"
)

// Stage boundaries of Load, in overall percent.
const (
	scanEnd      = 40
	roiEnd       = 45
	doseReadEnd  = 50
	dvhEnd       = 85
	normalizeEnd = 88
	contourEnd   = 93
	lutEnd       = 99
)

// LoadOptions configures Load.
type LoadOptions struct {
	Dir string
	// Workers bounds parallel DVH calculations (0 = runtime.NumCPU()).
	Workers int
	// DoseLimit caps DVH histograms in cGy (0 = grid maximum).
	DoseLimit int
	// Calculator overrides dvh.Calculate.
	Calculator dvh.Calculator
	Progress   ProgressFunc
	Quiet      bool // Suppress progress output (for TUI integration)
}

// Session is everything extracted from one patient directory.
type Session struct {
	FileSet  *FileSet
	ROIs     map[int]ROIRecord
	Contours *ContourSet
	// RawDVH holds curves as computed; DVH holds them converged to zero.
	RawDVH    map[int]dvh.Curve
	DVH       map[int]dvh.Curve
	DVHOrder  []int
	FailedDVH map[int]error
	PixelLUTs map[string]PixelLUT
	// SkippedLUTs counts image slices whose geometry could not be mapped.
	SkippedLUTs int
	Progress    Progress
}

// Load scans opts.Dir and runs the whole extraction pipeline. The context is
// checked between stages; cancellation discards everything and returns
// ErrInterrupted. DVH workers already running are not preempted.
func Load(ctx context.Context, opts LoadOptions) (*Session, error) {
	p := NewProgress(opts.reporter())

	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	fs, p, err := ScanDirectory(ctx, opts.Dir, p.Stage(scanEnd))
	if err != nil {
		return nil, err
	}
	if fs.Len() == 0 {
		return nil, ErrIncorrectDirectory
	}
	if fs.RTSS == nil || fs.RTDose == nil {
		return nil, &MissingFilesError{Structure: fs.RTSS == nil, Dose: fs.RTDose == nil}
	}
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	s := &Session{FileSet: fs}

	p = p.Stage(roiEnd)
	if s.ROIs, err = ExtractROIs(fs.RTSS.Dataset); err != nil {
		return nil, fmt.Errorf("extract ROIs from %s: %w", fs.RTSS.Path, err)
	}
	structures, err := dvh.StructureSetFromDataset(fs.RTSS.Dataset)
	if err != nil {
		return nil, fmt.Errorf("read structure set %s: %w", fs.RTSS.Path, err)
	}
	p = p.Advance("Reading ROIs...", 1)
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	// the scan skipped pixel data; the dose grid needs it
	p = p.Stage(doseReadEnd)
	doseDS, err := ReadFile(fs.RTDose.Path)
	if err != nil {
		return nil, fmt.Errorf("read dose %s: %w", fs.RTDose.Path, err)
	}
	grid, err := dvh.DoseGridFromDataset(doseDS)
	if err != nil {
		return nil, fmt.Errorf("read dose %s: %w", fs.RTDose.Path, err)
	}
	p = p.Advance("Reading dose grid...", 1)
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	p = p.Stage(dvhEnd)
	engine := dvh.NewEngine(dvh.Options{
		Workers:    opts.Workers,
		DoseLimit:  opts.DoseLimit,
		Calculator: opts.Calculator,
	})
	out := engine.Compute(structures, grid, SortedROINumbers(s.ROIs), func(done, total int) {
		p = p.Advance("Calculating DVHs...", float64(done)/float64(total))
	})
	s.RawDVH, s.DVHOrder, s.FailedDVH = out.Curves, out.Order, out.Failed
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	p = p.Stage(normalizeEnd)
	s.DVH = dvh.Normalize(s.RawDVH)
	p = p.Advance("Converging DVHs to zero...", 1)
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	p = p.Stage(contourEnd)
	if s.Contours, err = ExtractContours(fs.RTSS.Dataset); err != nil {
		return nil, fmt.Errorf("extract contours from %s: %w", fs.RTSS.Path, err)
	}
	p = p.Advance("Reading contours...", 1)
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	p = p.Stage(lutEnd)
	s.PixelLUTs, s.SkippedLUTs = BuildPixelLUTs(fs)
	p = p.Advance("Mapping pixel coordinates...", 1)

	s.Progress = p.Complete("Loading complete")
	return s, nil
}

func interrupted(err error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, err)
}

// reporter wraps opts.Progress and prints one line per stage unless Quiet.
func (opts LoadOptions) reporter() ProgressFunc {
	last := ""
	return func(message string, percent float64) {
		if opts.Progress != nil {
			opts.Progress(message, percent)
		}
		if !opts.Quiet && message != last {
			fmt.Printf("  %s (%.0f%%)\n", message, percent)
			last = message
		}
	}
}
