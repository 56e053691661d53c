package dvh

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrWorkerPanic wraps a panic raised inside a calculation.
var ErrWorkerPanic = errors.New("dvh worker panicked")

// Options configures an Engine.
type Options struct {
	// Workers bounds concurrent calculations (0 = runtime.NumCPU()).
	Workers int
	// DoseLimit caps the histogram in cGy (0 = grid maximum).
	DoseLimit int
	// Calculator replaces Calculate, mainly for tests.
	Calculator Calculator
}

// Result is what one worker reports: a curve or an error, never both.
type Result struct {
	ROINumber int
	Curve     Curve
	Err       error
}

// Output is the outcome of Engine.Compute.
type Output struct {
	Curves map[int]Curve
	// Order lists the ROIs of Curves in the order their results were drained.
	Order  []int
	Failed map[int]error
	// Started and Joined count the workers launched and the workers that exited.
	Started int
	Joined  int
}

// ProgressCallback is called by the collector after each result is drained.
type ProgressCallback func(done, total int)

// Engine runs one DVH calculation per ROI in parallel.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	if opts.Calculator == nil {
		opts.Calculator = Calculate
	}
	return &Engine{opts: opts}
}

// Compute starts one worker per ROI and collects every result.
// Workers only read ss and grid. Each worker owns a buffered channel and
// sends exactly one Result, so draining the channels in start order can
// never block on a worker that failed.
func (e *Engine) Compute(ss *StructureSet, grid *DoseGrid, rois []int, progress ProgressCallback) Output {
	out := Output{
		Curves: make(map[int]Curve, len(rois)),
		Failed: make(map[int]error),
	}
	if len(rois) == 0 {
		return out
	}

	numWorkers := e.opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, numWorkers)

	var wg sync.WaitGroup
	var joined atomic.Int64
	channels := make([]chan Result, len(rois))

	for i, roi := range rois {
		ch := make(chan Result, 1)
		channels[i] = ch
		wg.Add(1)
		out.Started++
		go func(roi int) {
			defer wg.Done()
			defer joined.Add(1)
			sem <- struct{}{}
			defer func() { <-sem }()
			ch <- e.run(ss, grid, roi)
		}(roi)
	}

	for i, ch := range channels {
		res := <-ch
		if res.Err != nil {
			out.Failed[res.ROINumber] = res.Err
		} else {
			out.Curves[res.ROINumber] = res.Curve
			out.Order = append(out.Order, res.ROINumber)
		}
		if progress != nil {
			progress(i+1, len(channels))
		}
	}

	wg.Wait()
	out.Joined = int(joined.Load())
	return out
}

// run executes one calculation, turning a panic into an error Result.
func (e *Engine) run(ss *StructureSet, grid *DoseGrid, roi int) (res Result) {
	res.ROINumber = roi
	defer func() {
		if r := recover(); r != nil {
			res = Result{ROINumber: roi, Err: fmt.Errorf("%w: ROI %d: %v", ErrWorkerPanic, roi, r)}
		}
	}()

	curve, err := e.opts.Calculator(ss, grid, roi, e.opts.DoseLimit)
	if err != nil {
		return Result{ROINumber: roi, Err: fmt.Errorf("ROI %d: %w", roi, err)}
	}
	res.Curve = curve
	return res
}
