package synth

import (
	"fmt"
	"hash/fnv"
	"math"
	randv2 "math/rand/v2"
	"runtime"
	"sync"

	"github.com/mrsinham/rtforge/internal/dicom/corruption"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// planeGeometry places the image plane and slices in patient coordinates:
// the plane is centred on x = y = 0 and the stack on z = 0.
type planeGeometry struct {
	Rows, Columns  int
	PixelSpacing   float64
	SliceThickness float64
	NumSlices      int
}

func geometryOf(opts Options) planeGeometry {
	return planeGeometry{
		Rows:           opts.Rows,
		Columns:        opts.Columns,
		PixelSpacing:   opts.PixelSpacing,
		SliceThickness: opts.SliceThickness,
		NumSlices:      opts.NumSlices,
	}
}

// Origin returns the x and y of the first pixel centre.
func (g planeGeometry) Origin() (x, y float64) {
	return -float64(g.Columns-1) / 2 * g.PixelSpacing, -float64(g.Rows-1) / 2 * g.PixelSpacing
}

// SliceZ returns the z of slice k.
func (g planeGeometry) SliceZ(k int) float64 {
	return (float64(k) - float64(g.NumSlices-1)/2) * g.SliceThickness
}

// imageTask contains all data needed to generate a single image slice
type imageTask struct {
	index       int
	filePath    string
	textOverlay string
	pixelSeed   uint64 // Deterministic seed for this slice's noise
	metadata    []*dicom.Element
	pixelConfig modalities.PixelConfig
	writeOpts   []dicom.WriteOption
	geometry    planeGeometry
	bodyRadius  float64
	spine       [2]float64
	sopUID      string
}

// writeImageSeries builds one task per slice and writes them with a worker pool.
func writeImageSeries(opts Options, p *patient, seed int64, rng *randv2.Rand, uidSeed func(...any) string, report func()) ([]GeneratedFile, error) {
	gen := modalities.GetGenerator(opts.Modality)
	pixelConfig := gen.PixelConfig()
	geo := geometryOf(opts)
	x0, y0 := geo.Origin()
	seriesUID := uidSeed("images", "series")

	var vendor *corruption.Applicator
	if opts.CorruptionConfig.IsEnabled() {
		vendor = corruption.NewApplicator(opts.CorruptionConfig, rng)
	}

	body, spine := phantomLayout(opts.ROIs)

	tasks := make([]imageTask, opts.NumSlices)
	for k := 0; k < opts.NumSlices; k++ {
		sopUID := uidSeed("image", k)
		z := geo.SliceZ(k)

		metadata := headerElements(opts.Modality, sopUID)
		metadata = append(metadata, patientElements(p, seriesUID, 1, fmt.Sprintf("PLANNING %s", opts.Modality))...)
		metadata = append(metadata,
			elem.MustNew(tag.ManufacturerModelName, []string{p.Scanner.Model}),
			elem.MustNew(tag.InstanceNumber, []string{elem.IS(k + 1)}),
			elem.MustNew(tag.SliceThickness, []string{elem.DS(opts.SliceThickness)}),
			elem.MustNew(tag.ImagePositionPatient, elem.DSList([]float64{x0, y0, z})),
			elem.MustNew(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
			elem.MustNew(tag.FrameOfReferenceUID, []string{p.FrameUID}),
			elem.MustNew(tag.SliceLocation, []string{elem.DS(z)}),
			elem.MustNew(tag.PixelSpacing, elem.DSList([]float64{opts.PixelSpacing, opts.PixelSpacing})),
			elem.MustNew(tag.Rows, []int{opts.Rows}),
			elem.MustNew(tag.Columns, []int{opts.Columns}),
			elem.MustNew(tag.SamplesPerPixel, []int{1}),
			elem.MustNew(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
			elem.MustNew(tag.BitsAllocated, []int{int(pixelConfig.BitsAllocated)}),
			elem.MustNew(tag.BitsStored, []int{int(pixelConfig.BitsStored)}),
			elem.MustNew(tag.HighBit, []int{int(pixelConfig.HighBit)}),
			elem.MustNew(tag.PixelRepresentation, []int{int(pixelConfig.PixelRepresentation)}),
			elem.MustNew(tag.WindowCenter, []string{elem.DS(p.SeriesPars.WindowCenter)}),
			elem.MustNew(tag.WindowWidth, []string{elem.DS(p.SeriesPars.WindowWidth)}),
		)
		metadata = append(metadata, gen.ModalityElements(p.SeriesPars)...)

		var writeOpts []dicom.WriteOption
		if vendor != nil {
			if private := vendor.VendorElements(p.Scanner.Manufacturer); len(private) > 0 {
				metadata = append(metadata, private...)
				writeOpts = []dicom.WriteOption{dicom.SkipVRVerification(), dicom.SkipValueTypeVerification()}
			}
		}
		sortElements(metadata)

		h := fnv.New64a()
		_, _ = fmt.Fprintf(h, "%d_pixel_%d", seed, k)

		tasks[k] = imageTask{
			index:       k,
			filePath:    imagePath(opts.OutputDir, opts.Modality, k),
			textOverlay: fmt.Sprintf("%s %d/%d", opts.Modality, k+1, opts.NumSlices),
			pixelSeed:   h.Sum64(),
			metadata:    metadata,
			pixelConfig: pixelConfig,
			writeOpts:   writeOpts,
			geometry:    geo,
			bodyRadius:  body,
			spine:       spine,
			sopUID:      sopUID,
		}
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}
	if !opts.Quiet {
		fmt.Printf("Generating %d %s slices (%dx%d) with %d parallel workers...\n",
			len(tasks), opts.Modality, opts.Columns, opts.Rows, numWorkers)
	}

	type result struct {
		index int
		err   error
	}
	taskChan := make(chan imageTask, len(tasks))
	resultChan := make(chan result, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				resultChan <- result{task.index, generateImageFromTask(task)}
			}
		}()
	}
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	var firstErr error
	for r := range resultChan {
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("generate slice %d: %w", r.index+1, r.err)
		}
		completed++
		report()
		if !opts.Quiet && (completed%10 == 0 || completed == len(tasks)) {
			fmt.Printf("  Progress: %d/%d (%.0f%%)\n", completed, len(tasks), float64(completed)/float64(len(tasks))*100)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	files := make([]GeneratedFile, len(tasks))
	for i, t := range tasks {
		files[i] = GeneratedFile{Path: t.filePath, Modality: opts.Modality, SOPInstanceUID: t.sopUID}
	}
	return files, nil
}

// phantomLayout derives the body outline radius and the spine position from
// the ROIs so the image roughly matches the contours drawn on it.
func phantomLayout(rois []ROISpec) (float64, [2]float64) {
	body := 0.0
	spine := [2]float64{0, 35}
	for _, r := range rois {
		switch util.SuggestROIName(r.Name) {
		case "External":
			body = r.Radius
		case "SpinalCord":
			spine = [2]float64{r.CenterX, r.CenterY}
		}
	}
	return body, spine
}

// generateImageFromTask renders a water cylinder with a bony spine and
// noise, stamps the slice label and writes the file.
func generateImageFromTask(task imageTask) error {
	g := task.geometry
	width, height := g.Columns, g.Rows
	cfg := task.pixelConfig
	rng := randv2.New(randv2.NewPCG(task.pixelSeed, task.pixelSeed))

	body := task.bodyRadius
	if body <= 0 {
		body = 0.45 * float64(min(width, height)) * g.PixelSpacing
	}
	x0, y0 := g.Origin()
	noise := float64(cfg.MaxValue) * 0.005

	nativeFrame := frame.NewNativeFrame[uint16](16, height, width, width*height, 1)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			x := x0 + float64(col)*g.PixelSpacing
			y := y0 + float64(row)*g.PixelSpacing
			value := 0.0 // air
			if math.Hypot(x, y) <= body {
				value = float64(cfg.BaseValue)
				if math.Hypot(x-task.spine[0], y-task.spine[1]) <= 12 {
					value += 700 // bone
				}
				value += (rng.Float64() - 0.5) * 2 * noise
			}
			nativeFrame.RawData[row*width+col] = uint16(math.Max(0, math.Min(float64(cfg.MaxValue), value)))
		}
	}

	drawTextOnFrame16(nativeFrame, width, height, task.textOverlay, uint16(cfg.MaxValue))

	pixelData := elem.MustNew(tag.PixelData, dicom.PixelDataInfo{
		Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
	})
	elements := make([]*dicom.Element, len(task.metadata), len(task.metadata)+1)
	copy(elements, task.metadata)
	elements = append(elements, pixelData)

	return writeDatasetToFile(task.filePath, dicom.Dataset{Elements: elements}, task.writeOpts...)
}
