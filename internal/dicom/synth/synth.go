// Package synth writes synthetic radiotherapy patients: an image series with
// the matching RT Structure Set, RT Dose, RT Plan and clinical-data report.
// The output is deterministic for a given seed and is what the loader tests
// and end-to-end scenarios run against.
package synth

import (
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"slices"

	"github.com/mrsinham/rtforge/internal/dicom/corruption"
	"github.com/mrsinham/rtforge/internal/dicom/edgecases"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
)

// Shape of an ROI cross-section.
type Shape string

const (
	Circle Shape = "circle"
	Square Shape = "square"
)

// ROISpec describes one synthetic structure. Coordinates are in patient mm
// relative to the centre of the image plane.
type ROISpec struct {
	Name    string  `yaml:"name"`
	Shape   Shape   `yaml:"shape"`
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Radius  float64 `yaml:"radius"` // half side for squares
	// FirstSlice and LastSlice are zero-based and inclusive. LastSlice < 0
	// means the last slice of the series.
	FirstSlice int `yaml:"first_slice"`
	LastSlice  int `yaml:"last_slice"`
}

// ClinicalField is one "Key: Value" line of the clinical-data report.
type ClinicalField struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Options configures Generate.
type Options struct {
	OutputDir string
	Modality  modalities.Modality // CT (default) or MR

	NumSlices      int
	Rows           int
	Columns        int
	PixelSpacing   float64 // mm
	SliceThickness float64 // mm

	ROIs             []ROISpec
	PrescriptionDose float64 // Gy
	PlanIntent       string  // empty = drawn at random
	DoseSpacing      float64 // mm, in-plane dose voxel size

	PatientName string // empty = generated
	PatientID   string // empty = generated
	Seed        int64  // 0 = derived from OutputDir

	SkipStructure bool
	SkipDose      bool
	SkipPlan      bool
	SkipReport    bool

	ClinicalData []ClinicalField // empty = generated

	EdgeCaseConfig   edgecases.Config
	CorruptionConfig corruption.Config

	Workers          int                      // 0 = runtime.NumCPU()
	Quiet            bool                     // Suppress progress output (for TUI integration)
	ProgressCallback func(current, total int) // Optional callback for progress updates
}

// GeneratedFile describes one written DICOM object.
type GeneratedFile struct {
	Path           string
	Modality       modalities.Modality
	SOPInstanceUID string
}

// Result summarizes a generated patient.
type Result struct {
	Dir                 string
	PatientID           string
	PatientName         string
	StudyUID            string
	FrameOfReferenceUID string
	Files               []GeneratedFile
	// ROINames holds the names as written, after edge cases were applied.
	ROINames  []string
	JunkFiles []string
}

// DefaultROIs returns the structures written when Options.ROIs is empty:
// an external outline, a target and two organs at risk.
func DefaultROIs(numSlices int) []ROISpec {
	mid := numSlices / 2
	return []ROISpec{
		{Name: "External", Shape: Circle, Radius: 55, FirstSlice: 0, LastSlice: -1},
		{Name: "PTV", Shape: Circle, Radius: 15, FirstSlice: max(0, mid-2), LastSlice: min(numSlices-1, mid+2)},
		{Name: "SpinalCord", Shape: Circle, CenterY: 35, Radius: 6, FirstSlice: 0, LastSlice: -1},
		{Name: "Heart", Shape: Square, CenterX: 20, CenterY: -15, Radius: 12, FirstSlice: 0, LastSlice: max(0, mid-1)},
	}
}

// applyDefaults fills zero fields.
func (o *Options) applyDefaults() {
	if o.Modality == "" {
		o.Modality = modalities.CT
	}
	if o.NumSlices == 0 {
		o.NumSlices = 10
	}
	if o.Rows == 0 {
		o.Rows = 64
	}
	if o.Columns == 0 {
		o.Columns = 64
	}
	if o.PixelSpacing == 0 {
		o.PixelSpacing = 2
	}
	if o.SliceThickness == 0 {
		o.SliceThickness = 3
	}
	if o.DoseSpacing == 0 {
		o.DoseSpacing = 4
	}
	if o.PrescriptionDose == 0 {
		o.PrescriptionDose = 60
	}
	if len(o.ROIs) == 0 {
		o.ROIs = DefaultROIs(o.NumSlices)
	}
}

// Validate checks options after defaults were applied.
func (o *Options) Validate() error {
	if o.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if !modalities.IsImage(o.Modality) {
		return fmt.Errorf("image modality must be CT or MR, got %q", o.Modality)
	}
	if o.NumSlices <= 0 {
		return fmt.Errorf("number of slices must be > 0, got %d", o.NumSlices)
	}
	if o.Rows < 8 || o.Columns < 8 {
		return fmt.Errorf("image must be at least 8x8 pixels, got %dx%d", o.Columns, o.Rows)
	}
	if o.PixelSpacing <= 0 || o.SliceThickness <= 0 || o.DoseSpacing <= 0 {
		return fmt.Errorf("spacings must be > 0")
	}
	if o.PlanIntent != "" {
		if _, err := util.ParsePlanIntent(o.PlanIntent); err != nil {
			return err
		}
	}
	if o.PrescriptionDose < 0 {
		return fmt.Errorf("prescription dose must be >= 0, got %g", o.PrescriptionDose)
	}
	seen := map[string]bool{}
	for i, r := range o.ROIs {
		if r.Name == "" {
			return fmt.Errorf("roi %d: name is required", i+1)
		}
		if seen[r.Name] {
			return fmt.Errorf("roi %q defined twice", r.Name)
		}
		seen[r.Name] = true
		if r.Radius <= 0 {
			return fmt.Errorf("roi %q: radius must be > 0", r.Name)
		}
		if r.Shape != "" && r.Shape != Circle && r.Shape != Square {
			return fmt.Errorf("roi %q: unknown shape %q", r.Name, r.Shape)
		}
		if r.FirstSlice < 0 || r.FirstSlice >= o.NumSlices {
			return fmt.Errorf("roi %q: first slice %d outside 0..%d", r.Name, r.FirstSlice, o.NumSlices-1)
		}
		if r.LastSlice >= o.NumSlices || (r.LastSlice >= 0 && r.LastSlice < r.FirstSlice) {
			return fmt.Errorf("roi %q: last slice %d invalid", r.Name, r.LastSlice)
		}
	}
	if o.EdgeCaseConfig.IsEnabled() {
		if err := o.EdgeCaseConfig.Validate(); err != nil {
			return err
		}
	}
	if o.CorruptionConfig.IsEnabled() {
		if err := o.CorruptionConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// patient holds the identity and UIDs shared by every object.
type patient struct {
	Name      string
	ID        string
	Sex       string
	BirthDate string
	StudyDate string
	StudyTime string

	StudyUID   string
	FrameUID   string
	OmitTags   []string
	ROINames   []string
	Scanner    modalities.Scanner
	SeriesPars modalities.SeriesParams
}

func (p *patient) omit(name string) bool {
	return slices.Contains(p.OmitTags, name)
}

// Generate writes a synthetic RT patient into opts.OutputDir.
func Generate(opts Options) (*Result, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		h := fnv.New64a()
		_, _ = h.Write([]byte(opts.OutputDir)) // hash.Write never returns an error
		seed = int64(h.Sum64())
		if !opts.Quiet {
			fmt.Printf("Auto-generated seed from '%s': %d\n", opts.OutputDir, seed)
		}
	} else if !opts.Quiet {
		fmt.Printf("Using seed: %d\n", seed)
	}
	rng := randv2.New(randv2.NewPCG(uint64(seed), uint64(seed)))

	p := newPatient(opts, seed, rng)
	uidSeed := func(parts ...any) string {
		return util.GenerateDeterministicUID(fmt.Sprint(append([]any{seed}, parts...)...))
	}

	res := &Result{
		Dir:                 opts.OutputDir,
		PatientID:           p.ID,
		PatientName:         p.Name,
		StudyUID:            p.StudyUID,
		FrameOfReferenceUID: p.FrameUID,
		ROINames:            p.ROINames,
	}

	total := opts.NumSlices
	for _, skip := range []bool{opts.SkipStructure, opts.SkipDose, opts.SkipPlan, opts.SkipReport} {
		if !skip {
			total++
		}
	}
	completed := 0
	report := func() {
		completed++
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(completed, total)
		}
	}

	images, err := writeImageSeries(opts, p, seed, rng, uidSeed, report)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, images...)

	planUID := uidSeed("plan")
	structUID := uidSeed("rtstruct")

	if !opts.SkipStructure {
		f, err := writeStructureSet(opts, p, images, structUID, uidSeed("rtstruct", "series"))
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
		report()
	}
	if !opts.SkipDose {
		refPlan := planUID
		if opts.SkipPlan {
			refPlan = ""
		}
		f, err := writeDose(opts, p, uidSeed("rtdose"), uidSeed("rtdose", "series"), refPlan)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
		report()
	}
	if !opts.SkipPlan {
		refStruct := structUID
		if opts.SkipStructure {
			refStruct = ""
		}
		f, err := writePlan(opts, p, planUID, uidSeed("plan", "series"), refStruct, rng)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
		report()
	}
	if !opts.SkipReport {
		f, err := writeClinicalReport(opts, p, uidSeed("sr"), uidSeed("sr", "series"), rng)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f)
		report()
	}

	fileTypes := opts.CorruptionConfig.FileTypes()
	if len(fileTypes) > 0 {
		app := corruption.NewApplicator(opts.CorruptionConfig, rng)
		junk, err := app.WriteJunkFiles(opts.OutputDir, images[0].Path)
		if err != nil {
			return nil, fmt.Errorf("write junk files: %w", err)
		}
		res.JunkFiles = junk
	}

	if !opts.Quiet {
		fmt.Printf("\n✓ %d DICOM files created in: %s/\n", len(res.Files), opts.OutputDir)
		if len(res.JunkFiles) > 0 {
			fmt.Printf("  plus %d unreadable files\n", len(res.JunkFiles))
		}
	}
	return res, nil
}

// newPatient draws the patient identity and applies name edge cases.
func newPatient(opts Options, seed int64, rng *randv2.Rand) *patient {
	sex := "M"
	if rng.IntN(2) == 0 {
		sex = "F"
	}
	p := &patient{
		Name:      opts.PatientName,
		ID:        opts.PatientID,
		Sex:       sex,
		BirthDate: fmt.Sprintf("%04d%02d%02d", 1940+rng.IntN(50), 1+rng.IntN(12), 1+rng.IntN(28)),
		StudyDate: fmt.Sprintf("2025%02d%02d", 1+rng.IntN(12), 1+rng.IntN(28)),
		StudyTime: fmt.Sprintf("%02d%02d%02d", 7+rng.IntN(10), rng.IntN(60), rng.IntN(60)),
		StudyUID:  util.GenerateDeterministicUID(fmt.Sprintf("%d_study", seed)),
		FrameUID:  util.GenerateDeterministicUID(fmt.Sprintf("%d_frame", seed)),
	}
	if p.Name == "" {
		p.Name = util.GeneratePatientName(sex, rng)
	}
	if p.ID == "" {
		p.ID = util.GeneratePatientID(rng)
	}

	gen := modalities.GetGenerator(opts.Modality)
	scanners := gen.Scanners()
	p.Scanner = scanners[rng.IntN(len(scanners))]
	p.SeriesPars = gen.GenerateSeriesParams(p.Scanner, rng)

	p.ROINames = make([]string, len(opts.ROIs))
	for i, r := range opts.ROIs {
		p.ROINames[i] = r.Name
	}

	if opts.EdgeCaseConfig.IsEnabled() {
		app := edgecases.NewApplicator(opts.EdgeCaseConfig, rng)
		if opts.PatientName == "" && app.ShouldApply() {
			p.Name = app.ApplyToPatientName(sex, p.Name)
		}
		for i := range p.ROINames {
			if app.ShouldApply() {
				p.ROINames[i] = app.ApplyToROIName(p.ROINames[i])
			}
		}
		p.OmitTags = app.GetTagsToOmit()
	}
	return p
}

// imagePath returns the file name of slice i (0-based), e.g. CT.1.dcm.
func imagePath(dir string, m modalities.Modality, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%d.dcm", m, i+1))
}
