package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
)

func runSynth(args []string) error {
	fs := flag.NewFlagSet("synth", flag.ExitOnError)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	saveConfigFile := fs.String("save-config", "", "Save configuration to YAML file (after generation)")
	outputDir := fs.String("output", "rt_patient", "Output directory")
	numPatients := fs.Int("num-patients", 1, "Number of patients to write")
	modality := fs.String("modality", "CT", "Image modality: CT or MR")
	numSlices := fs.Int("num-slices", 0, "Number of image slices")
	rows := fs.Int("rows", 0, "Image rows")
	columns := fs.Int("columns", 0, "Image columns")
	pixelSpacing := fs.Float64("pixel-spacing", 0, "In-plane pixel spacing in mm")
	sliceThickness := fs.Float64("slice-thickness", 0, "Slice thickness in mm")
	doseSpacing := fs.Float64("dose-spacing", 0, "In-plane dose voxel size in mm")
	prescription := fs.Float64("prescription", 0, "Prescription dose in Gy")
	planIntent := fs.String("plan-intent", "", "Plan intent: CURATIVE, PALLIATIVE, PROPHYLACTIC, VERIFICATION (random if not specified)")
	patientName := fs.String("patient-name", "", "Patient name (generated if not specified)")
	patientID := fs.String("patient-id", "", "Patient ID (generated if not specified)")
	seed := fs.Int64("seed", 0, "Seed for reproducibility (derived from output if not specified)")
	skipStructure := fs.Bool("skip-structure", false, "Do not write the RT Structure Set")
	skipDose := fs.Bool("skip-dose", false, "Do not write the RT Dose")
	skipPlan := fs.Bool("skip-plan", false, "Do not write the RT Plan")
	skipReport := fs.Bool("skip-report", false, "Do not write the clinical-data report")
	edgeCases := fs.String("edge-cases", "", "Comma-separated edge case types (or 'all')")
	edgeCasePercent := fs.Int("edge-case-percent", 0, "Percentage of patients with edge cases (0 = 100 when types are set)")
	corrupt := fs.String("corrupt", "", "Comma-separated vendor corruption types (or 'all')")
	workers := fs.Int("workers", 0, "Parallel slice writers (0 = CPU cores)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	sc := &cfg.Synth
	if isSet(fs, "modality") {
		sc.Modality = string(modalities.Parse(*modality))
	}
	if isSet(fs, "num-slices") {
		sc.NumSlices = *numSlices
	}
	if isSet(fs, "rows") {
		sc.Rows = *rows
	}
	if isSet(fs, "columns") {
		sc.Columns = *columns
	}
	if isSet(fs, "pixel-spacing") {
		sc.PixelSpacing = *pixelSpacing
	}
	if isSet(fs, "slice-thickness") {
		sc.SliceThickness = *sliceThickness
	}
	if isSet(fs, "dose-spacing") {
		sc.DoseSpacing = *doseSpacing
	}
	if isSet(fs, "prescription") {
		sc.PrescriptionDose = *prescription
	}
	if isSet(fs, "plan-intent") {
		sc.PlanIntent = *planIntent
	}
	if isSet(fs, "patient-name") {
		sc.PatientName = *patientName
	}
	if isSet(fs, "patient-id") {
		sc.PatientID = *patientID
	}
	if isSet(fs, "seed") {
		sc.Seed = *seed
	}
	if isSet(fs, "edge-cases") {
		sc.EdgeCases = *edgeCases
	}
	if isSet(fs, "edge-case-percent") {
		sc.EdgeCasePercent = *edgeCasePercent
	}
	if isSet(fs, "corrupt") {
		sc.Corruption = *corrupt
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *numPatients <= 0 {
		return fmt.Errorf("--num-patients must be > 0, got %d", *numPatients)
	}

	if !*quiet {
		fmt.Println("rtforge synth")
		fmt.Println("=============")
		fmt.Println()
	}

	for i := 0; i < *numPatients; i++ {
		dir := *outputDir
		if *numPatients > 1 {
			dir = filepath.Join(*outputDir, fmt.Sprintf("PT%03d", i+1))
		}

		opts, err := sc.Options(dir)
		if err != nil {
			return err
		}
		if opts.Seed != 0 {
			opts.Seed += int64(i)
		}
		if opts.PatientID != "" && *numPatients > 1 {
			opts.PatientID = fmt.Sprintf("%s_%03d", opts.PatientID, i+1)
		}
		opts.SkipStructure = *skipStructure
		opts.SkipDose = *skipDose
		opts.SkipPlan = *skipPlan
		opts.SkipReport = *skipReport
		opts.Workers = *workers
		opts.Quiet = *quiet

		res, err := synth.Generate(opts)
		if err != nil {
			return fmt.Errorf("generating patient %d: %w", i+1, err)
		}
		if !*quiet {
			fmt.Printf("  Patient: %s (%s), ROIs: %v\n", res.PatientName, res.PatientID, res.ROINames)
		}
	}

	saveConfig(cfg, *saveConfigFile)

	if !*quiet {
		fmt.Println("\n✓ Generation complete!")
		fmt.Printf("  Output directory: %s\n", *outputDir)
	}
	return nil
}
