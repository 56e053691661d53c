package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrsinham/rtforge/cmd/rtforge/tui"
	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/dvh"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/export"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func runLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	saveConfigFile := fs.String("save-config", "", "Save configuration to YAML file (after the run)")
	workers := fs.Int("workers", 0, "Parallel DVH calculations (0 = CPU cores)")
	doseLimit := fs.Int("dose-limit", 0, "Cap DVH histograms in cGy (0 = grid maximum)")
	dvhCSV := fs.String("dvh-csv", "", "Append one row per ROI to this CSV file")
	maxDose := fs.Int("max-dose", export.DefaultMaxDoseGy, "Last dose column of the DVH CSV, in Gy")
	statusCSV := fs.String("status-csv", "", "Append one status row per patient to this CSV file")
	quiet := fs.Bool("quiet", false, "Only print the results")
	interactive := fs.Bool("interactive", false, "Launch the interactive summary")
	fs.BoolVar(interactive, "i", false, "Launch the interactive summary (shortcut)")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if isSet(fs, "workers") {
		cfg.Load.Workers = *workers
	}
	if isSet(fs, "dose-limit") {
		cfg.Load.DoseLimit = *doseLimit
	}
	if isSet(fs, "quiet") {
		cfg.Load.Quiet = *quiet
	}
	if isSet(fs, "dvh-csv") {
		cfg.Export.DVHFile = *dvhCSV
	}
	if isSet(fs, "status-csv") {
		cfg.Export.StatusFile = *statusCSV
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := fs.Args()
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one patient directory is required")
		return errUsage
	}

	if *interactive {
		if len(dirs) != 1 {
			return fmt.Errorf("the interactive summary takes exactly one patient directory, got %d", len(dirs))
		}
		err := tui.Run(tui.Options{
			Load: rtdicom.LoadOptions{
				Dir:       dirs[0],
				Workers:   cfg.Load.Workers,
				DoseLimit: cfg.Load.DoseLimit,
			},
			ExportPath: cfg.Export.DVHFile,
			MaxDoseGy:  *maxDose,
		})
		if err == nil {
			saveConfig(cfg, *saveConfigFile)
		}
		return err
	}

	// The CSV outputs are opt-in on the command line; the config file
	// names them for the interactive export.
	dvhPath, statusPath := "", ""
	if isSet(fs, "dvh-csv") {
		dvhPath = cfg.Export.DVHFile
	}
	if isSet(fs, "status-csv") {
		statusPath = cfg.Export.StatusFile
	}

	if !cfg.Load.Quiet {
		fmt.Println("rtforge")
		fmt.Println("=======")
	}

	failed := 0
	for _, dir := range dirs {
		status := loadPatient(ctx, dir, cfg.Load.Workers, cfg.Load.DoseLimit, cfg.Load.Quiet, dvhPath, *maxDose)
		appendStatus(statusPath, "load", dir, status)
		if status != rtdicom.StatusOK {
			failed++
		}
		if status == rtdicom.StatusInterrupt {
			break
		}
	}

	saveConfig(cfg, *saveConfigFile)

	if failed > 0 {
		return fmt.Errorf("%d of %d patients failed", failed, len(dirs))
	}
	return nil
}

// loadPatient runs the pipeline on one directory and prints its summary.
func loadPatient(ctx context.Context, dir string, workers, doseLimit int, quiet bool, dvhPath string, maxDose int) rtdicom.Status {
	fmt.Printf("\nPatient directory: %s\n", dir)

	start := time.Now()
	s, err := rtdicom.Load(ctx, rtdicom.LoadOptions{
		Dir:       dir,
		Workers:   workers,
		DoseLimit: doseLimit,
		Quiet:     quiet,
	})
	status := rtdicom.StatusOf(err)
	if err != nil {
		fmt.Printf("  ✗ %s: %v\n", status, err)
		return status
	}

	printSession(s, time.Since(start))

	if dvhPath != "" {
		id := elem.String(s.FileSet.RTSS.Dataset.Elements, tag.PatientID)
		if err := export.WriteDVH(dvhPath, id, s.DVH, maxDose); err != nil {
			fmt.Printf("  ✗ writing DVH CSV: %v\n", err)
			return rtdicom.StatusError
		}
		fmt.Printf("  DVHs appended to %s\n", dvhPath)
	}
	fmt.Printf("  ✓ %s\n", status)
	return status
}

func printSession(s *rtdicom.Session, elapsed time.Duration) {
	fs := s.FileSet
	fmt.Printf("  Images: %d, skipped files: %d, loaded in %.1fs\n",
		len(fs.Images), fs.SkippedCount(), elapsed.Seconds())
	if len(fs.Recovered) > 0 {
		fmt.Printf("  Recovered from damaged files: %d\n", len(fs.Recovered))
	}

	fmt.Printf("\n  %-4s %-20s %12s %8s %8s %8s %8s\n", "#", "ROI", "Volume cm³", "Min Gy", "Mean Gy", "Max Gy", "D95 Gy")
	for _, n := range rtdicom.SortedROINumbers(s.ROIs) {
		name := s.ROIs[n].Name
		c, ok := s.DVH[n]
		if !ok {
			reason := "no contour"
			if err, failed := s.FailedDVH[n]; failed {
				reason = err.Error()
			}
			fmt.Printf("  %-4d %-20s %s\n", n, name, reason)
			continue
		}
		st := dvh.ComputeStats(c)
		fmt.Printf("  %-4d %-20s %12.2f %8.2f %8.2f %8.2f %8.2f\n", n, name, st.Volume, st.Min, st.Mean, st.Max, st.D95)
	}
	fmt.Println()
}
