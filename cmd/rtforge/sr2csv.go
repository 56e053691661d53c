package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrsinham/rtforge/internal/clinical"
	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
)

func runSR2CSV(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sr2csv", flag.ExitOnError)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	saveConfigFile := fs.String("save-config", "", "Save configuration to YAML file (after the run)")
	csvFile := fs.String("csv", "", "Clinical-data CSV file (default: clinical.csv)")
	statusCSV := fs.String("status-csv", "", "Append one status row per patient to this CSV file")
	quiet := fs.Bool("quiet", false, "Only print the statuses")
	fs.Parse(args)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if isSet(fs, "csv") {
		cfg.Export.ClinicalFile = *csvFile
	}
	statusPath := ""
	if isSet(fs, "status-csv") {
		cfg.Export.StatusFile = *statusCSV
		statusPath = *statusCSV
	}

	dirs := fs.Args()
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one patient directory is required")
		return errUsage
	}

	var progress rtdicom.ProgressFunc
	if !*quiet {
		last := ""
		progress = func(message string, percent float64) {
			if message != last {
				fmt.Printf("  %s (%.0f%%)\n", message, percent)
				last = message
			}
		}
	}

	failed := 0
	for _, dir := range dirs {
		fmt.Printf("%s\n", dir)
		status, err := clinical.SR2CSV(ctx, dir, cfg.Export.ClinicalFile, progress)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", status, err)
		} else {
			fmt.Printf("  %s\n", status)
		}
		appendStatus(statusPath, "sr2csv", dir, status)

		switch status {
		case rtdicom.StatusOK, clinical.StatusSkip, clinical.StatusNoClinicalSR:
		case rtdicom.StatusInterrupt:
			return fmt.Errorf("interrupted at %s", dir)
		default:
			failed++
		}
	}

	saveConfig(cfg, *saveConfigFile)

	if failed > 0 {
		return fmt.Errorf("%d of %d patients failed", failed, len(dirs))
	}
	fmt.Printf("\n✓ Clinical data appended to %s\n", cfg.Export.ClinicalFile)
	return nil
}
