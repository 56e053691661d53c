package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/mrsinham/rtforge/internal/config"
	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/edgecases"
	"github.com/mrsinham/rtforge/internal/export"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Subcommand detection happens before any flag parsing; a bare directory
	// or a flag means "load".
	cmd, args := "load", os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "load", "synth", "clean-rois", "sr2csv", "tui":
			cmd, args = args[0], args[1:]
		case "help", "--help", "-help", "-h":
			printHelp()
			os.Exit(0)
		case "version", "--version", "-version":
			fmt.Printf("rtforge %s\n", version)
			os.Exit(0)
		}
	}

	// Ctrl+C cancels the running batch; the current patient is reported as INTERRUPT.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "load":
		err = runLoad(ctx, args)
	case "synth":
		err = runSynth(args)
	case "clean-rois":
		err = runCleanROIs(ctx, args)
	case "sr2csv":
		err = runSR2CSV(ctx, args)
	case "tui":
		err = runLoad(ctx, append([]string{"--interactive"}, args...))
	}

	if errors.Is(err, errUsage) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// saveConfig writes cfg after a successful run. Failures are only a warning.
func saveConfig(cfg *config.Config, path string) {
	if path == "" {
		return
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		return
	}
	fmt.Printf("Configuration saved to %s\n", path)
}

// isSet reports whether the flag was given on the command line, so that
// only explicit flags override the config file.
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// appendStatus records the outcome of one patient in the status CSV.
func appendStatus(path, job, dir string, status rtdicom.Status) {
	if path == "" {
		return
	}
	row := export.Row{
		{Key: "Patient directory", Value: dir},
		{Key: "Job", Value: job},
		{Key: "Status", Value: string(status)},
	}
	if err := export.AppendRow(path, row); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write status: %v\n", err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  rtforge [load] [options] <patient-dir>...")
	fmt.Fprintln(os.Stderr, "  rtforge synth [options]")
	fmt.Fprintln(os.Stderr, "  rtforge clean-rois [options] <patient-dir|RS file>...")
	fmt.Fprintln(os.Stderr, "  rtforge sr2csv [options] <patient-dir>...")
	fmt.Fprintln(os.Stderr, "  rtforge tui [options] <patient-dir>")
	fmt.Fprintln(os.Stderr, "\nRun 'rtforge help' for details.")
}

func printHelp() {
	fmt.Println("rtforge")
	fmt.Println("=======")
	fmt.Println()
	fmt.Println("Load radiotherapy patient directories (CT/MR + RTSTRUCT + RTDOSE), compute")
	fmt.Println("dose-volume histograms and run the batch jobs around them.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  load <DIR>...         Load patients, print ROI dose statistics (default command)")
	fmt.Println("  tui <DIR>             Interactive summary, ROI cleaning and DVH export")
	fmt.Println("  synth                 Write synthetic RT patients")
	fmt.Println("  clean-rois <PATH>...  Rename or delete ROIs in structure sets, in place")
	fmt.Println("  sr2csv <DIR>...       Append clinical-data reports to a CSV file")
	fmt.Println("  version               Show version")
	fmt.Println()
	fmt.Println("Common options:")
	fmt.Println("  --config <FILE>       Load configuration from YAML file (missing file = defaults)")
	fmt.Println("  --save-config <FILE>  Save the effective configuration after the run")
	fmt.Println()
	fmt.Println("load options:")
	fmt.Printf("  --workers <N>         Parallel DVH calculations (default: %d = CPU cores)\n", runtime.NumCPU())
	fmt.Println("  --dose-limit <cGy>    Cap DVH histograms (default: grid maximum)")
	fmt.Println("  --dvh-csv <FILE>      Append one row per ROI to this CSV file")
	fmt.Printf("  --max-dose <Gy>       Last dose column of the DVH CSV (default: %d)\n", export.DefaultMaxDoseGy)
	fmt.Println("  --status-csv <FILE>   Append one status row per patient")
	fmt.Println("  --quiet               Only print the results")
	fmt.Println("  -i, --interactive     Same as the tui command")
	fmt.Println()
	fmt.Println("synth options:")
	fmt.Println("  --output <DIR>        Output directory (default: 'rt_patient')")
	fmt.Println("  --num-patients <N>    Patients to write, in PT001, PT002... when N > 1")
	fmt.Println("  --modality <MOD>      Image modality: CT or MR (default: CT)")
	fmt.Println("  --num-slices <N>      Image slices (default: 10)")
	fmt.Println("  --rows, --columns <N> Image size (default: 64x64)")
	fmt.Println("  --prescription <Gy>   Prescription dose (default: 60)")
	fmt.Println("  --plan-intent <I>     CURATIVE, PALLIATIVE, PROPHYLACTIC or VERIFICATION")
	fmt.Println("  --seed <N>            Seed for reproducibility (derived from output if not set)")
	fmt.Println("  --skip-structure, --skip-dose, --skip-plan, --skip-report")
	fmt.Println("                        Leave out one of the RT objects")
	fmt.Println("  --edge-cases <TYPES>  Comma-separated edge case types (or 'all'):")
	for _, et := range edgecases.AllEdgeCaseTypes() {
		fmt.Printf("                          %-14s %s\n", et, et.Description())
	}
	fmt.Println("  --edge-case-percent <N> Share of patients with edge cases (default: 100)")
	fmt.Println("  --corrupt <TYPES>     Vendor corruption types (or 'all')")
	fmt.Println()
	fmt.Println("clean-rois options:")
	fmt.Println("  --rename <OLD=NEW>    Rename an ROI (repeatable)")
	fmt.Println("  --delete <NAME>       Delete an ROI (repeatable)")
	fmt.Println("  --suggest             Rename ROIs to their standard spelling when one is known")
	fmt.Println("  --dry-run             Print the actions without writing")
	fmt.Println()
	fmt.Println("sr2csv options:")
	fmt.Println("  --csv <FILE>          Clinical-data CSV file (default: clinical.csv)")
	fmt.Println("  --status-csv <FILE>   Append one status row per patient")
	fmt.Println()
	fmt.Println("Statuses:")
	fmt.Println("  OK, INTERRUPT, MISSING_FILES, INCORRECT_DIRECTORY, ERROR")
	fmt.Println("  sr2csv also reports SKIP (no report) and CD_NO_SR (no clinical-data report)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Write two synthetic patients and export their DVHs")
	fmt.Println("  rtforge synth --output data --num-patients 2 --seed 42")
	fmt.Println("  rtforge load --dvh-csv dvh.csv data/PT001 data/PT002")
	fmt.Println()
	fmt.Println("  # Standardize ROI names, then collect the clinical data")
	fmt.Println("  rtforge clean-rois --suggest data/PT001")
	fmt.Println("  rtforge sr2csv --csv clinical.csv data/PT001 data/PT002")
}
