package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrsinham/rtforge/internal/config"
	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/roiclean"
	"github.com/suyashkumar/dicom"
)

func runCleanROIs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean-rois", flag.ExitOnError)
	configFile := fs.String("config", "", "Load configuration from YAML file")
	saveConfigFile := fs.String("save-config", "", "Save configuration to YAML file (after the run)")
	suggest := fs.Bool("suggest", false, "Rename ROIs to their standard spelling when one is known")
	dryRun := fs.Bool("dry-run", false, "Print the actions without writing")

	var flagRules []config.CleanRule
	fs.Func("rename", "Rename an ROI: 'OLD=NEW' (repeatable)", func(s string) error {
		old, name, ok := strings.Cut(s, "=")
		if !ok || old == "" || name == "" {
			return fmt.Errorf("invalid rename %q, expected OLD=NEW", s)
		}
		flagRules = append(flagRules, config.CleanRule{Name: old, Op: "rename", NewName: name})
		return nil
	})
	fs.Func("delete", "Delete an ROI by name (repeatable)", func(s string) error {
		flagRules = append(flagRules, config.CleanRule{Name: s, Op: "delete"})
		return nil
	})
	fs.Parse(args)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if isSet(fs, "suggest") {
		cfg.Clean.Suggest = *suggest
	}
	// command line rules come last and win over the config file
	cfg.Clean.Rules = append(cfg.Clean.Rules, flagRules...)
	if err := cfg.Validate(); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one patient directory or structure set is required")
		return errUsage
	}

	var jobs []roiclean.Job
	for _, p := range paths {
		rs, names, err := findStructureSet(ctx, p)
		if err != nil {
			return err
		}
		actions, err := cleanActions(cfg.Clean, names)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", rs)
		for _, a := range actions {
			switch a.Op {
			case roiclean.Rename:
				fmt.Printf("  rename %q -> %q\n", a.Name, a.NewName)
			case roiclean.Delete:
				fmt.Printf("  delete %q\n", a.Name)
			}
		}
		jobs = append(jobs, roiclean.Job{Path: rs, Actions: actions})
	}

	if *dryRun {
		fmt.Println("\nDry run, nothing written.")
		return nil
	}

	reports, err := roiclean.Run(ctx, jobs, nil)
	for _, job := range jobs {
		rep, ok := reports[job.Path]
		if !ok {
			continue
		}
		fmt.Printf("\n%s: %d renamed, %d deleted", job.Path, len(rep.Renamed), len(rep.Deleted))
		if len(rep.NotFound) > 0 {
			fmt.Printf(", not found: %v", rep.NotFound)
		}
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("cleaning ROIs: %w", err)
	}

	saveConfig(cfg, *saveConfigFile)
	fmt.Println("\n✓ ROI cleaning complete")
	return nil
}

// findStructureSet accepts a structure set file or a patient directory and
// returns the structure set path with its ROI names in ROI number order.
func findStructureSet(ctx context.Context, path string) (string, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}

	var rs string
	var ds dicom.Dataset
	if info.IsDir() {
		fileSet, _, err := rtdicom.ScanDirectory(ctx, path, rtdicom.NewProgress(nil))
		if err != nil {
			return "", nil, err
		}
		if fileSet.RTSS == nil {
			return "", nil, fmt.Errorf("%s: %w", path, &rtdicom.MissingFilesError{Structure: true})
		}
		rs, ds = fileSet.RTSS.Path, fileSet.RTSS.Dataset
	} else {
		rs = path
		ds, err = rtdicom.ReadFile(path, dicom.SkipPixelData())
		if err != nil {
			return "", nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	rois, err := rtdicom.ExtractROIs(ds)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", rs, err)
	}
	names := make([]string, 0, len(rois))
	for _, n := range rtdicom.SortedROINumbers(rois) {
		names = append(names, rois[n].Name)
	}
	return rs, names, nil
}

// cleanActions builds one action per ROI name: the last rule naming the ROI,
// else a suggestion when enabled, else Ignore. Rules for ROIs that are not in
// the file are kept so that they show up as not found.
func cleanActions(cc config.CleanConfig, names []string) ([]roiclean.Action, error) {
	byName := make(map[string]roiclean.Action, len(cc.Rules))
	var order []string
	for _, r := range cc.Rules {
		op, err := roiclean.ParseOp(r.Op)
		if err != nil {
			return nil, err
		}
		if _, seen := byName[r.Name]; !seen {
			order = append(order, r.Name)
		}
		byName[r.Name] = roiclean.Action{Name: r.Name, Op: op, NewName: r.NewName}
	}

	var actions []roiclean.Action
	inFile := make(map[string]bool, len(names))
	for i, name := range names {
		inFile[name] = true
		if a, ok := byName[name]; ok {
			actions = append(actions, a)
			continue
		}
		if cc.Suggest {
			actions = append(actions, roiclean.SuggestActions(names[i:i+1])...)
			continue
		}
		actions = append(actions, roiclean.Action{Name: name, Op: roiclean.Ignore})
	}
	for _, name := range order {
		if !inFile[name] {
			actions = append(actions, byName[name])
		}
	}
	return actions, nil
}
