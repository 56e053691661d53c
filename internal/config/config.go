// Package config loads and saves the rtforge YAML configuration. Every
// command reads its defaults from here; flags given on the command line
// override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrsinham/rtforge/internal/dicom/corruption"
	"github.com/mrsinham/rtforge/internal/dicom/edgecases"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration file.
type Config struct {
	Load   LoadSettings `yaml:"load"`
	Export ExportConfig `yaml:"export"`
	Clean  CleanConfig  `yaml:"clean"`
	Synth  SynthConfig  `yaml:"synth"`
}

// LoadSettings holds the settings of the loading pipeline.
type LoadSettings struct {
	Workers   int  `yaml:"workers"`
	DoseLimit int  `yaml:"dose_limit"` // cGy, 0 = grid maximum
	Quiet     bool `yaml:"quiet"`
}

// ExportConfig names the CSV files written by the batch jobs.
type ExportConfig struct {
	DVHFile      string `yaml:"dvh_file"`
	ClinicalFile string `yaml:"clinical_file"`
	StatusFile   string `yaml:"status_file"`
}

// CleanRule is one ROI name cleaning action.
type CleanRule struct {
	Name    string `yaml:"name"`
	Op      string `yaml:"op"` // ignore, rename or delete
	NewName string `yaml:"new_name,omitempty"`
}

// CleanConfig holds the ROI cleaning rules applied by clean-rois.
type CleanConfig struct {
	// Suggest renames every ROI without a rule to its standard name, when one is known.
	Suggest bool        `yaml:"suggest"`
	Rules   []CleanRule `yaml:"rules,omitempty"`
}

// SynthConfig holds the synthetic patient settings.
type SynthConfig struct {
	Modality         string          `yaml:"modality"`
	NumSlices        int             `yaml:"num_slices"`
	Rows             int             `yaml:"rows"`
	Columns          int             `yaml:"columns"`
	PixelSpacing     float64         `yaml:"pixel_spacing"`
	SliceThickness   float64         `yaml:"slice_thickness"`
	DoseSpacing      float64         `yaml:"dose_spacing"`
	PrescriptionDose float64         `yaml:"prescription_dose"`
	PlanIntent       string          `yaml:"plan_intent,omitempty"`
	PatientName      string          `yaml:"patient_name,omitempty"`
	PatientID        string          `yaml:"patient_id,omitempty"`
	Seed             int64           `yaml:"seed"`
	ROIs             []synth.ROISpec `yaml:"rois,omitempty"`
	EdgeCases        string          `yaml:"edge_cases,omitempty"`
	EdgeCasePercent  int             `yaml:"edge_case_percent"`
	Corruption       string          `yaml:"corruption,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Load.Workers = runtime.NumCPU()

	cfg.Export.DVHFile = "dvh.csv"
	cfg.Export.ClinicalFile = "clinical.csv"
	cfg.Export.StatusFile = "status.csv"

	cfg.Synth.Modality = string(modalities.CT)
	cfg.Synth.NumSlices = 10
	cfg.Synth.Rows = 64
	cfg.Synth.Columns = 64
	cfg.Synth.PixelSpacing = 2
	cfg.Synth.SliceThickness = 3
	cfg.Synth.DoseSpacing = 4
	cfg.Synth.PrescriptionDose = 60

	return cfg
}

// LoadConfig reads a YAML file over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating the parent directory.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the values that cannot be checked by the consumers later.
func (c *Config) Validate() error {
	if c.Load.Workers < 0 {
		return fmt.Errorf("load.workers must be >= 0, got %d", c.Load.Workers)
	}
	if c.Load.DoseLimit < 0 {
		return fmt.Errorf("load.dose_limit must be >= 0, got %d", c.Load.DoseLimit)
	}
	for i, r := range c.Clean.Rules {
		switch r.Op {
		case "ignore", "delete":
		case "rename":
			if r.NewName == "" {
				return fmt.Errorf("clean.rules[%d]: rename of %q needs new_name", i, r.Name)
			}
		default:
			return fmt.Errorf("clean.rules[%d]: unknown op %q", i, r.Op)
		}
	}
	if c.Synth.EdgeCasePercent < 0 || c.Synth.EdgeCasePercent > 100 {
		return fmt.Errorf("synth.edge_case_percent must be 0-100, got %d", c.Synth.EdgeCasePercent)
	}
	return nil
}

// Options converts the synth section into generator options.
func (s SynthConfig) Options(outputDir string) (synth.Options, error) {
	opts := synth.Options{
		OutputDir:        outputDir,
		Modality:         modalities.Parse(s.Modality),
		NumSlices:        s.NumSlices,
		Rows:             s.Rows,
		Columns:          s.Columns,
		PixelSpacing:     s.PixelSpacing,
		SliceThickness:   s.SliceThickness,
		DoseSpacing:      s.DoseSpacing,
		PrescriptionDose: s.PrescriptionDose,
		PlanIntent:       s.PlanIntent,
		PatientName:      s.PatientName,
		PatientID:        s.PatientID,
		Seed:             s.Seed,
		ROIs:             s.ROIs,
	}

	edgeTypes, err := edgecases.ParseTypes(s.EdgeCases)
	if err != nil {
		return opts, fmt.Errorf("synth.edge_cases: %w", err)
	}
	if len(edgeTypes) > 0 {
		pct := s.EdgeCasePercent
		if pct == 0 {
			pct = 100
		}
		opts.EdgeCaseConfig = edgecases.Config{Percentage: pct, Types: edgeTypes}
	}

	corruptTypes, err := corruption.ParseTypes(s.Corruption)
	if err != nil {
		return opts, fmt.Errorf("synth.corruption: %w", err)
	}
	opts.CorruptionConfig = corruption.Config{Types: corruptTypes}
	return opts, nil
}
