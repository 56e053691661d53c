package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/corruption"
	"github.com/mrsinham/rtforge/internal/dicom/edgecases"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if cfg.Load.Workers != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), cfg.Load.Workers)
	}
	if want := (LoadSettings{Workers: runtime.NumCPU()}); cfg.Load != want {
		t.Errorf("Load = %+v, want %+v", cfg.Load, want)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtforge.yaml")
	content := `
load:
  workers: 2
  dose_limit: 7000
clean:
  suggest: true
  rules:
    - name: "ptv "
      op: rename
      new_name: PTV
    - name: z_ring
      op: delete
synth:
  num_slices: 24
  edge_cases: messy-case,vendor-prefix
  rois:
    - name: GTV
      shape: square
      radius: 8
      first_slice: 2
      last_slice: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Load.Workers != 2 || cfg.Load.DoseLimit != 7000 {
		t.Errorf("load = %+v", cfg.Load)
	}
	if cfg.Export.DVHFile != "dvh.csv" {
		t.Errorf("Expected default dvh file, got %q", cfg.Export.DVHFile)
	}
	if cfg.Synth.NumSlices != 24 || cfg.Synth.Rows != 64 {
		t.Errorf("synth = %+v", cfg.Synth)
	}
	if len(cfg.Clean.Rules) != 2 || cfg.Clean.Rules[0].NewName != "PTV" {
		t.Errorf("rules = %+v", cfg.Clean.Rules)
	}
	want := synth.ROISpec{Name: "GTV", Shape: synth.Square, Radius: 8, FirstSlice: 2, LastSlice: 5}
	if len(cfg.Synth.ROIs) != 1 || cfg.Synth.ROIs[0] != want {
		t.Errorf("rois = %+v", cfg.Synth.ROIs)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "load: [", "parse config file"},
		{"negative workers", "load:\n  workers: -1\n", "load.workers"},
		{"unknown op", "clean:\n  rules:\n    - name: A\n      op: merge\n", "unknown op"},
		{"rename without name", "clean:\n  rules:\n    - name: A\n      op: rename\n", "needs new_name"},
		{"percent out of range", "synth:\n  edge_case_percent: 150\n", "edge_case_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "rtforge.yaml")

	cfg := DefaultConfig()
	cfg.Load.DoseLimit = 6500
	cfg.Clean.Rules = []CleanRule{{Name: "Lung L", Op: "rename", NewName: "Lung_L"}}
	cfg.Synth.Seed = 99
	cfg.Synth.Corruption = "all"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestSynthConfig_Options(t *testing.T) {
	s := DefaultConfig().Synth
	s.EdgeCases = "long-names"
	s.Corruption = "empty,siemens-csa"

	opts, err := s.Options("/tmp/out")
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.OutputDir != "/tmp/out" || opts.NumSlices != 10 || opts.PrescriptionDose != 60 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.EdgeCaseConfig.Percentage != 100 || !opts.EdgeCaseConfig.HasType(edgecases.LongNames) {
		t.Errorf("edge cases = %+v", opts.EdgeCaseConfig)
	}
	if !opts.CorruptionConfig.HasType(corruption.Empty) || !opts.CorruptionConfig.HasType(corruption.SiemensCSA) {
		t.Errorf("corruption = %+v", opts.CorruptionConfig)
	}

	s.Corruption = "melted"
	if _, err := s.Options("/tmp/out"); err == nil {
		t.Error("expected error for unknown corruption type")
	}
}
