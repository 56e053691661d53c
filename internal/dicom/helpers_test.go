package dicom

import (
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/synth"
)

// generatePatient writes a small synthetic patient into a temp dir.
func generatePatient(t *testing.T, opts synth.Options) *synth.Result {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.NumSlices == 0 {
		opts.NumSlices = 6
	}
	opts.Quiet = true
	res, err := synth.Generate(opts)
	if err != nil {
		t.Fatalf("synth.Generate() error = %v", err)
	}
	return res
}
