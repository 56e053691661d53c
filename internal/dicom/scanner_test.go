package dicom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/rtforge/internal/dicom/corruption"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
)

func TestScanDirectory_ClassifiesPatient(t *testing.T) {
	res := generatePatient(t, synth.Options{
		NumSlices:        12,
		CorruptionConfig: corruption.Config{Types: []corruption.CorruptionType{corruption.NotDICOM, corruption.Empty}},
	})

	var reported []float64
	fs, p, err := ScanDirectory(context.Background(), res.Dir, NewProgress(func(_ string, pct float64) {
		reported = append(reported, pct)
	}).Stage(40))
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}

	if len(fs.Images) != 12 {
		t.Fatalf("got %d images, want 12", len(fs.Images))
	}
	// natural order: CT.2 before CT.10
	for i, img := range fs.Images {
		want := filepath.Join(res.Dir, fmt.Sprintf("CT.%d.dcm", i+1))
		if img.Path != want || img.Key != ImageKey(i) || fs.Paths[ImageKey(i)] != want {
			t.Errorf("image %d = %s (key %s), want %s", i, img.Path, img.Key, want)
		}
		if img.Modality != modalities.CT {
			t.Errorf("image %d modality = %s", i, img.Modality)
		}
	}

	if fs.RTSS == nil || fs.RTSS.Key != KeyRTSS {
		t.Error("RT Structure Set not classified")
	}
	if fs.RTDose == nil || fs.Paths[KeyRTDose] != filepath.Join(res.Dir, synth.DoseFile) {
		t.Error("RT Dose not classified")
	}
	if fs.RTPlan == nil {
		t.Error("RT Plan not classified")
	}
	if len(fs.Reports) != 1 || fs.Reports[0].Key != ReportKey(0) {
		t.Errorf("reports = %d, want 1", len(fs.Reports))
	}
	if fs.Len() != 16 {
		t.Errorf("Len() = %d, want 16", fs.Len())
	}
	if fs.SkippedCount() != 2 {
		t.Errorf("SkippedCount() = %d, want 2 (%v)", fs.SkippedCount(), fs.Skipped)
	}

	if p.Percent != 40 {
		t.Errorf("progress after scan = %g, want 40", p.Percent)
	}
	if p.Elements == 0 {
		t.Error("element count not accumulated")
	}
	if len(reported) != 18 {
		t.Errorf("progress reported %d times, want once per file (18)", len(reported))
	}
	t.Logf("✓ %d files classified, %d skipped", fs.Len(), fs.SkippedCount())
}

func TestScanDirectory_AllJunkTypesSkipped(t *testing.T) {
	res := generatePatient(t, synth.Options{
		NumSlices:        3,
		CorruptionConfig: corruption.Config{Types: corruption.AllCorruptionTypes()},
	})

	fs, _, err := ScanDirectory(context.Background(), res.Dir, NewProgress(nil))
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if len(fs.Images) != 3 {
		t.Errorf("got %d images, want 3", len(fs.Images))
	}
	if fs.SkippedCount() != len(res.JunkFiles) {
		t.Errorf("SkippedCount() = %d, want %d (%v)", fs.SkippedCount(), len(res.JunkFiles), fs.Skipped)
	}
}

func TestScanDirectory_LastSingletonWins(t *testing.T) {
	res := generatePatient(t, synth.Options{NumSlices: 2})

	data, err := os.ReadFile(filepath.Join(res.Dir, synth.StructureFile))
	if err != nil {
		t.Fatal(err)
	}
	copyPath := filepath.Join(res.Dir, "RS_copy.dcm")
	if err := os.WriteFile(copyPath, data, 0600); err != nil {
		t.Fatal(err)
	}

	fs, _, err := ScanDirectory(context.Background(), res.Dir, NewProgress(nil))
	if err != nil {
		t.Fatal(err)
	}
	if fs.RTSS.Path != copyPath {
		t.Errorf("RTSS = %s, want the later file %s", fs.RTSS.Path, copyPath)
	}
}

func TestScanDirectory_EdgeCases(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		fs, _, err := ScanDirectory(context.Background(), t.TempDir(), NewProgress(nil))
		if err != nil {
			t.Fatalf("ScanDirectory() error = %v", err)
		}
		if fs.Len() != 0 || fs.SkippedCount() != 0 {
			t.Errorf("empty directory gave %d files, %d skipped", fs.Len(), fs.SkippedCount())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), NewProgress(nil))
		if !errors.Is(err, ErrIncorrectDirectory) {
			t.Errorf("error = %v, want ErrIncorrectDirectory", err)
		}
		if StatusOf(err) != StatusIncorrectDirectory {
			t.Errorf("status = %s", StatusOf(err))
		}
	})

	t.Run("subdirectories ignored", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
			t.Fatal(err)
		}
		fs, _, err := ScanDirectory(context.Background(), dir, NewProgress(nil))
		if err != nil {
			t.Fatal(err)
		}
		if fs.SkippedCount() != 0 {
			t.Errorf("directory counted as skipped file")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		res := generatePatient(t, synth.Options{NumSlices: 2})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := ScanDirectory(ctx, res.Dir, NewProgress(nil))
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("error = %v, want ErrInterrupted", err)
		}
	})
}

// flipByte writes a copy of src to dst with the byte at off XORed with mask.
func flipByte(t *testing.T, src []byte, dst string, off int, mask byte) {
	t.Helper()
	data := append([]byte(nil), src...)
	data[off] ^= mask
	if err := os.WriteFile(dst, data, 0600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory_CorruptedSliceNeverPanics(t *testing.T) {
	res := generatePatient(t, synth.Options{NumSlices: 1, SkipStructure: true, SkipDose: true, SkipPlan: true, SkipReport: true})
	src, err := os.ReadFile(filepath.Join(res.Dir, "CT.1.dcm"))
	if err != nil {
		t.Fatal(err)
	}

	// everything after the 128-byte preamble, header first
	end := min(len(src), 4096)
	stride := 1
	if testing.Short() {
		stride = 7
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "CT.1.dcm")
	trials := 0
	for off := 128; off < end; off += stride {
		for _, mask := range []byte{0xFF, 0x80, 0x01} {
			flipByte(t, src, path, off, mask)
			fs, _, err := ScanDirectory(context.Background(), dir, NewProgress(nil))
			if err != nil {
				t.Fatalf("offset %d mask %#x: ScanDirectory() error = %v", off, mask, err)
			}
			if fs.Len()+fs.SkippedCount() > 1 {
				t.Fatalf("offset %d mask %#x: one file counted %d times", off, mask, fs.Len()+fs.SkippedCount())
			}
			trials++
		}
	}
	t.Logf("✓ %d corrupted variants scanned without a crash", trials)
}

func TestLoad_CorruptedDoseNeverPanics(t *testing.T) {
	res := generatePatient(t, synth.Options{NumSlices: 3, SkipReport: true})
	dosePath := filepath.Join(res.Dir, synth.DoseFile)
	src, err := os.ReadFile(dosePath)
	if err != nil {
		t.Fatal(err)
	}

	step := max(1, (len(src)-128)/150)
	failed := 0
	for off := 128; off < len(src); off += step {
		flipByte(t, src, dosePath, off, 0xFF)
		_, err := Load(context.Background(), LoadOptions{Dir: res.Dir, Workers: 1, Quiet: true})
		if err != nil {
			failed++
			if s := StatusOf(err); s == StatusInterrupt || s == StatusOK {
				t.Fatalf("offset %d: status %s for %v", off, s, err)
			}
		}
	}
	t.Logf("✓ corrupted dose files loaded or failed cleanly (%d failures)", failed)
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.dcm")
	if err := os.WriteFile(junk, []byte("not a dicom file at all"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(junk); err == nil {
		t.Error("ReadFile() on junk should fail")
	}
	if _, err := ReadFile(filepath.Join(dir, "absent.dcm")); err == nil {
		t.Error("ReadFile() on a missing file should fail")
	}
}
