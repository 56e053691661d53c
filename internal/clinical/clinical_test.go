package clinical

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/synth"
	"github.com/mrsinham/rtforge/internal/export"
)

func TestParseClinicalData(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    export.Row
		wantErr bool
	}{
		{
			name: "simple",
			text: "Patient ID: P1\nGender: F\nAge: 63",
			want: export.Row{{Key: "Patient ID", Value: "P1"}, {Key: "Gender", Value: "F"}, {Key: "Age", Value: "63"}},
		},
		{
			name: "empty lines and padding",
			text: "\nStage: T2N0M0\n\nFractions: 30\n ",
			want: export.Row{{Key: "Stage", Value: "T2N0M0"}, {Key: "Fractions", Value: "30"}},
		},
		{
			name: "only one leading space removed",
			text: "Note:  indented",
			want: export.Row{{Key: "Note", Value: " indented"}},
		},
		{
			name: "no space after colon",
			text: "Gender:M",
			want: export.Row{{Key: "Gender", Value: "M"}},
		},
		{name: "empty text", text: "", want: nil},
		{name: "missing colon", text: "Patient ID: P1\nno separator here", wantErr: true},
		{name: "extra colon", text: "Time: 10:30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClinicalData(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedClinicalData) {
					t.Fatalf("error = %v, want ErrMalformedClinicalData", err)
				}
				if got != nil {
					t.Errorf("partial row returned: %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func generate(t *testing.T, opts synth.Options) *synth.Result {
	t.Helper()
	opts.OutputDir = t.TempDir()
	opts.Seed = 7
	opts.NumSlices = 4
	opts.Quiet = true
	res, err := synth.Generate(opts)
	if err != nil {
		t.Fatalf("synth.Generate() error = %v", err)
	}
	return res
}

func TestFindAndReadClinicalData(t *testing.T) {
	fields := []synth.ClinicalField{
		{Key: "Patient ID", Value: "RT-001"},
		{Key: "Diagnosis", Value: "Glioblastoma"},
		{Key: "Fractions", Value: "30"},
	}
	res := generate(t, synth.Options{ClinicalData: fields})

	fs, _, err := rtdicom.ScanDirectory(context.Background(), res.Dir, rtdicom.NewProgress(nil))
	if err != nil {
		t.Fatal(err)
	}
	sr, ok := FindClinicalDataSR(fs.Reports)
	if !ok {
		t.Fatal("clinical data report not found")
	}
	row, err := ReadClinicalData(sr.Dataset)
	if err != nil {
		t.Fatalf("ReadClinicalData failed: %v", err)
	}
	want := export.Row{{Key: "Patient ID", Value: "RT-001"}, {Key: "Diagnosis", Value: "Glioblastoma"}, {Key: "Fractions", Value: "30"}}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}

	if _, ok := FindClinicalDataSR(nil); ok {
		t.Error("found a report in an empty list")
	}
}

func TestSR2CSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "ClinicalData.csv")

	first := generate(t, synth.Options{})
	second := generate(t, synth.Options{PatientID: "SECOND"})

	var percents []float64
	progress := func(_ string, pct float64) { percents = append(percents, pct) }

	for _, dir := range []string{first.Dir, second.Dir} {
		status, err := SR2CSV(context.Background(), dir, csvPath, progress)
		if err != nil || status != rtdicom.StatusOK {
			t.Fatalf("SR2CSV(%s) = %s, %v", dir, status, err)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final progress = %v", percents[len(percents)-1])
	}

	rows, err := export.ReadRows(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if id, _ := rows[1].Get("Patient ID"); id != "SECOND" {
		t.Errorf("second row patient = %q", id)
	}
	t.Logf("✓ exported %d clinical rows", len(rows))
}

func TestSR2CSV_Statuses(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	t.Run("no report", func(t *testing.T) {
		res := generate(t, synth.Options{SkipReport: true})
		status, err := SR2CSV(context.Background(), res.Dir, csvPath, nil)
		if err != nil || status != StatusSkip {
			t.Errorf("got %s, %v; want SKIP", status, err)
		}
	})

	t.Run("report without clinical data", func(t *testing.T) {
		res := generate(t, synth.Options{})
		// an SR with another series description
		src := filepath.Join(res.Dir, synth.ReportFile)
		data, err := os.ReadFile(src)
		if err != nil {
			t.Fatal(err)
		}
		patched := bytes.Replace(data, []byte(synth.ClinicalSeriesDescription), []byte("DOSE-SUMMARY "), 1)
		if err := os.WriteFile(src, patched, 0644); err != nil {
			t.Fatal(err)
		}
		status, err := SR2CSV(context.Background(), res.Dir, csvPath, nil)
		if err != nil || status != StatusNoClinicalSR {
			t.Errorf("got %s, %v; want CD_NO_SR", status, err)
		}
	})

	t.Run("malformed text", func(t *testing.T) {
		res := generate(t, synth.Options{ClinicalData: []synth.ClinicalField{{Key: "Start", Value: "08:30"}}})
		status, err := SR2CSV(context.Background(), res.Dir, csvPath, nil)
		if status != rtdicom.StatusError || !errors.Is(err, ErrMalformedClinicalData) {
			t.Errorf("got %s, %v; want ERROR with ErrMalformedClinicalData", status, err)
		}
	})

	t.Run("interrupted", func(t *testing.T) {
		res := generate(t, synth.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		status, err := SR2CSV(ctx, res.Dir, csvPath, nil)
		if status != rtdicom.StatusInterrupt || !errors.Is(err, rtdicom.ErrInterrupted) {
			t.Errorf("got %s, %v; want INTERRUPT", status, err)
		}
	})

	if _, err := os.Stat(csvPath); !os.IsNotExist(err) {
		t.Error("no row should have been written")
	}
}
