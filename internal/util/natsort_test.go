package util

import (
	"reflect"
	"testing"
)

func TestNaturalSort(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "numeric runs",
			input: []string{"img2", "img10", "img1"},
			want:  []string{"img1", "img2", "img10"},
		},
		{
			name:  "case insensitive text",
			input: []string{"b.dcm", "A.dcm", "c.dcm"},
			want:  []string{"A.dcm", "b.dcm", "c.dcm"},
		},
		{
			name:  "dicom style names",
			input: []string{"CT.1.10.dcm", "CT.1.9.dcm", "RS.1.dcm", "CT.1.1.dcm"},
			want:  []string{"CT.1.1.dcm", "CT.1.9.dcm", "CT.1.10.dcm", "RS.1.dcm"},
		},
		{
			name:  "number before text",
			input: []string{"slice_a", "slice_1"},
			want:  []string{"slice_1", "slice_a"},
		},
		{
			name:  "prefix first",
			input: []string{"file10b", "file10"},
			want:  []string{"file10", "file10b"},
		},
		{
			name:  "empty",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string{}, tt.input...)
			NaturalSort(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NaturalSort(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNaturalLess_LeadingZeros(t *testing.T) {
	if !NaturalLess("img01", "img2") {
		t.Error("img01 should sort before img2")
	}
	if NaturalLess("img1", "img1") {
		t.Error("a string must not sort before itself")
	}
	if !NaturalLess("img1", "img01") {
		t.Error("shorter digit run should win a numeric tie")
	}
}
