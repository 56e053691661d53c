// Package clinical reads the clinical-data structured report of a patient
// and exports it to CSV.
package clinical

import (
	"errors"
	"fmt"
	"strings"

	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/export"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SeriesDescription marks the report that holds clinical data.
const SeriesDescription = "CLINICAL-DATA"

var (
	// ErrMalformedClinicalData is returned for a line that is not "Key: Value".
	ErrMalformedClinicalData = errors.New("malformed clinical data")
	// ErrNoTextValue means the report has no text content item.
	ErrNoTextValue = errors.New("clinical data report has no text value")
)

// FindClinicalDataSR returns the first Comprehensive SR whose
// SeriesDescription is exactly CLINICAL-DATA.
func FindClinicalDataSR(reports []rtdicom.Entry) (*rtdicom.Entry, bool) {
	for i := range reports {
		elems := reports[i].Dataset.Elements
		if elem.String(elems, tag.SOPClassUID) != modalities.ComprehensiveSRUID {
			continue
		}
		if elem.String(elems, tag.SeriesDescription) == SeriesDescription {
			return &reports[i], true
		}
	}
	return nil, false
}

// ReadClinicalData parses the text of the first content item of ds.
func ReadClinicalData(ds dicom.Dataset) (export.Row, error) {
	items := elem.Items(ds.Elements, tag.ContentSequence)
	if len(items) == 0 {
		return nil, ErrNoTextValue
	}
	e := elem.Find(items[0], tag.TextValue)
	if e == nil || e.Value == nil {
		return nil, ErrNoTextValue
	}
	vals, ok := e.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return nil, ErrNoTextValue
	}
	return ParseClinicalData(strings.Join(vals, "\\"))
}

// ParseClinicalData splits text into "Key: Value" lines. Empty lines are
// ignored. The value loses one leading space. Keys and values may not
// contain a colon: such a line, or a line without one, fails the whole text.
func ParseClinicalData(text string) (export.Row, error) {
	text = strings.TrimRight(text, " \x00")

	var row export.Row
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: line %d %q has %d colons", ErrMalformedClinicalData, n+1, line, len(parts)-1)
		}
		row = append(row, export.Field{
			Key:   parts[0],
			Value: strings.TrimPrefix(parts[1], " "),
		})
	}
	return row, nil
}
