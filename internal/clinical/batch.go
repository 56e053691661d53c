package clinical

import (
	"context"
	"fmt"

	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/export"
)

// Extra outcomes of SR2CSV.
const (
	// StatusSkip means the directory holds no structured report at all.
	StatusSkip rtdicom.Status = "SKIP"
	// StatusNoClinicalSR means no report carries clinical data.
	StatusNoClinicalSR rtdicom.Status = "CD_NO_SR"
)

// SR2CSV scans dir, reads its clinical-data report and appends it as one row
// to csvPath. The returned Status is set for every outcome; err is non-nil
// only for INTERRUPT, ERROR and the scan failures behind them.
func SR2CSV(ctx context.Context, dir, csvPath string, progress rtdicom.ProgressFunc) (rtdicom.Status, error) {
	p := rtdicom.NewProgress(progress)
	if err := ctx.Err(); err != nil {
		return rtdicom.StatusInterrupt, fmt.Errorf("%w: %w", rtdicom.ErrInterrupted, err)
	}

	fs, p, err := rtdicom.ScanDirectory(ctx, dir, p.Stage(20))
	if err != nil {
		return rtdicom.StatusOf(err), err
	}
	if len(fs.Reports) == 0 {
		return StatusSkip, nil
	}

	p = p.Advance("Checking SR file...", 1)
	sr, ok := FindClinicalDataSR(fs.Reports)
	if !ok {
		return StatusNoClinicalSR, nil
	}
	if err := ctx.Err(); err != nil {
		return rtdicom.StatusInterrupt, fmt.Errorf("%w: %w", rtdicom.ErrInterrupted, err)
	}

	p = p.Stage(50).Advance("Reading clinical data...", 1)
	row, err := ReadClinicalData(sr.Dataset)
	if err != nil {
		return rtdicom.StatusError, fmt.Errorf("read clinical data from %s: %w", sr.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return rtdicom.StatusInterrupt, fmt.Errorf("%w: %w", rtdicom.ErrInterrupted, err)
	}

	p = p.Stage(80).Advance("Writing clinical data to CSV...", 1)
	if len(row) > 0 {
		if err := export.AppendRow(csvPath, row); err != nil {
			return rtdicom.StatusError, err
		}
	}
	p.Complete("Clinical data exported")
	return rtdicom.StatusOK, nil
}
