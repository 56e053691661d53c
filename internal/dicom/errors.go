package dicom

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrIncorrectDirectory means the directory holds no classifiable DICOM object.
	ErrIncorrectDirectory = errors.New("no DICOM files found in selected directory")
	// ErrInterrupted means the load was cancelled; no partial session is kept.
	ErrInterrupted = errors.New("loading interrupted")
)

// MissingFilesError reports which mandatory RT objects a directory lacks.
type MissingFilesError struct {
	Structure bool
	Dose      bool
}

func (e *MissingFilesError) Error() string {
	var missing []string
	if e.Structure {
		missing = append(missing, "RTStruct")
	}
	if e.Dose {
		missing = append(missing, "RTDose")
	}
	if len(missing) == 1 {
		return missing[0] + " file not found in selected directory"
	}
	return strings.Join(missing, " and ") + " files not found in selected directory"
}

// Status is the outcome of a pipeline run as reported by batch jobs.
type Status string

const (
	StatusOK                 Status = "OK"
	StatusInterrupt          Status = "INTERRUPT"
	StatusMissingFiles       Status = "MISSING_FILES"
	StatusIncorrectDirectory Status = "INCORRECT_DIRECTORY"
	StatusError              Status = "ERROR"
)

// StatusOf maps a pipeline error to its Status.
func StatusOf(err error) Status {
	var missing *MissingFilesError
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusInterrupt
	case errors.As(err, &missing):
		return StatusMissingFiles
	case errors.Is(err, ErrIncorrectDirectory):
		return StatusIncorrectDirectory
	default:
		return StatusError
	}
}
