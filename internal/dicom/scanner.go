package dicom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Key identifies a classified file inside a FileSet.
type Key string

const (
	KeyRTSS   Key = "rtss"
	KeyRTDose Key = "rtdose"
	KeyRTPlan Key = "rtplan"
)

// ImageKey returns the key of the i-th image slice.
func ImageKey(i int) Key {
	return Key(strconv.Itoa(i))
}

// ReportKey returns the key of the i-th structured report.
func ReportKey(i int) Key {
	return Key("sr" + strconv.Itoa(i))
}

// Entry is one parsed and classified file. Datasets are read without pixel data.
type Entry struct {
	Key      Key
	Path     string
	Modality modalities.Modality
	Dataset  dicom.Dataset
}

// FileSet is the result of scanning a directory. It is not modified after ScanDirectory returns.
type FileSet struct {
	Dir string
	// Images holds CT and MR slices; Images[i] has key ImageKey(i).
	Images []Entry
	// RTSS, RTDose and RTPlan keep the last file of each kind in sort order.
	RTSS    *Entry
	RTDose  *Entry
	RTPlan  *Entry
	Reports []Entry
	Paths   map[Key]string
	// Skipped lists files that could not be parsed or carry no Modality.
	Skipped []string
	// Recovered lists files whose full parse failed but whose leading
	// elements were still readable and classified.
	Recovered []string
}

// SkippedCount returns how many files were skipped.
func (fs *FileSet) SkippedCount() int {
	return len(fs.Skipped)
}

// Len returns how many files were classified.
func (fs *FileSet) Len() int {
	return len(fs.Paths)
}

// ScanDirectory parses every regular file directly inside dir, in natural
// order, and classifies it by Modality. Unreadable files are skipped.
// Progress is advanced after each file; ctx is checked between files.
func ScanDirectory(ctx context.Context, dir string, p Progress) (*FileSet, Progress, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, p, fmt.Errorf("%s: %w", dir, ErrIncorrectDirectory)
	}
	if err != nil {
		return nil, p, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	util.NaturalSort(paths)

	fs := &FileSet{Dir: dir, Paths: make(map[Key]string)}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, p, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		recovered := false
		ds, err := ReadFile(path, dicom.SkipPixelData())
		if err != nil {
			if ds, err = parseTolerant(path); err != nil {
				fs.Skipped = append(fs.Skipped, path)
				p = p.Advance("Reading files...", float64(i+1)/float64(len(paths)))
				continue
			}
			recovered = true
		}
		p.Elements += len(ds.Elements)
		if fs.classify(path, ds) && recovered {
			fs.Recovered = append(fs.Recovered, path)
		}
		p = p.Advance("Reading files...", float64(i+1)/float64(len(paths)))
	}

	return fs, p, nil
}

// classify files ds under its key and reports whether it was kept.
func (fs *FileSet) classify(path string, ds dicom.Dataset) bool {
	raw := elem.String(ds.Elements, tag.Modality)
	if raw == "" {
		fs.Skipped = append(fs.Skipped, path)
		return false
	}
	m := modalities.Parse(raw)
	entry := Entry{Path: path, Modality: m, Dataset: ds}

	switch {
	case modalities.IsImage(m):
		entry.Key = ImageKey(len(fs.Images))
		fs.Images = append(fs.Images, entry)
	case m == modalities.RTSTRUCT:
		entry.Key = KeyRTSS
		fs.RTSS = &entry
	case m == modalities.RTDOSE:
		entry.Key = KeyRTDose
		fs.RTDose = &entry
	case m == modalities.RTPLAN:
		entry.Key = KeyRTPlan
		fs.RTPlan = &entry
	case m == modalities.SR:
		entry.Key = ReportKey(len(fs.Reports))
		fs.Reports = append(fs.Reports, entry)
	default:
		return false
	}
	fs.Paths[entry.Key] = path
	return true
}
