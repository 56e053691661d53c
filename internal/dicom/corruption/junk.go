package corruption

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// preambleLen is the fixed DICOM Part 10 preamble preceding "DICM".
	preambleLen = 128

	// truncateAt cuts a file inside its file meta group.
	truncateAt = 200
)

var dicmMagic = []byte("DICM")

// JunkFileName returns the file name used for a file-level corruption type.
func JunkFileName(t CorruptionType) string {
	switch t {
	case NotDICOM:
		return "notes.txt"
	case Empty:
		return "empty.dcm"
	case Truncated:
		return "truncated.dcm"
	case BadMagic:
		return "badmagic.dcm"
	}
	return ""
}

// WriteJunkFiles writes one unreadable file per enabled file-level type into
// dir. Truncated and BadMagic are derived from sample, an existing valid
// DICOM file, so they look like real slices to a naive reader.
func (a *Applicator) WriteJunkFiles(dir, sample string) ([]string, error) {
	var written []string
	for _, t := range a.config.FileTypes() {
		path := filepath.Join(dir, JunkFileName(t))
		var data []byte
		switch t {
		case NotDICOM:
			data = []byte("exported by the planning system\nnot a DICOM object\n")
		case Empty:
			data = nil
		case Truncated, BadMagic:
			src, err := os.ReadFile(sample)
			if err != nil {
				return written, fmt.Errorf("read sample for %s: %w", t, err)
			}
			if t == Truncated {
				data, err = truncate(src, truncateAt)
			} else {
				data, err = patchMagic(src)
			}
			if err != nil {
				return written, fmt.Errorf("%s: %w", t, err)
			}
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// truncate keeps the first n bytes of a Part 10 file.
func truncate(data []byte, n int) ([]byte, error) {
	if len(data) <= n {
		return nil, fmt.Errorf("sample too short to truncate: %d bytes", len(data))
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out, nil
}

// patchMagic overwrites the "DICM" marker after the preamble.
func patchMagic(data []byte) ([]byte, error) {
	end := preambleLen + len(dicmMagic)
	if len(data) < end || !bytes.Equal(data[preambleLen:end], dicmMagic) {
		return nil, fmt.Errorf("sample has no DICM marker")
	}
	out := bytes.Clone(data)
	copy(out[preambleLen:end], "JUNK")
	return out, nil
}
