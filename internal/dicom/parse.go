package dicom

import (
	"errors"
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
)

// ErrCorruptFile is returned when the DICOM parser panics on a file.
var ErrCorruptFile = errors.New("corrupt DICOM file")

// ReadFile parses path like dicom.ParseFile, but a parser panic on a
// damaged file comes back as an ErrCorruptFile error.
func ReadFile(path string, opts ...dicom.ParseOption) (ds dicom.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			ds, err = dicom.Dataset{}, fmt.Errorf("%w: %s: %v", ErrCorruptFile, path, r)
		}
	}()
	return dicom.ParseFile(path, nil, opts...)
}

// parseTolerant reads a file element by element and keeps everything up to
// the first unreadable element, e.g. a length running past the end of file.
func parseTolerant(path string) (dicom.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return dicom.Dataset{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return dicom.Dataset{}, err
	}

	p, err := newParser(f, info.Size())
	if err != nil {
		return dicom.Dataset{}, err
	}

	var elements []*dicom.Element
	for {
		e, err := nextElement(p)
		if err != nil {
			break
		}
		elements = append(elements, e)
	}
	if len(elements) == 0 {
		return dicom.Dataset{}, fmt.Errorf("%s: no elements parsed", path)
	}

	meta := p.GetMetadata()
	return dicom.Dataset{Elements: append(meta.Elements, elements...)}, nil
}

func newParser(f *os.File, size int64) (p *dicom.Parser, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: header: %v", ErrCorruptFile, r)
		}
	}()
	return dicom.NewParser(f, size, nil, dicom.SkipPixelData())
}

// nextElement stops the element loop on a parser panic as on any error.
func nextElement(p *dicom.Parser) (e *dicom.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("%w: %v", ErrCorruptFile, r)
		}
	}()
	return p.Next()
}
