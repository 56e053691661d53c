// Package elem reads and builds DICOM elements. It works on element slices so
// the same helpers serve top-level datasets and sequence items.
package elem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNotFound is returned when a required element is absent.
var ErrNotFound = errors.New("element not found")

// ErrBadValue is returned when an element holds a value of an unexpected shape.
var ErrBadValue = errors.New("unexpected element value")

// Name returns the dictionary keyword of t, or its (gggg,eeee) form.
func Name(t tag.Tag) string {
	if info, err := tag.Find(t); err == nil && info.Name != "" {
		return info.Name
	}
	return t.String()
}

// Find returns the first element tagged t, or nil.
func Find(elems []*dicom.Element, t tag.Tag) *dicom.Element {
	for _, e := range elems {
		if e != nil && e.Tag == t {
			return e
		}
	}
	return nil
}

// Strings returns the string values of t with padding trimmed.
func Strings(elems []*dicom.Element, t tag.Tag) []string {
	e := Find(elems, t)
	if e == nil || e.Value == nil {
		return nil
	}
	vals, ok := e.Value.GetValue().([]string)
	if !ok {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.TrimRight(strings.TrimSpace(v), "\x00")
	}
	return out
}

// String returns the first string value of t, or "".
func String(elems []*dicom.Element, t tag.Tag) string {
	vals := Strings(elems, t)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Ints returns the integer values of t. US/UL/SS/SL values and IS strings are both accepted.
func Ints(elems []*dicom.Element, t tag.Tag) ([]int, error) {
	e := Find(elems, t)
	if e == nil || e.Value == nil {
		return nil, fmt.Errorf("%s: %w", Name(t), ErrNotFound)
	}
	switch v := e.Value.GetValue().(type) {
	case []int:
		return v, nil
	case int:
		return []int{v}, nil
	case []string:
		out := make([]int, 0, len(v))
		for _, s := range v {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%s: %w: %q", Name(t), ErrBadValue, s)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w: %T", Name(t), ErrBadValue, v)
	}
}

// Int returns the first integer value of t.
func Int(elems []*dicom.Element, t tag.Tag) (int, error) {
	vals, err := Ints(elems, t)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%s: %w: empty", Name(t), ErrBadValue)
	}
	return vals[0], nil
}

// Floats returns the numeric values of t. DS strings, FL/FD floats and integers are accepted.
func Floats(elems []*dicom.Element, t tag.Tag) ([]float64, error) {
	e := Find(elems, t)
	if e == nil || e.Value == nil {
		return nil, fmt.Errorf("%s: %w", Name(t), ErrNotFound)
	}
	switch v := e.Value.GetValue().(type) {
	case []float64:
		return v, nil
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, nil
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w: %q", Name(t), ErrBadValue, s)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w: %T", Name(t), ErrBadValue, v)
	}
}

// Float returns the first numeric value of t.
func Float(elems []*dicom.Element, t tag.Tag) (float64, error) {
	vals, err := Floats(elems, t)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%s: %w: empty", Name(t), ErrBadValue)
	}
	return vals[0], nil
}

// Items returns the elements of every item of the sequence t, in order.
// A missing or non-sequence element yields nil.
func Items(elems []*dicom.Element, t tag.Tag) [][]*dicom.Element {
	e := Find(elems, t)
	if e == nil || e.Value == nil {
		return nil
	}
	seq, ok := e.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil
	}
	items := make([][]*dicom.Element, 0, len(seq))
	for _, item := range seq {
		if item == nil {
			continue
		}
		if children, ok := item.GetValue().([]*dicom.Element); ok {
			items = append(items, children)
		}
	}
	return items
}

// MustNew creates a new DICOM element, panicking on error.
// Only use it with values known to match the tag's VR.
func MustNew(t tag.Tag, value any) *dicom.Element {
	e, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return e
}

// Sequence builds a sequence element from items.
func Sequence(t tag.Tag, items [][]*dicom.Element) (*dicom.Element, error) {
	if items == nil {
		items = [][]*dicom.Element{}
	}
	return dicom.NewElement(t, items)
}

// Replace swaps the element tagged e.Tag in elems for e, appending it when absent.
func Replace(elems []*dicom.Element, e *dicom.Element) []*dicom.Element {
	for i, cur := range elems {
		if cur != nil && cur.Tag == e.Tag {
			elems[i] = e
			return elems
		}
	}
	return append(elems, e)
}

// DS formats f as a Decimal String (at most 16 characters).
func DS(f float64) string {
	for prec := 10; prec > 1; prec-- {
		s := strconv.FormatFloat(f, 'g', prec, 64)
		if len(s) <= 16 {
			return s
		}
	}
	return fmt.Sprintf("%.6g", f)
}

// DSList formats every value of fs as a Decimal String.
func DSList(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = DS(f)
	}
	return out
}

// IS formats i as an Integer String.
func IS(i int) string {
	return strconv.Itoa(i)
}
