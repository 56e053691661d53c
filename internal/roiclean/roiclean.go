// Package roiclean renames and deletes ROIs in RT Structure Set files.
package roiclean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rtdicom "github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/dicom/modalities"
	"github.com/mrsinham/rtforge/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrNotStructureSet is returned when the file to clean is not an RTSTRUCT.
var ErrNotStructureSet = errors.New("not an RT Structure Set")

// Op is what to do with an ROI.
type Op int

const (
	Ignore Op = iota
	Rename
	Delete
)

func (o Op) String() string {
	switch o {
	case Ignore:
		return "ignore"
	case Rename:
		return "rename"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp parses "ignore", "rename" or "delete".
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "":
		return Ignore, nil
	case "rename":
		return Rename, nil
	case "delete":
		return Delete, nil
	}
	return Ignore, fmt.Errorf("unknown ROI operation %q (valid: ignore, rename, delete)", s)
}

// Action applies Op to the ROI named exactly Name.
type Action struct {
	Name    string
	Op      Op
	NewName string // Rename only
}

// Job is the list of actions for one structure set file.
type Job struct {
	Path    string
	Actions []Action
}

// Report tells what Apply changed. Actions whose ROI was not found are listed
// in NotFound and are otherwise no-ops.
type Report struct {
	Renamed  []string
	Deleted  []string
	NotFound []string
}

// Changed reports whether the file was rewritten.
func (r Report) Changed() bool {
	return len(r.Renamed)+len(r.Deleted) > 0
}

// Suggest returns the standard spelling closest to name, or "" when none is
// close enough or name already is standard.
func Suggest(name string) string {
	s := util.SuggestROIName(name)
	if s == name {
		return ""
	}
	return s
}

// SuggestActions proposes a Rename for every ROI name with a standard
// spelling it does not use yet, and Ignore for the others.
func SuggestActions(names []string) []Action {
	actions := make([]Action, 0, len(names))
	for _, n := range names {
		if s := Suggest(n); s != "" {
			actions = append(actions, Action{Name: n, Op: Rename, NewName: s})
		} else {
			actions = append(actions, Action{Name: n, Op: Ignore})
		}
	}
	return actions
}

// Apply runs actions on the structure set at path and rewrites it in place
// when anything changed.
func Apply(path string, actions []Action) (Report, error) {
	var rep Report

	ds, err := rtdicom.ReadFile(path)
	if err != nil {
		return rep, fmt.Errorf("parse %s: %w", path, err)
	}
	if m := elem.String(ds.Elements, tag.Modality); modalities.Parse(m) != modalities.RTSTRUCT {
		return rep, fmt.Errorf("%s: %w (modality %q)", path, ErrNotStructureSet, m)
	}

	for _, a := range actions {
		var found bool
		switch a.Op {
		case Ignore:
			continue
		case Rename:
			if a.NewName == "" {
				return rep, fmt.Errorf("rename %q: new name is empty", a.Name)
			}
			if found, err = RenameROI(&ds, a.Name, a.NewName); err == nil && found {
				rep.Renamed = append(rep.Renamed, a.Name)
			}
		case Delete:
			if found, err = DeleteROI(&ds, a.Name); err == nil && found {
				rep.Deleted = append(rep.Deleted, a.Name)
			}
		default:
			return rep, fmt.Errorf("ROI %q: unknown operation %v", a.Name, a.Op)
		}
		if err != nil {
			return rep, fmt.Errorf("%s %q: %w", a.Op, a.Name, err)
		}
		if !found {
			rep.NotFound = append(rep.NotFound, a.Name)
		}
	}

	if !rep.Changed() {
		return rep, nil
	}
	if err := writeInPlace(path, ds); err != nil {
		return rep, err
	}
	return rep, nil
}

// RenameROI renames the first ROI called oldName in the StructureSetROISequence,
// and its RTROIObservationsSequence label when there is one.
func RenameROI(ds *dicom.Dataset, oldName, newName string) (bool, error) {
	ssroi := elem.Items(ds.Elements, tag.StructureSetROISequence)
	number, idx := findROI(ssroi, oldName)
	if idx < 0 {
		return false, nil
	}

	ssroi[idx] = elem.Replace(ssroi[idx], elem.MustNew(tag.ROIName, []string{newName}))
	if err := replaceSequence(ds, tag.StructureSetROISequence, ssroi); err != nil {
		return false, err
	}

	obs := elem.Items(ds.Elements, tag.RTROIObservationsSequence)
	relabelled := false
	for i, item := range obs {
		if ref, err := elem.Int(item, tag.ReferencedROINumber); err != nil || ref != number {
			continue
		}
		if elem.Find(item, tag.ROIObservationLabel) == nil {
			continue
		}
		obs[i] = elem.Replace(item, elem.MustNew(tag.ROIObservationLabel, []string{newName}))
		relabelled = true
	}
	if relabelled {
		if err := replaceSequence(ds, tag.RTROIObservationsSequence, obs); err != nil {
			return false, err
		}
	}
	return true, nil
}

// DeleteROI removes the ROI called name with its contours and observations.
func DeleteROI(ds *dicom.Dataset, name string) (bool, error) {
	ssroi := elem.Items(ds.Elements, tag.StructureSetROISequence)
	number, idx := findROI(ssroi, name)
	if idx < 0 {
		return false, nil
	}

	ssroi = append(ssroi[:idx:idx], ssroi[idx+1:]...)
	if err := replaceSequence(ds, tag.StructureSetROISequence, ssroi); err != nil {
		return false, err
	}
	for _, t := range []tag.Tag{tag.ROIContourSequence, tag.RTROIObservationsSequence} {
		if elem.Find(ds.Elements, t) == nil {
			continue
		}
		kept := withoutROI(elem.Items(ds.Elements, t), number)
		if err := replaceSequence(ds, t, kept); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Run applies every job in order. It stops at the first error or when ctx is
// cancelled; reports of the jobs already done are returned either way.
func Run(ctx context.Context, jobs []Job, progress rtdicom.ProgressFunc) (map[string]Report, error) {
	p := rtdicom.NewProgress(progress)
	reports := make(map[string]Report, len(jobs))

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("%w: %w", rtdicom.ErrInterrupted, err)
		}
		rep, err := Apply(job.Path, job.Actions)
		if err != nil {
			return reports, err
		}
		reports[job.Path] = rep
		p = p.Advance("Cleaning ROIs...", float64(i+1)/float64(len(jobs)))
	}
	p.Complete("ROI cleaning complete")
	return reports, nil
}

func findROI(items [][]*dicom.Element, name string) (number, index int) {
	for i, item := range items {
		if elem.String(item, tag.ROIName) != name {
			continue
		}
		n, err := elem.Int(item, tag.ROINumber)
		if err != nil {
			continue
		}
		return n, i
	}
	return 0, -1
}

func withoutROI(items [][]*dicom.Element, number int) [][]*dicom.Element {
	kept := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		if ref, err := elem.Int(item, tag.ReferencedROINumber); err == nil && ref == number {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func replaceSequence(ds *dicom.Dataset, t tag.Tag, items [][]*dicom.Element) error {
	seq, err := elem.Sequence(t, items)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", elem.Name(t), err)
	}
	ds.Elements = elem.Replace(ds.Elements, seq)
	return nil
}

// writeInPlace writes ds next to path and renames it over the original.
func writeInPlace(path string, ds dicom.Dataset) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".roiclean-*.dcm")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := dicom.Write(tmp, ds, dicom.SkipVRVerification(), dicom.SkipValueTypeVerification()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
