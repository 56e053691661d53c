package dicom

import (
	"sort"

	"github.com/mrsinham/rtforge/internal/dicom/dvh"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ROIRecord is one entry of a StructureSetROISequence.
type ROIRecord struct {
	Number              int
	FrameOfReferenceUID string
	Name                string
	GenerationAlgorithm string
}

// ExtractROIs reads the ROI table of a structure set, keyed by ROI number.
// Items without a usable ROINumber are skipped; names may repeat.
func ExtractROIs(ds dicom.Dataset) (map[int]ROIRecord, error) {
	if elem.Find(ds.Elements, tag.StructureSetROISequence) == nil {
		return nil, dvh.ErrNoStructureSet
	}

	rois := make(map[int]ROIRecord)
	for _, item := range elem.Items(ds.Elements, tag.StructureSetROISequence) {
		number, err := elem.Int(item, tag.ROINumber)
		if err != nil {
			continue
		}
		rois[number] = ROIRecord{
			Number:              number,
			FrameOfReferenceUID: elem.String(item, tag.ReferencedFrameOfReferenceUID),
			Name:                elem.String(item, tag.ROIName),
			GenerationAlgorithm: elem.String(item, tag.ROIGenerationAlgorithm),
		}
	}
	return rois, nil
}

// SortedROINumbers returns the keys of rois in ascending order.
func SortedROINumbers(rois map[int]ROIRecord) []int {
	numbers := make([]int, 0, len(rois))
	for n := range rois {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
