package engine

import (
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// effectiveDims returns the dimensions an instance is expected to occupy.
// A reverse-grain part wider than it is tall lies on its side.
func effectiveDims(inst model.PartInstance) (w, h float64) {
	if inst.Grain == model.GrainReverse && inst.OriginalWidth > inst.OriginalHeight {
		return inst.OriginalHeight, inst.OriginalWidth
	}
	return inst.OriginalWidth, inst.OriginalHeight
}

// SortForShelf orders instances by decreasing effective height, then by
// decreasing effective width. The sort is stable so equal parts keep their
// input order.
func SortForShelf(instances []model.PartInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		wi, hi := effectiveDims(instances[i])
		wj, hj := effectiveDims(instances[j])
		if hi != hj {
			return hi > hj
		}
		return wi > wj
	})
}
