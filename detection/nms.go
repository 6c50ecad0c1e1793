package detection

import "sort"

// SuppressClass runs greedy non-maximum suppression over the
// candidates of a single class. The highest-confidence candidate is
// kept and every remaining candidate overlapping it by more than
// iouThreshold is discarded, until no candidates remain.
func SuppressClass(cands []Detection, iouThreshold float64) []Detection {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]Detection, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for len(sorted) > 0 {
		best := sorted[0]
		kept = append(kept, best)

		remaining := sorted[:0]
		for _, cand := range sorted[1:] {
			if IoU(best.BBox, cand.BBox) <= iouThreshold {
				remaining = append(remaining, cand)
			}
		}
		sorted = remaining
	}

	return kept
}

// IoU computes intersection over union of two corner-form boxes. A
// zero-area union yields 0 so degenerate boxes never suppress others.
func IoU(a, b [4]float64) float64 {
	ix1 := max(a[0], b[0])
	iy1 := max(a[1], b[1])
	ix2 := min(a[2], b[2])
	iy2 := min(a[3], b[3])

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	intersection := iw * ih

	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - intersection
	if union <= 0 {
		return 0
	}

	return intersection / union
}
