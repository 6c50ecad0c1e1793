package detection

// DecodeTensor converts a raw output tensor into per-class candidate
// lists. The tensor layout is [4+NumClasses rows x anchors columns]
// flattened row-major: rows 0-3 hold center-x, center-y, width and
// height normalized to [0, 1], the remaining rows hold per-class
// scores. Each anchor contributes at most one candidate, taking the
// class with the highest score, and only when that score exceeds the
// threshold.
func DecodeTensor(raw []float32, anchors int, threshold float64) map[int][]Detection {
	candidates := make(map[int][]Detection, NumClasses)
	if anchors <= 0 || len(raw) < (4+NumClasses)*anchors {
		return candidates
	}

	for a := 0; a < anchors; a++ {
		bestClass := 0
		bestScore := float64(raw[(4+0)*anchors+a])
		for c := 1; c < NumClasses; c++ {
			if score := float64(raw[(4+c)*anchors+a]); score > bestScore {
				bestScore = score
				bestClass = c
			}
		}

		if bestScore <= threshold {
			continue
		}

		cx := float64(raw[0*anchors+a])
		cy := float64(raw[1*anchors+a])
		w := float64(raw[2*anchors+a])
		h := float64(raw[3*anchors+a])

		candidates[bestClass] = append(candidates[bestClass], Detection{
			ClassID:    bestClass,
			ClassName:  ClassNames[bestClass],
			Confidence: bestScore,
			BBox:       [4]float64{cx - w/2, cy - h/2, cx + w/2, cy + h/2},
		})
	}

	return candidates
}
