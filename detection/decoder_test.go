package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleAnchorTensor builds a [4+NumClasses x 1] tensor with the given
// box parameters and one class score set, everything else zero.
func singleAnchorTensor(cx, cy, w, h float32, classID int, score float32) []float32 {
	raw := make([]float32, 4+NumClasses)
	raw[0] = cx
	raw[1] = cy
	raw[2] = w
	raw[3] = h
	raw[4+classID] = score

	return raw
}

func TestDecodeTensorSingleAnchor(t *testing.T) {
	raw := singleAnchorTensor(0.5, 0.5, 0.2, 0.1, 3, 0.9)

	candidates := DecodeTensor(raw, 1, 0.5)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[3], 1)

	det := candidates[3][0]
	assert.Equal(t, 3, det.ClassID)
	assert.Equal(t, ClassNames[3], det.ClassName)
	assert.InDelta(t, 0.9, det.Confidence, 1e-6)
	expected := [4]float64{0.4, 0.45, 0.6, 0.55}
	for i := range expected {
		assert.InDelta(t, expected[i], det.BBox[i], 1e-6)
	}
}

func TestDecodeTensorBelowThreshold(t *testing.T) {
	raw := singleAnchorTensor(0.5, 0.5, 0.2, 0.1, 3, 0.4)

	candidates := DecodeTensor(raw, 1, 0.5)
	assert.Empty(t, candidates)
}

func TestDecodeTensorWinnerTakeAll(t *testing.T) {
	raw := singleAnchorTensor(0.5, 0.5, 0.2, 0.2, 1, 0.6)
	raw[4+4] = 0.8

	candidates := DecodeTensor(raw, 1, 0.5)
	require.Len(t, candidates, 1, "an anchor contributes at most one candidate")
	require.Len(t, candidates[4], 1)
	assert.InDelta(t, 0.8, candidates[4][0].Confidence, 1e-6)
}

func TestDecodeTensorMultipleAnchors(t *testing.T) {
	const anchors = 3
	raw := make([]float32, (4+NumClasses)*anchors)
	for a := 0; a < anchors; a++ {
		raw[0*anchors+a] = 0.5
		raw[1*anchors+a] = 0.5
		raw[2*anchors+a] = 0.1
		raw[3*anchors+a] = 0.1
	}
	raw[(4+0)*anchors+0] = 0.9
	raw[(4+0)*anchors+1] = 0.7
	raw[(4+2)*anchors+2] = 0.3

	candidates := DecodeTensor(raw, anchors, 0.5)
	assert.Len(t, candidates[0], 2)
	assert.Empty(t, candidates[2])
}

func TestDecodeTensorShortInput(t *testing.T) {
	candidates := DecodeTensor([]float32{0.1, 0.2}, 8400, 0.5)
	assert.Empty(t, candidates)
}
