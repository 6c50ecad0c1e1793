package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a    [4]float64
		b    [4]float64
		want float64
	}{
		{
			name: "identical boxes",
			a:    [4]float64{0.1, 0.1, 0.5, 0.5},
			b:    [4]float64{0.1, 0.1, 0.5, 0.5},
			want: 1.0,
		},
		{
			name: "disjoint boxes",
			a:    [4]float64{0.0, 0.0, 0.2, 0.2},
			b:    [4]float64{0.5, 0.5, 0.9, 0.9},
			want: 0.0,
		},
		{
			name: "degenerate zero-area boxes",
			a:    [4]float64{0.3, 0.3, 0.3, 0.3},
			b:    [4]float64{0.3, 0.3, 0.3, 0.3},
			want: 0.0,
		},
		{
			name: "half overlap",
			a:    [4]float64{0.0, 0.0, 0.2, 0.2},
			b:    [4]float64{0.1, 0.0, 0.3, 0.2},
			want: 1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IoU(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSuppressClassKeepsHigherConfidence(t *testing.T) {
	// Two boxes with IoU 0.6 at threshold 0.45: only the higher
	// confidence box survives.
	a := Detection{ClassID: 0, Confidence: 0.9, BBox: [4]float64{0.0, 0.0, 1.0, 0.75}}
	b := Detection{ClassID: 0, Confidence: 0.8, BBox: [4]float64{0.0, 0.25, 1.0, 1.0}}
	require.InDelta(t, 0.6, IoU(a.BBox, b.BBox), 0.01)

	kept := SuppressClass([]Detection{b, a}, 0.45)
	require.Len(t, kept, 1)
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-9)
}

func TestSuppressClassDisjointBoxesAllKept(t *testing.T) {
	cands := []Detection{
		{Confidence: 0.5, BBox: [4]float64{0.0, 0.0, 0.1, 0.1}},
		{Confidence: 0.9, BBox: [4]float64{0.5, 0.5, 0.6, 0.6}},
		{Confidence: 0.7, BBox: [4]float64{0.8, 0.8, 0.9, 0.9}},
	}

	kept := SuppressClass(cands, 0.45)
	require.Len(t, kept, 3)
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-9)
	assert.InDelta(t, 0.7, kept[1].Confidence, 1e-9)
	assert.InDelta(t, 0.5, kept[2].Confidence, 1e-9)
}

func TestSuppressClassEmpty(t *testing.T) {
	assert.Empty(t, SuppressClass(nil, 0.45))
}

func TestSummarizeAlwaysReportsAllClasses(t *testing.T) {
	candidates := map[int][]Detection{
		1: {
			{ClassID: 1, ClassName: ClassNames[1], Confidence: 0.8, BBox: [4]float64{0.0, 0.0, 0.1, 0.1}},
			{ClassID: 1, ClassName: ClassNames[1], Confidence: 0.6, BBox: [4]float64{0.5, 0.5, 0.6, 0.6}},
		},
	}

	report := Summarize(candidates, DefIoUThreshold)
	require.Len(t, report.Results, NumClasses)
	assert.Equal(t, 2, report.TotalObjects)

	squamous := report.Results[ClassNames[1]]
	assert.True(t, squamous.Present)
	assert.Equal(t, 2, squamous.Count)
	assert.InDelta(t, 0.7, squamous.Confidence, 1e-9)

	for _, name := range []string{ClassNames[0], ClassNames[2], ClassNames[3], ClassNames[4]} {
		result := report.Results[name]
		assert.False(t, result.Present)
		assert.Zero(t, result.Count)
		assert.Zero(t, result.Confidence)
		assert.Empty(t, result.Detections)
	}
}

func TestSummarizeTruncatesToTen(t *testing.T) {
	var cands []Detection
	for i := 0; i < 15; i++ {
		cands = append(cands, Detection{
			ClassID:    0,
			ClassName:  ClassNames[0],
			Confidence: 0.5 + float64(i)*0.01,
			BBox:       [4]float64{float64(i) * 0.05, 0.0, float64(i)*0.05 + 0.02, 0.02},
		})
	}

	report := Summarize(map[int][]Detection{0: cands}, DefIoUThreshold)
	result := report.Results[ClassNames[0]]
	assert.Equal(t, 15, result.Count)
	assert.Len(t, result.Detections, MaxDetectionsPerClass)
	assert.Equal(t, 15, report.TotalObjects)
}
