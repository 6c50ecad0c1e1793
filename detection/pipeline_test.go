package detection

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type stubRunner struct {
	output    []float32
	err       error
	inputSize int
	loaded    bool
	lastInput []float32
}

func (r *stubRunner) Invoke(_ context.Context, input []float32) ([]float32, error) {
	r.lastInput = input

	return r.output, r.err
}

func (r *stubRunner) InputSize() int {
	return r.inputSize
}

func (r *stubRunner) Loaded() bool {
	return r.loaded
}

func testImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestDetectModelNotLoaded(t *testing.T) {
	pipeline := NewPipeline(nil, testLogger())

	_, err := pipeline.Detect(context.Background(), testImage(t), 0.5)
	assert.ErrorIs(t, err, pkgerrors.ErrModelNotLoaded)

	pipeline = NewPipeline(&stubRunner{loaded: false, inputSize: 8}, testLogger())
	_, err = pipeline.Detect(context.Background(), testImage(t), 0.5)
	assert.ErrorIs(t, err, pkgerrors.ErrModelNotLoaded)
}

func TestDetectBadImage(t *testing.T) {
	runner := &stubRunner{loaded: true, inputSize: 8}
	pipeline := NewPipeline(runner, testLogger())

	_, err := pipeline.Detect(context.Background(), []byte("not an image"), 0.5)
	assert.ErrorIs(t, err, pkgerrors.ErrBadImage)
}

func TestDetectEndToEnd(t *testing.T) {
	runner := &stubRunner{
		loaded:    true,
		inputSize: 8,
		output:    singleAnchorTensor(0.5, 0.5, 0.2, 0.1, 3, 0.9),
	}
	pipeline := NewPipeline(runner, testLogger())

	report, err := pipeline.Detect(context.Background(), testImage(t), 0.5)
	require.NoError(t, err)

	require.Len(t, report.Results, NumClasses)
	assert.Equal(t, 1, report.TotalObjects)

	uricAcid := report.Results[ClassNames[3]]
	assert.True(t, uricAcid.Present)
	assert.Equal(t, 1, uricAcid.Count)
	assert.InDelta(t, 0.9, uricAcid.Confidence, 1e-6)

	// NHWC input, 8x8x3 floats in [0, 1].
	require.Len(t, runner.lastInput, 8*8*3)
	for _, v := range runner.lastInput {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestDetectDefaultConfidence(t *testing.T) {
	// Score 0.2 sits above the default threshold of 0.15 which kicks
	// in when the caller passes a non-positive value.
	runner := &stubRunner{
		loaded:    true,
		inputSize: 8,
		output:    singleAnchorTensor(0.5, 0.5, 0.2, 0.1, 0, 0.2),
	}
	pipeline := NewPipeline(runner, testLogger())

	report, err := pipeline.Detect(context.Background(), testImage(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalObjects)
}

func TestDetectInferenceFailure(t *testing.T) {
	runner := &stubRunner{loaded: true, inputSize: 8, err: errors.New("runtime crashed")}
	pipeline := NewPipeline(runner, testLogger())

	_, err := pipeline.Detect(context.Background(), testImage(t), 0.5)
	assert.Error(t, err)
}
