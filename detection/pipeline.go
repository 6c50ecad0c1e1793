package detection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"golang.org/x/image/draw"

	pkgerrors "github.com/urosmart/uroedge/pkg/errors"
)

// ModelRunner is the loaded inference runtime. Implementations must be
// safe for concurrent use; the pipeline never mutates a runner, a new
// model is a new runner swapped in by the owner.
type ModelRunner interface {
	Invoke(ctx context.Context, input []float32) ([]float32, error)
	InputSize() int
	Loaded() bool
}

// Pipeline composes preprocessing, inference, decode and suppression
// into a single call over raw image bytes.
type Pipeline struct {
	runner       ModelRunner
	iouThreshold float64
	logger       *slog.Logger
}

func NewPipeline(runner ModelRunner, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		runner:       runner,
		iouThreshold: DefIoUThreshold,
		logger:       logger,
	}
}

// Loaded reports whether an inference runtime is available.
func (p *Pipeline) Loaded() bool {
	return p != nil && p.runner != nil && p.runner.Loaded()
}

// InputSize returns the runner's square input resolution, 0 when no
// runner is attached.
func (p *Pipeline) InputSize() int {
	if p == nil || p.runner == nil {
		return 0
	}

	return p.runner.InputSize()
}

func (p *Pipeline) Detect(ctx context.Context, imageBytes []byte, confidence float64) (Report, error) {
	if !p.Loaded() {
		return Report{}, pkgerrors.ErrModelNotLoaded
	}
	if confidence <= 0 {
		confidence = DefConfidenceThreshold
	}

	input, err := p.preprocess(imageBytes)
	if err != nil {
		return Report{}, err
	}

	raw, err := p.runner.Invoke(ctx, input)
	if err != nil {
		return Report{}, fmt.Errorf("inference failed: %w", err)
	}

	anchors := len(raw) / (4 + NumClasses)
	candidates := DecodeTensor(raw, anchors, confidence)

	report := Summarize(candidates, p.iouThreshold)
	p.logger.Debug("detection complete",
		slog.Int("anchors", anchors),
		slog.Float64("confidence_threshold", confidence),
		slog.Int("total_objects", report.TotalObjects),
	)

	return report, nil
}

// Summarize suppresses each class independently and assembles the
// final report. Every known class appears in the result map even when
// nothing survived for it.
func Summarize(candidates map[int][]Detection, iouThreshold float64) Report {
	results := make(map[string]ClassResult, NumClasses)
	total := 0

	for classID, name := range ClassNames {
		kept := SuppressClass(candidates[classID], iouThreshold)

		var result ClassResult
		if len(kept) > 0 {
			sum := 0.0
			for _, d := range kept {
				sum += d.Confidence
			}
			result.Present = true
			result.Count = len(kept)
			result.Confidence = sum / float64(len(kept))
		}
		if len(kept) > MaxDetectionsPerClass {
			kept = kept[:MaxDetectionsPerClass]
		}
		result.Detections = kept

		results[name] = result
		total += result.Count
	}

	return Report{Results: results, TotalObjects: total}
}

// preprocess decodes the image, resizes it to the runner's square
// input resolution and flattens it to NHWC float32 scaled to [0, 1].
func (p *Pipeline) preprocess(imageBytes []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, errors.Join(pkgerrors.ErrBadImage, err)
	}

	size := p.runner.InputSize()
	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	input := make([]float32, size*size*3)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			offset := resized.PixOffset(x, y)
			input[i] = float32(resized.Pix[offset]) / 255.0
			input[i+1] = float32(resized.Pix[offset+1]) / 255.0
			input[i+2] = float32(resized.Pix[offset+2]) / 255.0
			i += 3
		}
	}

	return input, nil
}
