package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"verilens/internal/logging"
	"verilens/internal/store"
	"verilens/internal/types"
)

// ErrAnalysisInFlight is returned when a submission arrives while another
// analysis is still running. Overlapping pipelines would contend for the
// model budget and, for video, the decoder cursor, so new submissions are
// rejected rather than queued.
var ErrAnalysisInFlight = errors.New("an analysis is already in flight")

// ErrEmptyInput is returned for a blank text submission.
var ErrEmptyInput = errors.New("nothing to analyze")

// Analyzer runs one capture -> request -> normalize -> persist pipeline
// at a time. All collaborators are injected.
type Analyzer struct {
	model    ModelClient
	sampler  FrameSampler
	history  store.Store
	inflight *semaphore.Weighted
}

// NewAnalyzer wires the pipeline. The sampler may be nil if video
// analysis is not needed (AnalyzeVideo will then fail cleanly).
func NewAnalyzer(model ModelClient, frames FrameSampler, history store.Store) *Analyzer {
	return &Analyzer{
		model:    model,
		sampler:  frames,
		history:  history,
		inflight: semaphore.NewWeighted(1),
	}
}

// AnalyzeText verifies a raw claim for accuracy, bias and credibility.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (*types.VerificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	return a.run(ctx, text, func(ctx context.Context) (Request, error) {
		return TextRequest(text), nil
	})
}

// AnalyzeImage runs the forensic sweep on a single encoded image.
func (a *Analyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*types.VerificationResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return a.run(ctx, types.ImageContentLabel, func(ctx context.Context) (Request, error) {
		return ImageRequest(data, mimeType), nil
	})
}

// AnalyzeVideo samples frames from the video at path and runs the
// temporal forensic sweep over them.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, path string) (*types.VerificationResult, error) {
	if a.sampler == nil {
		return nil, errors.New("video analysis is not configured")
	}
	return a.run(ctx, types.VideoContentLabel, func(ctx context.Context) (Request, error) {
		frames, err := a.sampler.Sample(ctx, path)
		if err != nil {
			return Request{}, err
		}
		return VideoRequest(frames), nil
	})
}

// run executes one pipeline instance under the single in-flight slot.
// Transport and media failures abort with no partial result recorded;
// store failures are logged and absorbed.
func (a *Analyzer) run(ctx context.Context, content string, build func(context.Context) (Request, error)) (*types.VerificationResult, error) {
	if !a.inflight.TryAcquire(1) {
		return nil, ErrAnalysisInFlight
	}
	defer a.inflight.Release(1)

	timer := logging.StartTimer(logging.CategoryPipeline, "analysis")
	defer timer.Stop()

	req, err := build(ctx)
	if err != nil {
		logging.Pipeline("capture failed: %v", err)
		return nil, err
	}
	logging.Pipeline("submitting %s analysis (%d parts)", req.Modality, len(req.Parts))

	out, err := a.model.Generate(ctx, req)
	if err != nil {
		logging.Pipeline("model call failed: %v", err)
		return nil, fmt.Errorf("verification request failed: %w", err)
	}

	result := Normalize(req.Modality, content, out.Text, out.Citations)

	if err := a.history.Record(result); err != nil {
		// Persistence failure is never surfaced; the result is still
		// returned, history just doesn't grow.
		logging.Pipeline("failed to record result %s: %v", result.ID, err)
	}
	return result, nil
}
