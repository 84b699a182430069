package verify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"verilens/internal/sampler"
	"verilens/internal/store"
	"verilens/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeModel returns canned output and captures the last request.
type fakeModel struct {
	mu      sync.Mutex
	out     *ModelOutput
	err     error
	lastReq Request
	entered chan struct{} // if set, closed once on first Generate
	block   chan struct{} // if set, Generate waits until closed
}

func (f *fakeModel) Generate(ctx context.Context, req Request) (*ModelOutput, error) {
	f.mu.Lock()
	f.lastReq = req
	entered := f.entered
	f.entered = nil
	block := f.block
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeModel) last() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

// fakeSampler returns canned frames.
type fakeSampler struct {
	frames []sampler.Frame
	err    error
}

func (f *fakeSampler) Sample(ctx context.Context, path string) ([]sampler.Frame, error) {
	return f.frames, f.err
}

// failingStore rejects every write.
type failingStore struct{ store.Store }

func (failingStore) Record(*types.VerificationResult) error {
	return errors.New("disk full")
}

func TestAnalyzeText_RecordsNormalizedResult(t *testing.T) {
	model := &fakeModel{out: &ModelOutput{
		Text: `{"status":"False","score":5,"summary":"Debunked"}`,
		Citations: []types.Source{
			{Title: "NASA", URL: "https://nasa.gov"},
		},
	}}
	hist := store.NewMemoryStore(50)
	a := NewAnalyzer(model, nil, hist)

	result, err := a.AnalyzeText(context.Background(), "Moon landing was faked")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if result.Status != types.StatusFalse || result.Score != 5 {
		t.Errorf("unexpected normalization: %+v", result)
	}
	if len(result.Sources) != 1 || result.Sources[0].Title != "NASA" {
		t.Errorf("grounding citations not merged: %+v", result.Sources)
	}

	entries, _ := hist.List()
	if len(entries) != 1 || entries[0].ID != result.ID {
		t.Errorf("result not recorded in history: %+v", entries)
	}

	req := model.last()
	if !req.EnableSearch || !req.ForceJSON {
		t.Errorf("text request should enable search grounding and JSON mode: %+v", req)
	}
}

func TestAnalyzeText_EmptyInput(t *testing.T) {
	a := NewAnalyzer(&fakeModel{}, nil, store.NewMemoryStore(50))
	if _, err := a.AnalyzeText(context.Background(), "   \n"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("want ErrEmptyInput, got %v", err)
	}
}

func TestAnalyze_TransportFailureRecordsNothing(t *testing.T) {
	model := &fakeModel{err: errors.New("api unreachable")}
	hist := store.NewMemoryStore(50)
	a := NewAnalyzer(model, nil, hist)

	_, err := a.AnalyzeText(context.Background(), "claim")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if entries, _ := hist.List(); len(entries) != 0 {
		t.Errorf("no partial result should be recorded, got %d entries", len(entries))
	}
}

func TestAnalyzeVideo_FramesFlowInSampledOrder(t *testing.T) {
	frames := make([]sampler.Frame, sampler.FrameCount)
	for i := range frames {
		frames[i] = sampler.Frame{Index: i, MIMEType: "image/jpeg", Data: []byte{byte(i)}}
	}
	model := &fakeModel{out: &ModelOutput{Text: `{"isDeepfake":true,"score":15}`}}
	a := NewAnalyzer(model, &fakeSampler{frames: frames}, store.NewMemoryStore(50))

	result, err := a.AnalyzeVideo(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("AnalyzeVideo failed: %v", err)
	}
	if result.IsDeepfake == nil || !*result.IsDeepfake {
		t.Errorf("deepfake flag lost: %+v", result)
	}

	req := model.last()
	if len(req.Parts) != sampler.FrameCount {
		t.Fatalf("want %d parts, got %d", sampler.FrameCount, len(req.Parts))
	}
	for i, p := range req.Parts {
		if p.Data[0] != byte(i) {
			t.Errorf("frame order broken at part %d", i)
		}
	}
	if req.EnableSearch {
		t.Errorf("media requests must not enable search grounding")
	}
}

func TestAnalyzeVideo_SamplerFailureAborts(t *testing.T) {
	hist := store.NewMemoryStore(50)
	a := NewAnalyzer(&fakeModel{}, &fakeSampler{err: sampler.ErrMediaPipeline}, hist)

	_, err := a.AnalyzeVideo(context.Background(), "/tmp/clip.mp4")
	if !errors.Is(err, sampler.ErrMediaPipeline) {
		t.Errorf("media failure should surface, got %v", err)
	}
	if entries, _ := hist.List(); len(entries) != 0 {
		t.Errorf("nothing should be recorded after a media failure")
	}
}

func TestAnalyze_OverlappingSubmissionRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	model := &fakeModel{
		out:     &ModelOutput{Text: "{}"},
		entered: entered,
		block:   release,
	}
	a := NewAnalyzer(model, nil, store.NewMemoryStore(50))

	done := make(chan error, 1)
	go func() {
		_, err := a.AnalyzeText(context.Background(), "first")
		done <- err
	}()

	// Wait until the first analysis holds the in-flight slot.
	<-entered

	if _, err := a.AnalyzeText(context.Background(), "second"); !errors.Is(err, ErrAnalysisInFlight) {
		t.Errorf("overlapping submission should be rejected, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first analysis should complete: %v", err)
	}
}

func TestAnalyzeImage_StoreFailureIsAbsorbed(t *testing.T) {
	model := &fakeModel{out: &ModelOutput{Text: `{"status":"Verified","score":80}`}}
	a := NewAnalyzer(model, nil, failingStore{})

	result, err := a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "")
	if err != nil {
		t.Fatalf("store failure must not surface: %v", err)
	}
	if result.Status != types.StatusVerified {
		t.Errorf("unexpected result: %+v", result)
	}

	req := model.last()
	if len(req.Parts) != 1 || req.Parts[0].MIMEType != "image/jpeg" {
		t.Errorf("image part missing or MIME not defaulted: %+v", req.Parts)
	}
}

func TestAnalyzeVideo_WithoutSampler(t *testing.T) {
	a := NewAnalyzer(&fakeModel{}, nil, store.NewMemoryStore(50))
	if _, err := a.AnalyzeVideo(context.Background(), "x.mp4"); err == nil {
		t.Error("expected error when sampler is not configured")
	}
}
