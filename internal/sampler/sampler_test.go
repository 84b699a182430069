package sampler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSampleOffsets_EvenSpacing(t *testing.T) {
	// 60s video: frames at 10s, 20s, 30s, 40s, 50s.
	got := SampleOffsets(60 * time.Second)
	want := []time.Duration{
		10 * time.Second,
		20 * time.Second,
		30 * time.Second,
		40 * time.Second,
		50 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SampleOffsets mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleOffsets_NeverFirstOrLastInstant(t *testing.T) {
	d := 93*time.Second + 217*time.Millisecond
	offsets := SampleOffsets(d)
	if len(offsets) != FrameCount {
		t.Fatalf("want %d offsets, got %d", FrameCount, len(offsets))
	}
	for i, off := range offsets {
		if off <= 0 {
			t.Errorf("offset %d is at or before the first instant: %s", i, off)
		}
		if off >= d {
			t.Errorf("offset %d is at or after the last instant: %s", i, off)
		}
		if i > 0 && off <= offsets[i-1] {
			t.Errorf("offsets not strictly increasing at %d", i)
		}
	}
}

func TestSampleOffsets_ZeroDurationCollapses(t *testing.T) {
	for i, off := range SampleOffsets(0) {
		if off != 0 {
			t.Errorf("offset %d should collapse to 0, got %s", i, off)
		}
	}
}

func TestExtractArgs_SingleSequentialGrab(t *testing.T) {
	args := strings.Join(extractArgs("/tmp/clip.mp4", 1500*time.Millisecond), " ")
	for _, want := range []string{"-ss 1.500", "-i /tmp/clip.mp4", "-frames:v 1", "-q:v 7"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestFormatOffset(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0.000",
		time.Second:             "1.000",
		2500 * time.Millisecond: "2.500",
		time.Minute:             "60.000",
	}
	for d, want := range cases {
		if got := formatOffset(d); got != want {
			t.Errorf("formatOffset(%s) = %s, want %s", d, got, want)
		}
	}
}

func TestSample_MissingFileIsMediaError(t *testing.T) {
	s := NewFFmpegSampler(Config{})
	_, err := s.Sample(context.Background(), "/nonexistent/clip.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrMediaPipeline) {
		t.Errorf("error should be classified as media pipeline failure: %v", err)
	}
}

func TestNewFFmpegSampler_Defaults(t *testing.T) {
	s := NewFFmpegSampler(Config{})
	if s.cfg.FFmpegPath != "ffmpeg" || s.cfg.FFprobePath != "ffprobe" {
		t.Errorf("binary paths not defaulted: %+v", s.cfg)
	}
	if s.cfg.ProbeTimeout <= 0 || s.cfg.SeekTimeout <= 0 {
		t.Errorf("timeouts not defaulted: %+v", s.cfg)
	}
}
