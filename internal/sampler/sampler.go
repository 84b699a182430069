// Package sampler extracts still frames from a video file for per-frame
// model analysis. It shells out to ffprobe/ffmpeg; the decode position is
// a single shared cursor, so extraction is strictly sequential and every
// probe and seek is individually bounded by a timeout.
package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"verilens/internal/logging"
)

// FrameCount is the fixed number of snapshots taken from a video.
const FrameCount = 5

// jpegQuality is ffmpeg's 2-31 quantizer scale; 7 lands near the 0.7
// compression quality the report pipeline was tuned for.
const jpegQuality = "7"

// Frame is one encoded snapshot in sampled order.
type Frame struct {
	Index    int
	Offset   time.Duration
	MIMEType string
	Data     []byte
}

// ErrMediaPipeline marks probe/seek failures and timeouts so callers can
// surface them like transport failures.
var ErrMediaPipeline = errors.New("media pipeline failure")

// Config holds the external binary paths and stage timeouts.
type Config struct {
	FFmpegPath   string
	FFprobePath  string
	ProbeTimeout time.Duration
	SeekTimeout  time.Duration
}

// FFmpegSampler implements frame sampling via ffmpeg subprocesses.
type FFmpegSampler struct {
	cfg Config
}

// NewFFmpegSampler returns a sampler with zero-value fields defaulted.
func NewFFmpegSampler(cfg Config) *FFmpegSampler {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 15 * time.Second
	}
	if cfg.SeekTimeout <= 0 {
		cfg.SeekTimeout = 30 * time.Second
	}
	return &FFmpegSampler{cfg: cfg}
}

// SampleOffsets is the fixed sampling schedule: FrameCount timestamps at
// duration*i/(FrameCount+1), never the first or last instant. A zero
// duration collapses every offset to 0; that produces near-duplicate
// frames, not an error.
func SampleOffsets(duration time.Duration) []time.Duration {
	offsets := make([]time.Duration, FrameCount)
	for i := 1; i <= FrameCount; i++ {
		offsets[i-1] = duration * time.Duration(i) / time.Duration(FrameCount+1)
	}
	return offsets
}

// Sample produces exactly FrameCount JPEG frames from the video at path,
// in schedule order. Each seek must complete before the next is issued.
func (s *FFmpegSampler) Sample(ctx context.Context, path string) ([]Frame, error) {
	timer := logging.StartTimer(logging.CategorySampler, "Sample")
	defer timer.Stop()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: video not readable: %v", ErrMediaPipeline, err)
	}

	duration, err := s.probeDuration(ctx, path)
	if err != nil {
		return nil, err
	}
	logging.Sampler("video %s duration=%s", path, duration)

	offsets := SampleOffsets(duration)
	frames := make([]Frame, 0, FrameCount)
	for i, off := range offsets {
		data, err := s.extractFrame(ctx, path, off)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d at %s: %v", ErrMediaPipeline, i+1, off, err)
		}
		logging.SamplerDebug("frame %d at %s: %d bytes", i+1, off, len(data))
		frames = append(frames, Frame{
			Index:    i,
			Offset:   off,
			MIMEType: "image/jpeg",
			Data:     data,
		})
	}
	return frames, nil
}

// probeDuration asks ffprobe for the container duration. An unparsable
// value (live streams report "N/A") degrades to zero rather than failing;
// a probe that cannot run at all is a media pipeline error.
func (s *FFmpegSampler) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, s.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if probeCtx.Err() != nil {
			return 0, fmt.Errorf("%w: metadata probe timed out after %s", ErrMediaPipeline, s.cfg.ProbeTimeout)
		}
		return 0, fmt.Errorf("%w: ffprobe: %v: %s", ErrMediaPipeline, err, strings.TrimSpace(stderr.String()))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil || seconds < 0 {
		logging.Sampler("unknown duration for %s, sampling from start", path)
		return 0, nil
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// extractFrame seeks to offset and encodes the visible frame as JPEG at
// the video's native resolution.
func (s *FFmpegSampler) extractFrame(ctx context.Context, path string, offset time.Duration) ([]byte, error) {
	seekCtx, cancel := context.WithTimeout(ctx, s.cfg.SeekTimeout)
	defer cancel()

	cmd := exec.CommandContext(seekCtx, s.cfg.FFmpegPath, extractArgs(path, offset)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if seekCtx.Err() != nil {
			return nil, fmt.Errorf("seek timed out after %s", s.cfg.SeekTimeout)
		}
		return nil, fmt.Errorf("ffmpeg: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at %s", offset)
	}
	return stdout.Bytes(), nil
}

// extractArgs builds the single-frame grab invocation. Split out for
// testing without a real ffmpeg.
func extractArgs(path string, offset time.Duration) []string {
	return []string{
		"-v", "error",
		"-ss", formatOffset(offset),
		"-i", path,
		"-frames:v", "1",
		"-c:v", "mjpeg",
		"-q:v", jpegQuality,
		"-f", "image2",
		"pipe:1",
	}
}

// formatOffset renders a duration as fractional seconds for ffmpeg.
func formatOffset(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
