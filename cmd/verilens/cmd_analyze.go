// Package main: analyze subcommands, one per input modality.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"verilens/internal/sampler"
	"verilens/internal/verify"
)

// analyzeCmd groups the per-modality analysis commands.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze content for accuracy, manipulation and deepfake markers",
}

// analyzeTextCmd fact-checks a raw claim.
var analyzeTextCmd = &cobra.Command{
	Use:   "text [claim]",
	Short: "Fact-check a claim or news snippet",
	Long: `Submits a claim to the model for factual accuracy, bias and
credibility analysis. Search grounding is enabled, so citations may be
attached to the report.

Reads from stdin when no claim argument is given.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAnalyzeText,
}

// analyzeImageCmd runs the forensic sweep on a single image.
var analyzeImageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Check an image for manipulation and deepfake artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeImage,
}

// analyzeVideoCmd samples frames from a video and checks them for
// temporal deepfake markers.
var analyzeVideoCmd = &cobra.Command{
	Use:   "video <path>",
	Short: "Check a video for deepfake markers across sampled frames",
	Long: fmt.Sprintf(`Extracts %d evenly spaced frames from the video (requires ffmpeg and
ffprobe on PATH) and submits them for temporal forensic analysis.`, sampler.FrameCount),
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeVideo,
}

func runAnalyzeText(cmd *cobra.Command, args []string) error {
	claim := strings.TrimSpace(strings.Join(args, " "))
	if claim == "" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return fmt.Errorf("no claim given and stdin unreadable: %w", err)
		}
		claim = strings.TrimSpace(string(data))
	}

	analyzer, history, err := newAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	defer history.Close()

	fmt.Println("🔍 Verifying claim...")
	result, err := analyzer.AnalyzeText(cmd.Context(), claim)
	if err != nil {
		return analysisError(err)
	}
	fmt.Println(renderReport(result))
	return nil
}

func runAnalyzeImage(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	analyzer, history, err := newAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	defer history.Close()

	fmt.Println("🔍 Running forensic sweep...")
	result, err := analyzer.AnalyzeImage(cmd.Context(), data, imageMIMEType(path))
	if err != nil {
		return analysisError(err)
	}
	fmt.Println(renderReport(result))
	return nil
}

func runAnalyzeVideo(cmd *cobra.Command, args []string) error {
	analyzer, history, err := newAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	defer history.Close()

	fmt.Printf("🎞  Sampling %d frames and analyzing...\n", sampler.FrameCount)
	result, err := analyzer.AnalyzeVideo(cmd.Context(), args[0])
	if err != nil {
		return analysisError(err)
	}
	fmt.Println(renderReport(result))
	return nil
}

// analysisError turns pipeline failures into user-facing messages.
// Transport and media failures both read as "try again"; malformed model
// output never reaches here (it degrades to defaults upstream).
func analysisError(err error) error {
	switch {
	case errors.Is(err, verify.ErrAnalysisInFlight):
		return errors.New("another analysis is still running, wait for it to finish")
	case errors.Is(err, verify.ErrEmptyInput):
		return errors.New("nothing to analyze")
	case errors.Is(err, sampler.ErrMediaPipeline):
		return fmt.Errorf("could not read the video: %w (please retry or try another file)", err)
	default:
		return fmt.Errorf("verification failed: %w (please try again)", err)
	}
}

// imageMIMEType guesses the MIME type from the file extension; the
// model only needs a rough hint.
func imageMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func init() {
	analyzeCmd.AddCommand(analyzeTextCmd, analyzeImageCmd, analyzeVideoCmd)
}
