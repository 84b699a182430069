package main

import (
	"strings"
	"testing"

	"verilens/internal/types"
)

func sampleResult() *types.VerificationResult {
	deepfake := true
	return &types.VerificationResult{
		ID:               "abc-123",
		Timestamp:        1756300000000,
		Type:             types.TypeVideo,
		Content:          types.VideoContentLabel,
		Status:           types.StatusFalse,
		Score:            12,
		Summary:          "Likely synthetic",
		Explanation:      "Frame boundaries show warping around the jawline.",
		CredibilityScore: 12,
		Sources:          []types.Source{{Title: "External Source", URL: "https://example.com"}},
		Anomalies:        []string{"temporal flicker"},
		IsDeepfake:       &deepfake,
	}
}

func TestRenderReport(t *testing.T) {
	out := renderReport(sampleResult())
	for _, want := range []string{
		"Truth Report",
		"False",
		"12/100",
		"Deepfake indicators detected",
		"Likely synthetic",
		"temporal flicker",
		"https://example.com",
		"abc-123",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Bias") {
		t.Error("media reports should not show a bias meter")
	}
}

func TestRenderReport_TextShowsBias(t *testing.T) {
	r := sampleResult()
	r.Type = types.TypeText
	r.IsDeepfake = nil
	r.BiasScore = 40
	if out := renderReport(r); !strings.Contains(out, "Bias") {
		t.Error("text reports should show a bias meter")
	}
}

func TestScoreBar_Bounds(t *testing.T) {
	if out := scoreBar(0); !strings.Contains(out, "0/100") {
		t.Errorf("unexpected bar: %q", out)
	}
	if out := scoreBar(100); !strings.Contains(out, "100/100") {
		t.Errorf("unexpected bar: %q", out)
	}
}

func TestRenderHistoryLine_TruncatesContent(t *testing.T) {
	r := sampleResult()
	r.Content = strings.Repeat("x", 120)
	line := renderHistoryLine(r)
	if !strings.Contains(line, "...") {
		t.Errorf("long content should be truncated: %q", line)
	}
	if !strings.Contains(line, "abc-123") {
		t.Errorf("listing should carry the id: %q", line)
	}
}

func TestImageMIMEType(t *testing.T) {
	cases := map[string]string{
		"a.PNG":  "image/png",
		"b.webp": "image/webp",
		"c.jpg":  "image/jpeg",
		"d.bin":  "image/jpeg",
	}
	for path, want := range cases {
		if got := imageMIMEType(path); got != want {
			t.Errorf("imageMIMEType(%q) = %q, want %q", path, got, want)
		}
	}
}
