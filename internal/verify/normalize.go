package verify

import (
	"encoding/json"
	"strings"

	"verilens/internal/logging"
	"verilens/internal/types"
)

// Per-modality placeholder defaults, used whenever the model omits a
// field or returns something unparseable.
const (
	defaultTextSummary     = "Unable to determine summary."
	defaultTextExplanation = "No detailed analysis available."

	defaultImageSummary     = "Image analysis completed."
	defaultImageExplanation = "Standard forensic sweep performed."

	defaultVideoSummary     = "Video forensic analysis complete."
	defaultVideoExplanation = "Temporal consistency check performed."

	defaultScore = 50
	defaultBias  = 50
)

// rawVerdict is the partial record decoded from model output. Pointer
// fields distinguish absent from present-but-zero, so a legitimate
// score of 0 survives normalization.
type rawVerdict struct {
	Status           *string        `json:"status"`
	Score            *float64       `json:"score"`
	Summary          *string        `json:"summary"`
	Explanation      *string        `json:"explanation"`
	BiasScore        *float64       `json:"biasScore"`
	CredibilityScore *float64       `json:"credibilityScore"`
	Anomalies        []string       `json:"anomalies"`
	Sources          []types.Source `json:"sources"`
	IsDeepfake       *bool          `json:"isDeepfake"`
}

// Normalize coerces raw model output into a complete VerificationResult.
// It never fails: unparseable or partial output degrades field by field
// to the documented defaults. Grounding citations apply to text results
// only and are appended after the model's own claimed sources, without
// deduplication.
func Normalize(modality types.ContentType, content, raw string, citations []types.Source) *types.VerificationResult {
	verdict := decodeVerdict(raw)

	result := &types.VerificationResult{
		ID:        types.NewID(),
		Timestamp: types.NowMillis(),
		Type:      modality,
		Status:    normalizeStatus(verdict.Status),
		Score:     normalizeScore(verdict.Score, defaultScore),
		Anomalies: []string{},
		Sources:   []types.Source{},
	}
	if verdict.Anomalies != nil {
		result.Anomalies = verdict.Anomalies
	}

	switch modality {
	case types.TypeImage, types.TypeVideo:
		normalizeMedia(result, verdict, modality)
	default:
		normalizeText(result, verdict, content, citations)
	}
	return result
}

// normalizeText fills the text-specific fields: bias and credibility are
// assessed, and claimed sources are merged with grounding citations.
func normalizeText(result *types.VerificationResult, verdict rawVerdict, content string, citations []types.Source) {
	result.Content = content
	result.Summary = stringOr(verdict.Summary, defaultTextSummary)
	result.Explanation = stringOr(verdict.Explanation, defaultTextExplanation)
	result.BiasScore = normalizeScore(verdict.BiasScore, defaultBias)
	result.CredibilityScore = normalizeScore(verdict.CredibilityScore, defaultScore)

	sources := make([]types.Source, 0, len(verdict.Sources)+len(citations))
	sources = append(sources, verdict.Sources...)
	sources = append(sources, citations...)
	result.Sources = sources
}

// normalizeMedia fills the image/video fields: bias is not assessed,
// credibility mirrors the truth score, sources are never attached and a
// deepfake flag is always present.
func normalizeMedia(result *types.VerificationResult, verdict rawVerdict, modality types.ContentType) {
	if modality == types.TypeImage {
		result.Content = types.ImageContentLabel
		result.Summary = stringOr(verdict.Summary, defaultImageSummary)
		result.Explanation = stringOr(verdict.Explanation, defaultImageExplanation)
	} else {
		result.Content = types.VideoContentLabel
		result.Summary = stringOr(verdict.Summary, defaultVideoSummary)
		result.Explanation = stringOr(verdict.Explanation, defaultVideoExplanation)
	}
	result.BiasScore = 0
	result.CredibilityScore = result.Score

	deepfake := false
	if verdict.IsDeepfake != nil {
		deepfake = *verdict.IsDeepfake
	}
	result.IsDeepfake = &deepfake
}

// decodeVerdict parses model output into a partial record. Fences are
// stripped, the first JSON object in the text is used, and any decode
// error leaves already-populated fields intact rather than discarding
// them: a single malformed field must not abort the whole decode.
func decodeVerdict(raw string) rawVerdict {
	var verdict rawVerdict

	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	if start == -1 {
		if cleaned != "" {
			logging.Normalizer("no JSON object in model output (%d chars), using defaults", len(raw))
		}
		return verdict
	}

	decoder := json.NewDecoder(strings.NewReader(cleaned[start:]))
	if err := decoder.Decode(&verdict); err != nil {
		logging.Normalizer("partial decode of model output: %v", err)
	}
	return verdict
}

// stripFences removes triple-backtick code fence markers, with or
// without the json language tag.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// normalizeStatus validates the verdict enum; anything unrecognized maps
// to Unverified.
func normalizeStatus(s *string) types.VerificationStatus {
	if s == nil {
		return types.StatusUnverified
	}
	status := types.VerificationStatus(*s)
	if !status.Valid() {
		logging.Normalizer("unrecognized status %q, mapping to %s", *s, types.StatusUnverified)
		return types.StatusUnverified
	}
	return status
}

// normalizeScore substitutes the default when absent and clamps to
// [0,100] when present.
func normalizeScore(v *float64, def int) int {
	if v == nil {
		return def
	}
	return types.ClampScore(int(*v))
}

// stringOr substitutes the default for absent or empty strings.
func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
