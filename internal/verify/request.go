// Package verify implements the analysis core: request assembly for each
// input modality, defensive normalization of model output into a
// VerificationResult, and the single-flight pipeline that ties capture,
// model call and persistence together.
package verify

import (
	"context"

	"verilens/internal/prompt"
	"verilens/internal/sampler"
	"verilens/internal/types"
)

// MediaPart is one binary attachment of a model request.
type MediaPart struct {
	MIMEType string
	Data     []byte
}

// Request is a single, self-contained call to the AI capability: a fixed
// per-modality instruction plus ordered binary parts.
type Request struct {
	Modality    types.ContentType
	Instruction string
	Parts       []MediaPart

	// EnableSearch turns on the web-grounding tool. Text only; the
	// grounding citations come back separately from the model text.
	EnableSearch bool

	// ForceJSON requests a JSON response MIME type from the model.
	ForceJSON bool
}

// ModelOutput is the raw result of the AI capability: the model text
// (expected, not guaranteed, to contain JSON) plus any grounding
// citations attached by the search tool.
type ModelOutput struct {
	Text      string
	Citations []types.Source
}

// ModelClient is the AI capability boundary. The Gemini client implements
// it; tests substitute fakes.
type ModelClient interface {
	Generate(ctx context.Context, req Request) (*ModelOutput, error)
}

// FrameSampler extracts still frames from a video file. Implemented by
// sampler.FFmpegSampler; tests substitute fakes.
type FrameSampler interface {
	Sample(ctx context.Context, path string) ([]sampler.Frame, error)
}

// TextRequest builds the fact-checking request for a raw claim. Search
// grounding is enabled so the model can attach citations.
func TextRequest(content string) Request {
	return Request{
		Modality:     types.TypeText,
		Instruction:  prompt.TextInstruction(content),
		EnableSearch: true,
		ForceJSON:    true,
	}
}

// ImageRequest builds the forensic request for a single image.
func ImageRequest(data []byte, mimeType string) Request {
	return Request{
		Modality:    types.TypeImage,
		Instruction: prompt.ImageInstruction(),
		Parts:       []MediaPart{{MIMEType: mimeType, Data: data}},
	}
}

// VideoRequest builds the forensic request for an ordered frame sequence.
// Frames are attached in their sampled order; the instruction follows
// them, matching the wire layout the model was prompted to expect.
func VideoRequest(frames []sampler.Frame) Request {
	parts := make([]MediaPart, 0, len(frames))
	for _, f := range frames {
		parts = append(parts, MediaPart{MIMEType: f.MIMEType, Data: f.Data})
	}
	return Request{
		Modality:    types.TypeVideo,
		Instruction: prompt.VideoInstruction(),
		Parts:       parts,
	}
}
