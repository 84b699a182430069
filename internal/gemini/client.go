// Package gemini wraps the Google GenAI SDK as the verify.ModelClient
// boundary: per-modality model selection, inline media parts, optional
// search grounding, and the usual call discipline (timeout, minimum
// inter-request delay, retry with backoff on rate limits).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"verilens/internal/logging"
	"verilens/internal/types"
	"verilens/internal/verify"
)

// fallbackCitationTitle labels grounding chunks that arrive untitled.
const fallbackCitationTitle = "External Source"

// minRequestGap is the minimum delay between two API calls.
const minRequestGap = 600 * time.Millisecond

// Config holds client settings; zero values get sensible defaults.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	VideoModel string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements verify.ModelClient against the Gemini API.
type Client struct {
	api *genai.Client
	cfg Config

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a Gemini client. The API key is required; everything
// else defaults.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash-preview"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.VideoModel == "" {
		cfg.VideoModel = cfg.ImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Client{api: api, cfg: cfg}, nil
}

// modelFor maps a request modality to its configured model.
func (c *Client) modelFor(modality types.ContentType) string {
	switch modality {
	case types.TypeImage:
		return c.cfg.ImageModel
	case types.TypeVideo:
		return c.cfg.VideoModel
	default:
		return c.cfg.TextModel
	}
}

// Generate sends one request and returns the model text plus grounding
// citations. Transport failures are returned as errors; content-level
// garbage is the normalizer's problem, not ours.
func (c *Client) Generate(ctx context.Context, req verify.Request) (*verify.ModelOutput, error) {
	model := c.modelFor(req.Modality)
	logging.API("generate: model=%s modality=%s parts=%d search=%v",
		model, req.Modality, len(req.Parts), req.EnableSearch)

	contents := buildContents(req)
	genCfg := buildGenerateConfig(req)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var resp *genai.GenerateContentResponse
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			logging.APIDebug("retry %d after %s: %v", attempt, backoff, lastErr)
			select {
			case <-time.After(backoff):
			case <-callCtx.Done():
				return nil, fmt.Errorf("gemini: request canceled: %w", callCtx.Err())
			}
		}

		c.throttle()
		var err error
		resp, err = c.api.Models.GenerateContent(callCtx, model, contents, genCfg)
		if err == nil {
			break
		}
		if !retryable(err) || callCtx.Err() != nil {
			return nil, fmt.Errorf("gemini: generate failed: %w", err)
		}
		lastErr = err
		resp = nil
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini: max retries exceeded: %w", lastErr)
	}

	out := &verify.ModelOutput{
		Text:      strings.TrimSpace(resp.Text()),
		Citations: extractCitations(resp),
	}
	logging.APIDebug("generate: %d chars, %d citations", len(out.Text), len(out.Citations))
	return out, nil
}

// throttle enforces the minimum gap between requests.
func (c *Client) throttle() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < minRequestGap {
		time.Sleep(minRequestGap - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// buildContents lays out binary parts in their sampled order with the
// instruction text last, matching the prompt's frame-sequence wording.
func buildContents(req verify.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Parts)+1)
	for _, p := range req.Parts {
		parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Instruction))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// buildGenerateConfig enables JSON mode and the search tool as requested.
// The Gemini API rejects response schemas combined with built-in tools,
// so JSON shape is carried in the instruction text instead.
func buildGenerateConfig(req verify.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.ForceJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.EnableSearch {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}
	return cfg
}

// extractCitations pulls grounding chunks from the first candidate.
// Chunks without a resolvable URI are dropped; untitled ones get the
// fallback label.
func extractCitations(resp *genai.GenerateContentResponse) []types.Source {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	var citations []types.Source
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = fallbackCitationTitle
		}
		citations = append(citations, types.Source{Title: title, URL: chunk.Web.URI})
	}
	return citations
}

// retryable reports whether the error is a rate limit or transient server
// failure worth retrying.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return false
}
