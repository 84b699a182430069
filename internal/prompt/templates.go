// Package prompt holds the per-modality instruction templates sent to the
// model. Each template spells out the exact JSON shape, verdict enum and
// numeric ranges the response normalizer expects.
package prompt

import "fmt"

const textTemplate = `Analyze the following news content or claim for factual accuracy, bias, and credibility.
Provide a detailed verification report in JSON format.

Content: %q

Structure your response to match this JSON schema:
{
  "status": "Verified" | "Partially True" | "Unverified" | "False",
  "score": number (0-100),
  "summary": "Short 1-sentence summary",
  "explanation": "Detailed explanation citing findings",
  "biasScore": number (0-100, where 0 is neutral and 100 is highly biased),
  "credibilityScore": number (0-100),
  "anomalies": ["list of linguistic or logical inconsistencies"],
  "sources": [{"title": "Source name", "url": "URL if found"}]
}`

const imageTemplate = `Analyze this image for signs of digital manipulation, deepfake characteristics, and contextual accuracy.
Look for: splicing, cloning, retouching, metadata inconsistencies, or AI-generated artifacts (e.g., in lighting, facial features).
Provide a verification report in JSON format.

Structure:
{
  "status": "Verified" | "Partially True" | "Unverified" | "False",
  "isDeepfake": boolean,
  "score": number,
  "summary": "Summary of findings",
  "explanation": "Detailed forensic explanation",
  "anomalies": ["list of visual artifacts or inconsistencies"]
}`

const videoTemplate = `Analyze these sequential video frames for deepfake markers, synthetic speech-sync issues, and temporal inconsistencies.
Perform a deep forensic sweep of the subject's facial movements, skin texture, and lighting across the frames.
Identify if the person depicted is real or an AI-generated synthesis.

Return the result in JSON format:
{
  "status": "Verified" | "Partially True" | "Unverified" | "False",
  "isDeepfake": boolean,
  "score": number,
  "summary": "Forensic summary",
  "explanation": "Deep explanation of visual findings across frames",
  "anomalies": ["e.g., mismatched shadows, irregular blinking, texture warping"]
}`

// TextInstruction returns the fact-checking instruction with the claim
// inlined. The claim is quoted so embedded newlines cannot break the
// template structure.
func TextInstruction(content string) string {
	return fmt.Sprintf(textTemplate, content)
}

// ImageInstruction returns the single-image forensic instruction.
func ImageInstruction() string {
	return imageTemplate
}

// VideoInstruction returns the frame-sequence forensic instruction.
func VideoInstruction() string {
	return videoTemplate
}
