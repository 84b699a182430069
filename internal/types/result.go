// Package types holds the verification data model shared by the
// pipeline, the history store and the CLI.
package types

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the final verdict attached to a report.
type VerificationStatus string

const (
	StatusVerified      VerificationStatus = "Verified"
	StatusPartiallyTrue VerificationStatus = "Partially True"
	StatusUnverified    VerificationStatus = "Unverified"
	StatusFalse         VerificationStatus = "False"
)

// Valid reports whether s is one of the four recognized verdicts.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusVerified, StatusPartiallyTrue, StatusUnverified, StatusFalse:
		return true
	}
	return false
}

// ContentType identifies the submitted modality.
type ContentType string

const (
	TypeText  ContentType = "text"
	TypeImage ContentType = "image"
	TypeVideo ContentType = "video"

	// TypeLink is reserved for URL submissions; the analyzer does not
	// fetch pages yet but history entries may carry the type.
	TypeLink ContentType = "link"
)

// Placeholder content recorded for binary submissions, which are never
// persisted verbatim.
const (
	ImageContentLabel = "Image Content"
	VideoContentLabel = "Video Content"
)

// Source is a supporting reference, either claimed by the model or
// attached from search grounding.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// VerificationResult is one normalized truth report. All scores are on
// a 0 to 100 scale. IsDeepfake is nil for text reports and always set
// for media reports.
type VerificationResult struct {
	ID               string             `json:"id"`
	Timestamp        int64              `json:"timestamp"`
	Type             ContentType        `json:"type"`
	Content          string             `json:"content"`
	Status           VerificationStatus `json:"status"`
	Score            int                `json:"score"`
	Summary          string             `json:"summary"`
	Explanation      string             `json:"explanation"`
	BiasScore        int                `json:"biasScore"`
	CredibilityScore int                `json:"credibilityScore"`
	Sources          []Source           `json:"sources"`
	Anomalies        []string           `json:"anomalies"`
	IsDeepfake       *bool              `json:"isDeepfake,omitempty"`
}

// NewID returns a fresh report identifier.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the current time as Unix milliseconds, the
// timestamp unit used throughout history storage.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ClampScore forces a score into the 0 to 100 range.
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
