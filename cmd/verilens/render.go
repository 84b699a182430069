// Package main: terminal rendering of truth reports.
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"verilens/internal/types"
)

const reportWidth = 72

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	summaryStyle = lipgloss.NewStyle().
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(reportWidth)

	anomalyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	badgeBase = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#ffffff"))
)

// statusBadge colors the verdict: green for Verified, yellow for
// Partially True, grey for Unverified, red for False.
func statusBadge(status types.VerificationStatus) string {
	var bg lipgloss.Color
	switch status {
	case types.StatusVerified:
		bg = lipgloss.Color("28")
	case types.StatusPartiallyTrue:
		bg = lipgloss.Color("178")
	case types.StatusFalse:
		bg = lipgloss.Color("160")
	default:
		bg = lipgloss.Color("241")
	}
	return badgeBase.Background(bg).Render(string(status))
}

// scoreBar draws a 30-cell truth meter for a 0 to 100 score.
func scoreBar(score int) string {
	const cells = 30
	filled := score * cells / 100
	var color lipgloss.Color
	switch {
	case score >= 70:
		color = lipgloss.Color("28")
	case score >= 40:
		color = lipgloss.Color("178")
	default:
		color = lipgloss.Color("160")
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		labelStyle.Render(strings.Repeat("░", cells-filled))
	return fmt.Sprintf("%s %d/100", bar, score)
}

// renderExplanation runs the model's analysis text through the
// markdown renderer; explanations often carry lists and emphasis.
func renderExplanation(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(reportWidth-4),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// renderReport formats one verification result as the full truth
// report shown after an analysis or by `history show`.
func renderReport(r *types.VerificationResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Truth Report"))
	b.WriteString("  ")
	b.WriteString(statusBadge(r.Status))
	b.WriteString("\n\n")

	content := r.Content
	if len(content) > reportWidth {
		content = content[:reportWidth-3] + "..."
	}
	b.WriteString(labelStyle.Render("Content  "))
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("When     "))
	b.WriteString(shortTimestamp(r))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("ID       "))
	b.WriteString(r.ID)
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Truth score"))
	b.WriteString("\n")
	b.WriteString(scoreBar(r.Score))
	b.WriteString("\n")

	if r.Type == types.TypeText {
		b.WriteString(labelStyle.Render("Bias"))
		b.WriteString("\n")
		b.WriteString(scoreBar(r.BiasScore))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("Credibility"))
	b.WriteString("\n")
	b.WriteString(scoreBar(r.CredibilityScore))
	b.WriteString("\n\n")

	if r.IsDeepfake != nil {
		if *r.IsDeepfake {
			b.WriteString(anomalyStyle.Render("⚠ Deepfake indicators detected"))
		} else {
			b.WriteString(labelStyle.Render("No deepfake indicators detected"))
		}
		b.WriteString("\n\n")
	}

	body := summaryStyle.Render(r.Summary) + "\n" + renderExplanation(r.Explanation)
	b.WriteString(panelStyle.Render(body))
	b.WriteString("\n")

	if len(r.Anomalies) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Anomalies"))
		b.WriteString("\n")
		for _, a := range r.Anomalies {
			b.WriteString(anomalyStyle.Render("  • " + a))
			b.WriteString("\n")
		}
	}

	if len(r.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Sources"))
		b.WriteString("\n")
		for _, s := range r.Sources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			b.WriteString("  " + title + "\n")
			if s.URL != "" {
				b.WriteString("    " + sourceStyle.Render(s.URL) + "\n")
			}
		}
	}

	return b.String()
}

// renderHistoryHeader formats the history listing title.
func renderHistoryHeader(n int) string {
	return titleStyle.Render(fmt.Sprintf("Verification history (%d)", n))
}

// renderHistoryLine formats one compact listing row.
func renderHistoryLine(r *types.VerificationResult) string {
	content := r.Content
	if len(content) > 48 {
		content = content[:45] + "..."
	}
	return fmt.Sprintf("%s  %s  %-6s %s  %s",
		labelStyle.Render(shortTimestamp(r)),
		statusBadge(r.Status),
		r.Type,
		content,
		labelStyle.Render(r.ID))
}
