package orchestrator

import (
	"regexp"
	"strings"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

var thinkingPattern = regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>\s*`)

// ExtractReasoning pulls the first <thinking> block out of content. With no
// block, reasoning is empty and content is returned unchanged.
func ExtractReasoning(content string) (reasoning, visible string) {
	loc := thinkingPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", content
	}

	reasoning = strings.TrimSpace(content[loc[2]:loc[3]])
	visible = strings.TrimSpace(content[:loc[0]] + content[loc[1]:])
	if visible == "" {
		visible = llm.EmptyCompletion
	}
	return reasoning, visible
}

// Confidence levels
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Report card item statuses
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
)

// ReportCategories are the fixed report card rows, in display order
var ReportCategories = []string{
	"Correctness", "Completeness", "Evidence", "Safety", "Clarity", "Actionability",
}

// ReportItem is one report card row
type ReportItem struct {
	Category string `json:"category"`
	Status   string `json:"status"`
}

// Extras are the structured fields scraped from an enhanced answer
type Extras struct {
	Assumptions []string     `json:"assumptions,omitempty"`
	Confidence  string       `json:"confidence,omitempty"`
	FollowUps   []string     `json:"followUps,omitempty"`
	ReportCard  []ReportItem `json:"reportCard,omitempty"`
}

var (
	confidencePattern = regexp.MustCompile(`(?i)\*\*Confidence:\*\*\s*(high|medium|low)\b`)
	bulletPattern     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	passGlyph         = "✅"

	assumptionsSection = sectionPattern("Assumptions")
	followUpsSection   = sectionPattern("Follow-ups?")
	reportCardSection  = sectionPattern("Report Card")

	// one pattern per entry of ReportCategories, same order
	reportCardPass = passPatterns(ReportCategories)
)

// sectionPattern matches the text after a bold marker up to the next bold
// marker line.
func sectionPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)\*\*` + marker + `:\*\*(.*?)(?:\n\s*\*\*[^*\n]+:\*\*|$)`)
}

// passPatterns matches the pass glyph directly before or after each name
func passPatterns(categories []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(categories))
	for i, category := range categories {
		name := regexp.QuoteMeta(category)
		patterns[i] = regexp.MustCompile(`(?i)` + passGlyph + `\s*\**` + name + `|` + name + `\**\s*:?\s*` + passGlyph)
	}
	return patterns
}

// section returns the captured section text, or false if the marker is absent
func section(content string, pattern *regexp.Regexp) (string, bool) {
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// bullets splits a section into list items. Text without bullets becomes a
// single item.
func bullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if !bulletPattern.MatchString(line) {
			continue
		}
		if item := strings.TrimSpace(bulletPattern.ReplaceAllString(line, "")); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// ExtractAssumptions returns the **Assumptions:** list, or nil
func ExtractAssumptions(content string) []string {
	text, ok := section(content, assumptionsSection)
	if !ok {
		return nil
	}
	return bullets(text)
}

// ExtractConfidence returns the stated confidence, defaulting to medium
func ExtractConfidence(content string) string {
	m := confidencePattern.FindStringSubmatch(content)
	if m == nil {
		return ConfidenceMedium
	}
	return strings.ToLower(m[1])
}

// ExtractFollowUps returns the **Follow-ups:** list, or nil
func ExtractFollowUps(content string) []string {
	text, ok := section(content, followUpsSection)
	if !ok {
		return nil
	}
	return bullets(text)
}

// ExtractReportCard grades each fixed category. A category passes only when
// the pass glyph sits right next to its name; anything else is a warning.
func ExtractReportCard(content string) []ReportItem {
	text, ok := section(content, reportCardSection)
	if !ok {
		return nil
	}

	card := make([]ReportItem, 0, len(ReportCategories))
	for i, category := range ReportCategories {
		status := StatusWarning
		if reportCardPass[i].MatchString(text) {
			status = StatusPass
		}
		card = append(card, ReportItem{Category: strings.ToLower(category), Status: status})
	}
	return card
}

// ExtractExtras runs every extractor independently
func ExtractExtras(content string) Extras {
	return Extras{
		Assumptions: ExtractAssumptions(content),
		Confidence:  ExtractConfidence(content),
		FollowUps:   ExtractFollowUps(content),
		ReportCard:  ExtractReportCard(content),
	}
}
