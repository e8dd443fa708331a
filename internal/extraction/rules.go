package extraction

import (
	"context"
	"regexp"
	"strings"
)

// RuleExtractor is the deterministic fallback strategy. It has no semantic
// understanding of the text: currency comes from literal markers, the amount
// from a window after known label phrases, the due date from the first date
// anywhere, and the provider from a longest-line heuristic over the header.
// It never fails; fields it cannot determine stay null.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var (
	ghsRe = regexp.MustCompile(`(?i)\bGHS\b|GH₵|GH¢|GHC`)
	usdRe = regexp.MustCompile(`\bUSD\b|\$`)
	eurRe = regexp.MustCompile(`\bEUR\b|€`)
	gbpRe = regexp.MustCompile(`\bGBP\b|£`)

	amountLabelRe = regexp.MustCompile(`(?i)(amount\s*(?:due|payable)|total\s*(?:due|amount|payable)|balance\s*due|grand\s*total)`)
	amountValueRe = regexp.MustCompile(`([0-9]{1,3}(?:[,\s][0-9]{3})*(?:[.,][0-9]{2})|[0-9]+(?:[.,][0-9]{2})?)`)

	documentWordRe = regexp.MustCompile(`(?i)\b(invoice|bill|statement)\b`)
	hasLetterRe    = regexp.MustCompile(`[A-Za-z]`)
)

// amountLabelWindow is how far past a label phrase the amount may appear.
const amountLabelWindow = 160

func (e *RuleExtractor) Name() string { return "rules" }

// Extract runs every heuristic over text and returns the full key set with
// nil for anything that did not match.
func (e *RuleExtractor) Extract(_ context.Context, text string) (map[string]any, error) {
	fields := make(map[string]any, len(schemaKeys))
	for _, k := range schemaKeys {
		fields[k] = nil
	}
	if c := detectCurrency(text); c != "" {
		fields["currency"] = c
	}
	if a := findLabeledAmount(text); a != nil {
		fields["amount"] = *a
	}
	if d := scanDate(text); d != nil {
		fields["due_date"] = *d
	}
	if p := guessProvider(text); p != "" {
		fields["provider"] = p
	}
	return fields, nil
}

// detectCurrency returns the first literal currency marker found, checked in
// priority order GHS, USD, EUR, GBP.
func detectCurrency(text string) string {
	switch {
	case ghsRe.MatchString(text):
		return "GHS"
	case usdRe.MatchString(text):
		return "USD"
	case eurRe.MatchString(text):
		return "EUR"
	case gbpRe.MatchString(text):
		return "GBP"
	}
	return ""
}

// findLabeledAmount scans for label phrases like "total due" and takes the
// first numeric token within the window after the first label that has one.
func findLabeledAmount(text string) *float64 {
	for _, loc := range amountLabelRe.FindAllStringIndex(text, -1) {
		end := loc[1] + amountLabelWindow
		if end > len(text) {
			end = len(text)
		}
		if m := amountValueRe.FindString(text[loc[1]:end]); m != "" {
			return parseAmount(m)
		}
	}
	return nil
}

// guessProvider picks the longest line with at least one letter from the
// first 10 lines, after stripping document-type words. The issuer name is
// usually a prominent, longer line near the top. Known gap: this carries no
// confidence score and misfires on multi-column layouts.
func guessProvider(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	best := ""
	for _, line := range lines {
		line = strings.TrimSpace(documentWordRe.ReplaceAllString(line, ""))
		if !hasLetterRe.MatchString(line) {
			continue
		}
		if len(line) > len(best) {
			best = line
		}
	}
	return best
}
