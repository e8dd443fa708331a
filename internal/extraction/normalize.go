package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Normalization coerces the heterogeneous values found in bill text (or
// returned by the model) into the canonical schema types. Every function here
// is total: unrecognizable input yields nil, never an error.

var currencyTokens = strings.NewReplacer(
	"GH₵", "", "GH¢", "", "GHS", "", "GHC", "",
	"USD", "", "EUR", "", "GBP", "", "NGN", "", "ZAR", "",
	"$", "", "€", "", "£", "", "₦", "",
)

var whitespaceRe = regexp.MustCompile(`\s`)

// NormalizeAmount coerces an amount value of any JSON type to a decimal
// number. Strings are cleaned of currency markers and separator ambiguity:
// when both "," and "." appear the comma is a thousands separator, when only
// "," appears it is the decimal separator.
func NormalizeAmount(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		return parseAmount(n)
	default:
		return nil
	}
}

func parseAmount(s string) *float64 {
	s = currencyTokens.Replace(strings.TrimSpace(s))
	s = whitespaceRe.ReplaceAllString(s, "")
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// NormalizeCurrency maps symbols and code variants to a fixed set of 3-letter
// codes. Unrecognized non-empty input passes through uppercased as a best
// guess; empty input yields nil.
func NormalizeCurrency(v any) *string {
	s, _ := v.(string)
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	switch s {
	case "USD", "EUR", "GBP", "GHS", "NGN", "ZAR":
	case "$", "USD$":
		s = "USD"
	case "€", "EUR€":
		s = "EUR"
	case "£", "GBP£":
		s = "GBP"
	case "GH₵", "GH¢", "GHC":
		s = "GHS"
	case "₦":
		s = "NGN"
	}
	return &s
}

var months = map[string]int{
	"jan": 1, "january": 1, "feb": 2, "february": 2, "mar": 3, "march": 3,
	"apr": 4, "april": 4, "may": 5, "jun": 6, "june": 6, "jul": 7, "july": 7,
	"aug": 8, "august": 8, "sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10, "nov": 11, "november": 11, "dec": 12, "december": 12,
}

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearFirstRe  = regexp.MustCompile(`\b(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})\b`)
	dayMonthRe   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]{3,9})[,\s]+(\d{4})\b`)
	monthFirstRe = regexp.MustCompile(`\b([A-Za-z]{3,9})\s+(\d{1,2})(?:st|nd|rd|th)?[,\s]+(\d{4})\b`)
)

// isoOrNil builds YYYY-MM-DD from components, validating by reconstruction so
// that out-of-range days (Feb 31) come back nil rather than rolling over.
func isoOrNil(year, month, day int) *string {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func atoiAll(parts ...string) []int {
	out := make([]int, len(parts))
	for i, p := range parts {
		out[i], _ = strconv.Atoi(p)
	}
	return out
}

func parseYearFirst(s string) *string {
	m := yearFirstRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n := atoiAll(m[1], m[2], m[3])
	return isoOrNil(n[0], n[1], n[2])
}

func parseDayMonthYear(s string) *string {
	m := dayMonthRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	mo, ok := months[strings.Trim(strings.ToLower(m[2]), ".")]
	if !ok {
		return nil
	}
	n := atoiAll(m[3], m[1])
	return isoOrNil(n[0], mo, n[1])
}

func parseMonthDayYear(s string) *string {
	m := monthFirstRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	mo, ok := months[strings.Trim(strings.ToLower(m[1]), ".")]
	if !ok {
		return nil
	}
	n := atoiAll(m[3], m[2])
	return isoOrNil(n[0], mo, n[1])
}

// scanDate finds the first recognizable date in free text. Patterns are tried
// in a fixed order; the first one producing a valid calendar date wins.
func scanDate(s string) *string {
	for _, parse := range []func(string) *string{parseYearFirst, parseDayMonthYear, parseMonthDayYear} {
		if d := parse(s); d != nil {
			return d
		}
	}
	return nil
}

// NormalizeDate coerces a date value to canonical YYYY-MM-DD. Already-ISO
// strings are validated by reconstruction; anything else is scanned as free
// text. Invalid calendar dates yield nil.
func NormalizeDate(v any) *string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if isoDateRe.MatchString(s) {
		n := atoiAll(s[0:4], s[5:7], s[8:10])
		return isoOrNil(n[0], n[1], n[2])
	}
	return scanDate(s)
}
