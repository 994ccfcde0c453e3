package interactionsparser

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

// Pre-compiled whitespace patterns, compiled once at package init.
var (
	horizontalSpaceRegex = regexp.MustCompile(`[ \t]{2,}`)
	excessNewlinesRegex  = regexp.MustCompile(`\n{3,}`)
)

// Normalize applies the whitespace and casing cleanup that makes raw
// generator text safe for the record parsers. The steps run in order:
//
//  1. unescape "\*\*" so escaped headers are recognized again
//  2. collapse runs of spaces/tabs to one space, keeping line breaks
//  3. collapse three or more newlines down to one blank line
//  4. lowercase the severity token when it matches the vocabulary
//  5. title-case each drug name in interaction header pairs
//  6. re-insert a blank line before a header preceded by non-blank text
//
// Text without a single recognizable header is returned verbatim: there
// is nothing to normalize and passthrough beats corrupting free text.
// Normalization never drops a header or body text and is idempotent.
func Normalize(raw string) string {
	unescaped := strings.ReplaceAll(raw, `\*\*`, "**")
	if !hasRecognizedHeader(unescaped) {
		return raw
	}

	s := strings.ReplaceAll(unescaped, "\r\n", "\n")
	s = horizontalSpaceRegex.ReplaceAllString(s, " ")
	s = excessNewlinesRegex.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+4)
	for _, line := range lines {
		line = normalizeSeverityLine(line)
		line = normalizeInteractionHeaderLine(line)

		if isHeaderLine(line) && len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// normalizeSeverityLine rewrites a severity line to the canonical
// lowercase token. Values outside the vocabulary are left untouched so
// no generator text is ever lost.
func normalizeSeverityLine(line string) string {
	s := trimBullet(line)
	if !strings.HasPrefix(s, headerSeverity) {
		return line
	}
	value := fieldValue(s, headerSeverity)
	if !entities.IsKnownSeverity(value) {
		return line
	}
	return headerSeverity + " " + strings.ToLower(strings.TrimSpace(value))
}

// normalizeInteractionHeaderLine rebuilds an interaction header with a
// consistently capitalized drug pair. Headers without an ordinal are
// left untouched rather than guessed at.
func normalizeInteractionHeaderLine(line string) string {
	ordinal, pair, ok := parseInteractionHeader(line)
	if !ok || ordinal <= 0 || pair == "" {
		return line
	}
	return fmt.Sprintf("%s %d**: %s", headerInteraction, ordinal, normalizeDrugPair(pair))
}

// normalizeDrugPair splits a drug pair on "+", trims and title-cases
// each name, and rejoins with " + ".
func normalizeDrugPair(pair string) string {
	caser := cases.Title(language.English)
	parts := strings.Split(pair, "+")
	for i, p := range parts {
		parts[i] = caser.String(strings.TrimSpace(p))
	}
	return strings.Join(parts, " + ")
}
