// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package units

import (
	"regexp"
	"strings"
	"unicode"
)

// abbreviations that end with a period but do not terminate a sentence.
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "etc": true, "cf": true, "vs": true,
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	"fig": true, "al": true, "no": true, "vol": true, "pp": true,
	"approx": true, "dept": true, "inc": true, "jr": true, "sr": true,
	"st": true,
}

// markdownStructure matches lines that carry document structure rather
// than prose: headings, horizontal rules, and table separators.
var markdownStructure = regexp.MustCompile(`(?m)^(#{1,6}\s.*|[-*_]{3,}\s*|\|[\s:|-]+\|)$`)

// SplitSentences tokenizes a plain-text or Markdown document into
// sentences. Markdown structure lines and code fences are stripped
// first; the remaining prose is split at sentence-ending punctuation,
// guarding common abbreviations and decimal numbers.
func SplitSentences(document string) []string {
	text := stripMarkdown(document)

	var (
		sentences []string
		start     int
	)
	runes := []rune(text)

	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if r == '.' && !isBoundaryPeriod(runes, i) {
			continue
		}

		// Consume closing quotes and brackets after the terminator.
		end := i + 1
		for end < len(runes) && (runes[end] == '"' || runes[end] == '\'' || runes[end] == ')' || runes[end] == ']') {
			end++
		}

		// A boundary needs trailing whitespace or end of text.
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}

		flush(end)
		i = end - 1
	}
	flush(len(runes))

	return sentences
}

// isBoundaryPeriod reports whether the period at position i ends a
// sentence, rejecting decimals ("3.14"), initials ("J. Smith" is
// accepted, "e.g." is not) and known abbreviations.
func isBoundaryPeriod(runes []rune, i int) bool {
	// Decimal number: digit on both sides.
	if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
		return false
	}

	// Walk back over the word preceding the period.
	j := i
	for j > 0 && (unicode.IsLetter(runes[j-1]) || runes[j-1] == '.') {
		j--
	}
	word := strings.ToLower(strings.TrimSuffix(string(runes[j:i]), "."))
	return !abbreviations[word]
}

// stripMarkdown removes code fences and structure lines, unwraps inline
// formatting markers, and collapses whitespace so line breaks inside a
// paragraph do not split sentences.
func stripMarkdown(document string) string {
	var (
		lines   = strings.Split(document, "\n")
		kept    = make([]string, 0, len(lines))
		inFence bool
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if markdownStructure.MatchString(trimmed) {
			// Structure lines end any open paragraph.
			kept = append(kept, "")
			continue
		}
		// List markers become plain prose.
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		trimmed = strings.TrimPrefix(trimmed, "> ")
		kept = append(kept, trimmed)
	}

	text := strings.Join(kept, "\n")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	return strings.Join(strings.Fields(text), " ")
}
