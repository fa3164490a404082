// Package pagination splits rewritten note content into bounded pages.
//
// Pages are measured in runes. A manual break marker always produces a hard
// page boundary; inside a section, paragraphs are packed greedily and long
// paragraphs are cut after sentence punctuation when one is close enough to
// the cut point.
package pagination

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PageBreakMarker is the literal sentinel an editor inserts to force a page
// boundary. Documents authored with it depend on its exact value.
const PageBreakMarker = "---PAGE_BREAK---"

// Page budgets in runes.
const (
	DefaultCharsPerPage = 1000 // document surface
	CardCharsPerPage    = 800  // legacy card surface
)

// SentenceLookback bounds how far back from the cut point a long paragraph
// is scanned for terminal punctuation.
const SentenceLookback = 200

// paragraphSeparator joins paragraphs packed into the same page.
const paragraphSeparator = "\n\n"

var newlineRun = regexp.MustCompile(`\n+`)

// Paginate splits text into pages of at most charsPerPage runes.
// Sections delimited by PageBreakMarker are trimmed and paginated
// independently; empty sections are dropped. A non-positive budget
// falls back to DefaultCharsPerPage. Paginate never returns nil.
func Paginate(text string, charsPerPage int) []string {
	if charsPerPage <= 0 {
		charsPerPage = DefaultCharsPerPage
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if !strings.Contains(text, PageBreakMarker) {
		return AutoSplit(text, charsPerPage)
	}

	pages := make([]string, 0)
	for _, section := range strings.Split(text, PageBreakMarker) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		pages = append(pages, AutoSplit(section, charsPerPage)...)
	}
	return pages
}

// AutoSplit paginates text that contains no manual markers.
// Paragraphs are separated by runs of newlines; blank paragraphs are
// skipped. AutoSplit never returns nil.
func AutoSplit(text string, charsPerPage int) []string {
	if charsPerPage <= 0 {
		charsPerPage = DefaultCharsPerPage
	}

	pages := make([]string, 0)
	var current []rune

	flush := func() {
		if len(current) > 0 {
			pages = append(pages, string(current))
			current = nil
		}
	}

	for _, paragraph := range newlineRun.Split(text, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		runes := []rune(paragraph)

		if len(runes) > charsPerPage {
			flush()
			pages = append(pages, splitLong(runes, charsPerPage)...)
			continue
		}

		if len(current) > 0 && len(current)+len(paragraphSeparator)+len(runes) > charsPerPage {
			flush()
		}
		if len(current) > 0 {
			current = append(current, []rune(paragraphSeparator)...)
		}
		current = append(current, runes...)
	}
	flush()

	return pages
}

// splitLong slices an oversized paragraph into chunks of at most limit runes.
func splitLong(runes []rune, limit int) []string {
	var chunks []string
	for len(runes) > 0 {
		cut := len(runes)
		if cut > limit {
			cut = cutPoint(runes, limit)
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

// cutPoint returns where to end the next chunk of runes (len(runes) > limit).
// It prefers the position right after the nearest terminal punctuation within
// SentenceLookback runes before limit, then the nearest safe boundary before
// limit, and finally limit itself.
func cutPoint(runes []rune, limit int) int {
	for i := limit - 1; i >= limit-SentenceLookback && i >= 0; i-- {
		if isTerminal(runes[i]) && isBoundary(runes, i+1) {
			return i + 1
		}
	}

	for cut := limit; cut > 0; cut-- {
		if isBoundary(runes, cut) {
			return cut
		}
	}
	return limit
}

// isTerminal reports whether r ends a sentence.
func isTerminal(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

// isBoundary reports whether a cut between runes[i-1] and runes[i] keeps
// every user-perceived character intact.
func isBoundary(runes []rune, i int) bool {
	if i <= 0 || i >= len(runes) {
		return true
	}
	if runes[i-1] == zeroWidthJoiner {
		return false
	}
	if extendsPrevious(runes[i]) {
		return false
	}
	return !splitsFlag(runes, i)
}

const zeroWidthJoiner = '\u200d'

// extendsPrevious reports whether r attaches to the preceding rune:
// combining marks, joiners, variation selectors, emoji modifiers and tags.
func extendsPrevious(r rune) bool {
	switch {
	case r == zeroWidthJoiner:
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0100 && r <= 0xE01EF: // variation selectors supplement
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r >= 0xE0020 && r <= 0xE007F: // emoji tag sequence
		return true
	case unicode.In(r, unicode.Mn, unicode.Me, unicode.Mc):
		return true
	}
	return !norm.NFC.PropertiesString(string(r)).BoundaryBefore()
}

// splitsFlag reports whether cutting at i separates the two regional
// indicators of a flag emoji.
func splitsFlag(runes []rune, i int) bool {
	if !isRegionalIndicator(runes[i]) {
		return false
	}
	n := 0
	for j := i - 1; j >= 0 && isRegionalIndicator(runes[j]); j-- {
		n++
	}
	return n%2 == 1
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}
