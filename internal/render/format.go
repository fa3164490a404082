package render

import (
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-significant characters in a single pass.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var (
	headingLine = regexp.MustCompile(`^[ \t]*(#{3,4})[ \t]+(.*)$`)

	hashTag = regexp.MustCompile(`#[^#\s&<*]+`)

	boldSpan = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// FormatText escapes raw page text and applies the lightweight markup:
// "### " and "#### " heading lines, line breaks (real or a literal
// backslash-n), #tags and **bold**. Escaping runs first, so every pass
// operates on text where user-supplied markup is already inert.
func FormatText(text string) string {
	escaped := EscapeHTML(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, `\n`, "\n")

	lines := strings.Split(escaped, "\n")

	var b strings.Builder
	b.Grow(len(escaped) + len(lines)*5)
	for i, line := range lines {
		block := false
		if m := headingLine.FindStringSubmatch(line); m != nil {
			tag := "h3"
			if len(m[1]) == 4 {
				tag = "h4"
			}
			b.WriteString("<" + tag + ">" + formatInline(m[2]) + "</" + tag + ">")
			block = true
		} else {
			b.WriteString(formatInline(line))
		}

		// Headings are block elements and absorb the line break after them.
		if i < len(lines)-1 && !block {
			b.WriteString("<br/>")
		}
	}
	return b.String()
}

func formatInline(s string) string {
	return boldSpan.ReplaceAllString(styleTags(s), `<strong>${1}</strong>`)
}

// styleTags wraps #tags in spans. A tag never starts inside an entity such
// as &#039; or after another '#'; adjacent tags like #a#b are both styled.
func styleTags(s string) string {
	matches := hashTag.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m[0] > 0 && (s[m[0]-1] == '&' || s[m[0]-1] == '#') {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(`<span class="tag">`)
		b.WriteString(s[m[0]:m[1]])
		b.WriteString(`</span>`)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
