package watermark

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

// fontFamilyPattern accepts CSS family lists such as
// "'Microsoft YaHei', sans-serif" and nothing that could end the declaration.
var fontFamilyPattern = regexp.MustCompile(`^[\p{L}\p{N} ,'"\-]+$`)

// SafeFontFamily returns family if it is a plain CSS family list, or
// DefaultFontFamily otherwise.
func SafeFontFamily(family string) string {
	family = strings.TrimSpace(family)
	if family == "" || !fontFamilyPattern.MatchString(family) {
		return DefaultFontFamily
	}
	return family
}

// OverlayHTML renders a text watermark as a layer of absolutely positioned,
// center-anchored tiles. The layer ignores pointer events and clips tiles
// that fall past the surface edge.
func OverlayHTML(g Grid, s Spec) (template.HTML, error) {
	if strings.TrimSpace(s.Text) == "" {
		return "", ErrEmptyWatermark
	}
	if _, err := ParseHexColor(s.Color); err != nil {
		return "", err
	}

	text := html.EscapeString(s.Text)
	tileStyle := html.EscapeString(fmt.Sprintf(
		"transform:translate(-50%%,-50%%) rotate(%.2fdeg);font-size:%.2fpx;color:%s;font-family:%s;",
		s.Rotation, s.FontSize, s.Color, SafeFontFamily(s.FontFamily),
	))

	var b strings.Builder
	b.Grow(128 + g.Len()*(len(tileStyle)+len(text)+96))
	fmt.Fprintf(&b,
		`<div class="watermark-layer" aria-hidden="true" style="position:absolute;inset:0;pointer-events:none;overflow:hidden;opacity:%.2f;">`,
		min(max(s.Opacity, 0), 1))
	for _, p := range g.Tiles() {
		fmt.Fprintf(&b,
			`<span class="watermark-tile" style="position:absolute;left:%.2fpx;top:%.2fpx;white-space:nowrap;%s">%s</span>`,
			p.X, p.Y, tileStyle, text)
	}
	b.WriteString(`</div>`)

	return template.HTML(b.String()), nil // #nosec G203 -- text and style escaped above
}
