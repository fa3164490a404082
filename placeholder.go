package notepages

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// DefaultPlaceholderCaption is drawn on pages that could not be rasterized.
const DefaultPlaceholderCaption = "图片生成失败 - 请查看文本内容"

// fallbackPlaceholderCaption replaces a caption the font cannot draw.
const fallbackPlaceholderCaption = "Image generation failed - see page text"

const placeholderFontSize = 16

var placeholderInk = color.NRGBA{R: 0xcc, A: 0xff}

// Placeholder renders a white PNG of the given size with caption centered in
// red, using the built-in Go font.
func Placeholder(width, height int, caption string) ([]byte, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	return renderPlaceholder(width, height, caption, f)
}

func renderPlaceholder(width, height int, caption string, f *opentype.Font) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: placeholder size %dx%d", ErrInvalidSurface, width, height)
	}
	if caption == "" {
		caption = DefaultPlaceholderCaption
	}
	if !covers(f, caption) {
		caption = fallbackPlaceholderCaption
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    placeholderFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	defer func() { _ = face.Close() }()

	m := face.Metrics()
	advance := font.MeasureString(face, caption)
	x := (fixed.I(width) - advance) / 2
	y := (fixed.I(height) + m.Ascent - m.Descent) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderInk),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(caption)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// blankPNG encodes a plain white image, the placeholder of last resort.
func blankPNG(width, height int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding blank placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// covers reports whether f has a glyph for every non-space rune of s.
func covers(f *opentype.Font, s string) bool {
	var buf sfnt.Buffer
	for _, r := range s {
		if r == ' ' {
			continue
		}
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}
