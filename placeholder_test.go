package notepages

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ---------------------------------------------------------------------------
// TestPlaceholder - Fallback image for failed pages
// ---------------------------------------------------------------------------

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		width, height int
	}{
		{"document", 794, 1123},
		{"card", 390, 520},
		{"narrower than caption", 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := Placeholder(tt.width, tt.height, "")
			if err != nil {
				t.Fatalf("Placeholder() error = %v", err)
			}

			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.width || b.Dy() != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.width, tt.height)
			}

			r, g, bl, _ := img.At(0, 0).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				t.Errorf("corner pixel is not white: %v", img.At(0, 0))
			}
		})
	}
}

func TestPlaceholder_DrawsRedCaption(t *testing.T) {
	t.Parallel()

	data, err := Placeholder(400, 200, "render failed")
	if err != nil {
		t.Fatalf("Placeholder() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	red := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R > 0xa0 && c.G < 0x60 && c.B < 0x60 {
				red++
			}
		}
	}
	if red == 0 {
		t.Error("no caption pixels drawn")
	}
}

func TestPlaceholder_InvalidSize(t *testing.T) {
	t.Parallel()

	for _, size := range [][2]int{{0, 100}, {100, 0}, {-1, -1}} {
		if _, err := Placeholder(size[0], size[1], ""); !errors.Is(err, ErrInvalidSurface) {
			t.Errorf("Placeholder(%d, %d) error = %v, want ErrInvalidSurface", size[0], size[1], err)
		}
	}
}

func TestCovers(t *testing.T) {
	t.Parallel()

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parsing Go font: %v", err)
	}

	if !covers(f, fallbackPlaceholderCaption) {
		t.Error("Go font should cover the ASCII caption")
	}
	if covers(f, DefaultPlaceholderCaption) {
		t.Error("Go font should not cover CJK glyphs")
	}
}

func TestPlaceholder_UncoveredCaptionFallsBack(t *testing.T) {
	t.Parallel()

	chinese, err := Placeholder(300, 100, DefaultPlaceholderCaption)
	if err != nil {
		t.Fatalf("Placeholder() error = %v", err)
	}
	ascii, err := Placeholder(300, 100, fallbackPlaceholderCaption)
	if err != nil {
		t.Fatalf("Placeholder() error = %v", err)
	}
	if !bytes.Equal(chinese, ascii) {
		t.Error("caption without glyphs was not replaced by the fallback caption")
	}
}

func TestBlankPNG(t *testing.T) {
	t.Parallel()

	data, err := blankPNG(390, 520)
	if err != nil {
		t.Fatalf("blankPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 390 || b.Dy() != 520 {
		t.Errorf("bounds = %v, want 390x520", b)
	}
	if r, g, b, _ := img.At(200, 260).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("pixel = %d,%d,%d, want white", r, g, b)
	}
}
