package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // decode JPEG inputs
	"image/png"
	"math"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Cache lifetimes for decoded image sources and text sprites.
const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = time.Hour
)

// spritePadding keeps antialiased glyph edges inside the sprite.
const spritePadding = 2

// imageTileFraction bounds an image mark to this share of its grid cell.
const imageTileFraction = 0.5

// Stamper draws watermarks directly onto raster images, on the same grid the
// HTML overlay uses. A Stamper is safe for concurrent use.
type Stamper struct {
	fontData   []byte
	regular    *opentype.Font
	mono       *opentype.Font
	loader     *Loader
	pixelRatio float64
	cache      *cache.Cache
	onSource   func(error)
}

// StamperOption configures a Stamper.
type StamperOption func(*Stamper)

// WithFontData replaces the built-in Go fonts with a TrueType/OpenType font,
// needed for scripts the Go fonts do not cover (CJK text, for instance).
func WithFontData(data []byte) StamperOption {
	return func(s *Stamper) {
		s.fontData = data
	}
}

// WithPixelRatio declares how many image pixels make one CSS pixel. Images
// rasterized at device scale 2 are stamped with ratio 2 so tiles land where
// the overlay would put them.
func WithPixelRatio(k float64) StamperOption {
	return func(s *Stamper) {
		if k > 0 {
			s.pixelRatio = k
		}
	}
}

// WithImageLoader sets the loader for image watermark sources.
func WithImageLoader(l *Loader) StamperOption {
	return func(s *Stamper) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithSourceErrorHandler is called when the image source of a spec that
// also has text cannot be used. The text is still drawn.
func WithSourceErrorHandler(fn func(error)) StamperOption {
	return func(s *Stamper) {
		s.onSource = fn
	}
}

// WithCache shares a cache of decoded sources and sprites between stampers.
func WithCache(c *cache.Cache) StamperOption {
	return func(s *Stamper) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewStamper creates a Stamper. Returns ErrFont if custom font data does not
// parse.
func NewStamper(opts ...StamperOption) (*Stamper, error) {
	s := &Stamper{pixelRatio: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = NewLoader()
	}
	if s.cache == nil {
		s.cache = cache.New(defaultCacheExpiration, cacheCleanupInterval)
	}

	var err error
	if s.fontData != nil {
		if s.regular, err = opentype.Parse(s.fontData); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFont, err)
		}
		s.mono = s.regular
		return s, nil
	}
	if s.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}
	if s.mono, err = opentype.Parse(gomono.TTF); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}
	return s, nil
}

// LogicalGrid returns the grid, in CSS pixels, that Stamp uses for an image
// of width x height pixels. Image marks use the image grid; text alone uses
// the text grid.
func (s *Stamper) LogicalGrid(width, height int, spec Spec) Grid {
	if spec.Image != "" {
		return s.logicalGrid(width, height, spec.Density, ImageBaseSpacing)
	}
	return s.logicalGrid(width, height, spec.Density, TextBaseSpacing)
}

func (s *Stamper) logicalGrid(width, height, density int, base Spacing) Grid {
	w := float64(width) / s.pixelRatio
	h := float64(height) / s.pixelRatio
	return ComputeGridWithBase(w, h, density, base)
}

// Stamp decodes a PNG or JPEG image, draws the watermark on every tile and
// returns the result as PNG. A spec with both an image and text draws the
// image on the image grid and the text on the text grid. When the image
// source fails, a spec with text is stamped with the text only and the
// failure goes to the source error handler; without text the error is
// returned and wraps ErrSource.
func (s *Stamper) Stamp(ctx context.Context, data []byte, spec Spec) ([]byte, error) {
	if spec.Empty() {
		return nil, ErrEmptyWatermark
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	hasText := strings.TrimSpace(spec.Text) != ""

	if spec.Image != "" {
		grid := s.logicalGrid(bounds.Dx(), bounds.Dy(), spec.Density, ImageBaseSpacing).Scale(s.pixelRatio)
		tile, err := s.imageTile(ctx, spec)
		switch {
		case err == nil:
			tb := tile.Bounds()
			scale := min(
				grid.SpacingX*imageTileFraction/float64(tb.Dx()),
				grid.SpacingY*imageTileFraction/float64(tb.Dy()),
			)
			if err := s.drawTiles(ctx, dst, grid, tile, spec.Rotation, scale); err != nil {
				return nil, err
			}
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case !hasText:
			return nil, err
		case s.onSource != nil:
			s.onSource(err)
		}
	}

	if hasText {
		tile, err := s.textSprite(spec)
		if err != nil {
			return nil, err
		}
		grid := s.logicalGrid(bounds.Dx(), bounds.Dy(), spec.Density, TextBaseSpacing).Scale(s.pixelRatio)
		if err := s.drawTiles(ctx, dst, grid, tile, spec.Rotation, 1); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// drawTiles places tile at every grid position, checking ctx once per row.
func (s *Stamper) drawTiles(ctx context.Context, dst *image.RGBA, grid Grid, tile image.Image, degrees, scale float64) error {
	b := dst.Bounds()
	for i, p := range grid.Tiles() {
		if i%grid.Cols == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		drawRotated(dst, tile, float64(b.Min.X)+p.X, float64(b.Min.Y)+p.Y, degrees, scale)
	}
	return nil
}

// drawRotated composites src over dst, scaled by k and rotated clockwise by
// degrees about its center, with that center placed at (cx, cy).
func drawRotated(dst draw.Image, src image.Image, cx, cy, degrees, k float64) {
	b := src.Bounds()
	sx := float64(b.Min.X+b.Max.X) / 2
	sy := float64(b.Min.Y+b.Max.Y) / 2

	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad)*k, math.Sin(rad)*k

	m := f64.Aff3{
		cos, -sin, cx - (cos*sx - sin*sy),
		sin, cos, cy - (sin*sx + cos*sy),
	}
	xdraw.BiLinear.Transform(dst, m, src, b, xdraw.Over, nil)
}

// textSprite renders the watermark text once, in its final color and
// opacity, at the stamper's pixel ratio.
func (s *Stamper) textSprite(spec Spec) (image.Image, error) {
	col, err := ParseHexColor(spec.Color)
	if err != nil {
		return nil, err
	}
	col.A = alpha(spec.Opacity)

	size := spec.FontSize * s.pixelRatio
	if size <= 0 {
		return nil, fmt.Errorf("%w: font size %.2f", ErrFont, spec.FontSize)
	}

	key := fmt.Sprintf("text|%s|%.2f|%v|%s", spec.Text, size, col, spec.FontFamily)
	if v, ok := s.cache.Get(key); ok {
		return v.(image.Image), nil
	}

	face, err := opentype.NewFace(s.fontFor(spec.FontFamily), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}
	defer func() { _ = face.Close() }()

	metrics := face.Metrics()
	advance := font.MeasureString(face, spec.Text)
	sprite := image.NewRGBA(image.Rect(0, 0,
		advance.Ceil()+2*spritePadding,
		(metrics.Ascent+metrics.Descent).Ceil()+2*spritePadding,
	))

	d := &font.Drawer{
		Dst:  sprite,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(spritePadding, spritePadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(spec.Text)

	s.cache.Set(key, sprite, cache.DefaultExpiration)
	return sprite, nil
}

func (s *Stamper) fontFor(family string) *opentype.Font {
	if strings.Contains(strings.ToLower(family), "mono") {
		return s.mono
	}
	return s.regular
}

// imageTile loads, decodes and fades an image source. Decoded sources are
// cached per source and opacity.
func (s *Stamper) imageTile(ctx context.Context, spec Spec) (image.Image, error) {
	a := alpha(spec.Opacity)
	key := fmt.Sprintf("image|%s|%d", spec.Image, a)
	if v, ok := s.cache.Get(key); ok {
		return v.(image.Image), nil
	}

	data, err := s.loader.Load(ctx, spec.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrSource, ErrDecode, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: %w: image is empty", ErrSource, ErrDecode)
	}

	faded := fade(img, a)
	s.cache.Set(key, faded, cache.DefaultExpiration)
	return faded, nil
}

// fade returns a copy of img with every pixel's alpha scaled by a/255.
func fade(img image.Image, a uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = uint8(uint16(c.A) * uint16(a) / 255)
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}
