package notepages

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/alnah/go-notepages/internal/assets"
	"github.com/alnah/go-notepages/internal/pagination"
	"github.com/alnah/go-notepages/internal/render"
	"github.com/alnah/go-notepages/internal/watermark"
)

// PageBreakMarker forces a page boundary wherever it appears in the text.
const PageBreakMarker = pagination.PageBreakMarker

// Paginate splits text into pages of at most charsPerPage runes, honoring
// PageBreakMarker, paragraph breaks and sentence punctuation.
func Paginate(text string, charsPerPage int) []string {
	return pagination.Paginate(text, charsPerPage)
}

// Surface selects the fixed canvas pages are laid out on.
type Surface int

const (
	// SurfaceDocument is an A4 page at 96 dpi (794x1123).
	SurfaceDocument Surface = iota
	// SurfaceCard is the legacy 390x520 card with page header and footer.
	SurfaceCard
)

// ParseSurface maps "document" or "card" (case-insensitive) to a Surface.
func ParseSurface(name string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "document", "":
		return SurfaceDocument, nil
	case "card":
		return SurfaceCard, nil
	}
	return 0, fmt.Errorf("%w: %q (must be document or card)", ErrInvalidSurface, name)
}

// String returns the surface name.
func (s Surface) String() string {
	switch s {
	case SurfaceDocument:
		return "document"
	case SurfaceCard:
		return "card"
	}
	return fmt.Sprintf("Surface(%d)", int(s))
}

// Dimensions returns the logical surface size in CSS pixels.
func (s Surface) Dimensions() (width, height int) {
	sz := s.size()
	return sz.Width, sz.Height
}

// CharsPerPage returns the default page budget for the surface.
func (s Surface) CharsPerPage() int {
	if s == SurfaceCard {
		return pagination.CardCharsPerPage
	}
	return pagination.DefaultCharsPerPage
}

func (s Surface) valid() bool {
	return s == SurfaceDocument || s == SurfaceCard
}

func (s Surface) size() render.Size {
	if s == SurfaceCard {
		return render.CardSize
	}
	return render.DocumentSize
}

func (s Surface) layout() string {
	if s == SurfaceCard {
		return assets.LayoutCard
	}
	return assets.LayoutDocument
}

// WatermarkMode selects how the watermark reaches the final image.
type WatermarkMode int

const (
	// WatermarkOverlay lays the tiles into the page surface before
	// rasterization.
	WatermarkOverlay WatermarkMode = iota
	// WatermarkStamp draws the tiles onto each image after rasterization.
	WatermarkStamp
	// WatermarkNone disables watermarking.
	WatermarkNone
)

// ParseWatermarkMode maps "overlay", "stamp" or "none" to a WatermarkMode.
func ParseWatermarkMode(name string) (WatermarkMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "overlay", "":
		return WatermarkOverlay, nil
	case "stamp":
		return WatermarkStamp, nil
	case "none":
		return WatermarkNone, nil
	}
	return 0, fmt.Errorf("%w: %q (must be overlay, stamp or none)", ErrInvalidWatermarkMode, name)
}

// Watermark bounds.
const (
	MinWatermarkDensity = watermark.MinDensity
	MaxWatermarkDensity = watermark.MaxDensity
)

// WatermarkSpec configures the tiled watermark. A spec with neither Text nor
// ImageSource draws nothing.
type WatermarkSpec struct {
	Text            string
	Opacity         float64 // 0.0 to 1.0
	FontSize        float64 // CSS pixels
	FontColor       string  // "#rgb" or "#rrggbb"
	RotationDegrees float64 // clockwise on screen
	Density         int     // 1 (sparse) to 5 (dense)
	FontFamily      string  // CSS font-family list; optional
	ImageSource     string  // path, URL or data URI of an image mark; optional
}

// DefaultWatermarkSpec returns the built-in watermark settings.
func DefaultWatermarkSpec() *WatermarkSpec {
	return &WatermarkSpec{
		Text:            "小红书内容助手",
		Opacity:         0.3,
		FontSize:        18,
		FontColor:       "#ff4d6d",
		RotationDegrees: -30,
		Density:         3,
		FontFamily:      "sans-serif",
	}
}

// Validate checks that watermark settings are usable.
// Returns nil if w is nil (nil means no watermark).
func (w *WatermarkSpec) Validate() error {
	if w == nil || w.empty() {
		return nil
	}

	if w.Density < MinWatermarkDensity || w.Density > MaxWatermarkDensity {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDensity, w.Density, MinWatermarkDensity, MaxWatermarkDensity)
	}
	if w.Opacity < 0 || w.Opacity > 1 {
		return fmt.Errorf("%w: %.2f (must be between 0.0 and 1.0)", ErrInvalidOpacity, w.Opacity)
	}

	if strings.TrimSpace(w.Text) == "" {
		return nil
	}
	if w.FontSize <= 0 {
		return fmt.Errorf("%w: %.2f (must be positive)", ErrInvalidFontSize, w.FontSize)
	}
	if _, err := watermark.ParseHexColor(w.FontColor); err != nil {
		return fmt.Errorf("%w: %q (must be hex format like #888 or #888888)", ErrInvalidWatermarkColor, w.FontColor)
	}
	return nil
}

func (w *WatermarkSpec) empty() bool {
	return w == nil || (strings.TrimSpace(w.Text) == "" && w.ImageSource == "")
}

func (w *WatermarkSpec) toInternal() watermark.Spec {
	return watermark.Spec{
		Text:       w.Text,
		Opacity:    w.Opacity,
		FontSize:   w.FontSize,
		Color:      w.FontColor,
		Rotation:   w.RotationDegrees,
		Density:    w.Density,
		FontFamily: w.FontFamily,
		Image:      w.ImageSource,
	}
}

// WatermarkSource provides the current watermark settings, such as a
// settings store the user edits between runs.
type WatermarkSource interface {
	Snapshot() (*WatermarkSpec, error)
}

// StaticWatermarkSource always returns the same settings.
type StaticWatermarkSource struct {
	Spec *WatermarkSpec
}

// Snapshot returns a copy of the configured spec.
func (s StaticWatermarkSource) Snapshot() (*WatermarkSpec, error) {
	if s.Spec == nil {
		return nil, nil
	}
	cp := *s.Spec
	return &cp, nil
}

// RenderedImage is the raster output for one page. When every attempt
// failed, Placeholder is set, Data holds a placeholder PNG and Err the last
// failure.
type RenderedImage struct {
	Index       int
	Data        []byte // PNG
	Width       int    // logical surface width in CSS pixels
	Height      int    // logical surface height in CSS pixels
	Placeholder bool
	Err         error
}

// DataURI returns the image as a data:image/png;base64 URI.
func (r RenderedImage) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Result holds the pages of a document and one image per page, index-aligned.
type Result struct {
	Pages  []string
	Images []RenderedImage
}

// Placeholders returns the number of pages that fell back to a placeholder.
func (r *Result) Placeholders() int {
	n := 0
	for _, img := range r.Images {
		if img.Placeholder {
			n++
		}
	}
	return n
}
