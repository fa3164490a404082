package notepages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/alnah/go-notepages/internal/assets"
	"github.com/alnah/go-notepages/internal/pagination"
	"github.com/alnah/go-notepages/internal/render"
	"github.com/alnah/go-notepages/internal/watermark"
)

// Stamper draws a watermark onto an already rasterized PNG or JPEG image and
// returns a PNG.
type Stamper interface {
	Stamp(ctx context.Context, img []byte, spec *WatermarkSpec) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Stamper         = (*pixelStamper)(nil)
	_ WatermarkSource = StaticWatermarkSource{}
	_ AssetLoader     = (*assetLoaderAdapter)(nil)
)

// Processor paginates documents and turns every page into an image.
// Create with NewProcessor, call ProcessContent, and Close when done.
// A Processor is safe for concurrent use; calls never share results.
type Processor struct {
	cfg         processorConfig
	assetLoader AssetLoader
	renderer    *render.Renderer
	rasterizer  Rasterizer
	factory     SurfaceFactory
	owned       io.Closer // browser created by NewProcessor, nil otherwise
	stamper     Stamper
	source      WatermarkSource
	logger      *slog.Logger
	placeholder func() ([]byte, error)
	blank       func() ([]byte, error) // used when placeholder fails
}

// NewProcessor creates a Processor. Without WithRasterizer or
// WithSurfaceFactory it rasterizes in headless Chrome, launched on first use.
func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{
		cfg:    defaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.cfg.validate(); err != nil {
		return nil, err
	}
	if p.cfg.charsPerPage <= 0 {
		p.cfg.charsPerPage = p.cfg.surface.CharsPerPage()
	}

	loader, err := p.resolveAssetLoader()
	if err != nil {
		return nil, err
	}
	p.renderer, err = render.New(loader, p.cfg.surface.layout(), p.cfg.surface.size())
	if err != nil {
		return nil, fmt.Errorf("preparing %s layout: %w", p.cfg.surface, err)
	}

	captionFont, err := p.captionFont()
	if err != nil {
		return nil, err
	}
	width, height := p.cfg.surface.Dimensions()
	caption := p.cfg.caption
	p.placeholder = sync.OnceValues(func() ([]byte, error) {
		return renderPlaceholder(width, height, caption, captionFont)
	})
	p.blank = sync.OnceValues(func() ([]byte, error) {
		return blankPNG(width, height)
	})

	if p.stamper == nil {
		if p.stamper, err = p.newPixelStamper(); err != nil {
			return nil, err
		}
	}

	if p.rasterizer == nil {
		if p.factory == nil {
			rod := newRodSurfaceFactory(p.cfg.timeout, p.cfg.pixelRatio)
			p.factory = rod
			p.owned = rod
		}
		p.rasterizer = &factoryRasterizer{factory: p.factory}
	}

	return p, nil
}

func (c processorConfig) validate() error {
	if !c.surface.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSurface, int(c.surface))
	}
	if c.batchSize < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidBatchSize, c.batchSize)
	}
	if err := c.retry.Validate(); err != nil {
		return err
	}
	switch c.mode {
	case WatermarkOverlay, WatermarkStamp, WatermarkNone:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWatermarkMode, int(c.mode))
	}
	return nil
}

func (p *Processor) resolveAssetLoader() (assets.AssetLoader, error) {
	if p.assetLoader != nil {
		return internalAssetLoader{pub: p.assetLoader}, nil
	}
	if p.cfg.assetPath == "" {
		return assets.NewEmbeddedLoader(), nil
	}
	resolver, err := assets.NewAssetResolver(p.cfg.assetPath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return resolver, nil
}

// captionFont returns the custom font when one is set, the Go font otherwise.
func (p *Processor) captionFont() (*opentype.Font, error) {
	data := goregular.TTF
	if p.cfg.fontData != nil {
		data = p.cfg.fontData
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	return f, nil
}

func (p *Processor) newPixelStamper() (*pixelStamper, error) {
	var loaderOpts []watermark.LoaderOption
	for k, v := range p.cfg.fetchHeaders {
		loaderOpts = append(loaderOpts, watermark.WithHeader(k, v))
	}
	if p.cfg.fetchLimit {
		loaderOpts = append(loaderOpts, watermark.WithRateLimit(p.cfg.fetchEvery, p.cfg.fetchBurst))
	}

	opts := []watermark.StamperOption{
		watermark.WithPixelRatio(p.cfg.pixelRatio),
		watermark.WithImageLoader(watermark.NewLoader(loaderOpts...)),
		watermark.WithSourceErrorHandler(func(err error) {
			p.logger.Warn("skipping image watermark", "error", fmt.Errorf("%w: %v", ErrWatermarkSource, err))
		}),
	}
	if p.cfg.fontData != nil {
		opts = append(opts, watermark.WithFontData(p.cfg.fontData))
	}

	s, err := watermark.NewStamper(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	return &pixelStamper{stamper: s}, nil
}

// pixelStamper adapts the internal stamper to the public Stamper interface.
type pixelStamper struct {
	stamper *watermark.Stamper
}

func (s *pixelStamper) Stamp(ctx context.Context, img []byte, spec *WatermarkSpec) ([]byte, error) {
	if spec.empty() {
		return img, nil
	}
	return s.stamper.Stamp(ctx, img, spec.toInternal())
}

// ProcessContent paginates text and rasterizes every page.
//
// A nil spec takes the settings from the configured WatermarkSource; with no
// source, pages carry no watermark. Pages that cannot be rasterized get a
// placeholder image, so len(Result.Images) always equals len(Result.Pages).
// The only errors are an invalid spec and ErrPipeline.
func (p *Processor) ProcessContent(ctx context.Context, text string, spec *WatermarkSpec) (*Result, error) {
	return p.process(ctx, "process", text, spec)
}

// ReprocessContent runs the same pipeline on edited text, regenerating both
// pages and images.
func (p *Processor) ReprocessContent(ctx context.Context, text string, spec *WatermarkSpec) (*Result, error) {
	return p.process(ctx, "reprocess", text, spec)
}

func (p *Processor) process(ctx context.Context, op, text string, spec *WatermarkSpec) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %s: %v", ErrPipeline, op, r)
		}
	}()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	active := p.resolveWatermark(spec)
	pages := pagination.Paginate(text, p.cfg.charsPerPage)

	p.logger.Info("paginated",
		"op", op,
		"surface", p.cfg.surface.String(),
		"chars", utf8.RuneCountInString(text),
		"pages", len(pages))

	images := p.RenderPages(ctx, pages, active)

	res := &Result{Pages: pages, Images: images}
	if n := res.Placeholders(); n > 0 {
		p.logger.Warn("pages fell back to placeholders", "op", op, "placeholders", n, "pages", len(pages))
	}
	return res, nil
}

// resolveWatermark returns a private copy of the settings to use, or nil for
// no watermark.
func (p *Processor) resolveWatermark(spec *WatermarkSpec) *WatermarkSpec {
	if spec != nil {
		cp := *spec
		return &cp
	}
	if p.source == nil {
		return nil
	}

	snap, err := p.source.Snapshot()
	if err != nil {
		p.logger.Warn("using no watermark", "error", fmt.Errorf("%w: %v", ErrWatermarkSource, err))
		return nil
	}
	if snap == nil {
		return nil
	}
	if err := snap.Validate(); err != nil {
		p.logger.Warn("using no watermark", "error", fmt.Errorf("%w: %v", ErrWatermarkSource, err))
		return nil
	}
	cp := *snap
	return &cp
}

// Preview returns a standalone HTML page showing the watermark on an empty
// surface, tiled exactly as rendered pages are.
func (p *Processor) Preview(spec *WatermarkSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	overlay, err := p.overlayFor(spec)
	if err != nil {
		return "", err
	}
	surface, err := p.renderer.RenderPreview(overlay)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return surface.HTML, nil
}

// StampImage draws spec onto an existing image with the configured stamper.
func (p *Processor) StampImage(ctx context.Context, img []byte, spec *WatermarkSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.empty() {
		return img, nil
	}
	out, err := p.stamper.Stamp(ctx, img, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStamp, err)
	}
	return out, nil
}

// Surface returns the surface pages are laid out on.
func (p *Processor) Surface() Surface {
	return p.cfg.surface
}

// Close releases the browser if NewProcessor started one.
func (p *Processor) Close() error {
	if p.owned == nil {
		return nil
	}
	if err := p.owned.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// errorsIsCtx reports whether err comes from cancellation or a deadline.
func errorsIsCtx(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
