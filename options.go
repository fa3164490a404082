package notepages

import (
	"log/slog"
	"time"
)

// Option configures a Processor.
type Option func(*Processor)

// processorConfig holds internal configuration for Processor.
type processorConfig struct {
	surface      Surface
	charsPerPage int // 0 means the surface default
	batchSize    int
	retry        RetryPolicy
	mode         WatermarkMode
	timeout      time.Duration
	assetPath    string
	caption      string
	pixelRatio   float64
	fontData     []byte
	fetchHeaders map[string]string
	fetchEvery   time.Duration
	fetchBurst   int
	fetchLimit   bool
}

// Defaults.
const (
	// DefaultBatchSize is how many pages are rasterized concurrently.
	DefaultBatchSize = 2

	// defaultTimeout bounds one rasterization attempt.
	defaultTimeout = 30 * time.Second
)

func defaultConfig() processorConfig {
	return processorConfig{
		surface:    SurfaceDocument,
		batchSize:  DefaultBatchSize,
		retry:      DefaultRetryPolicy(),
		mode:       WatermarkOverlay,
		timeout:    defaultTimeout,
		caption:    DefaultPlaceholderCaption,
		pixelRatio: DefaultPixelRatio,
	}
}

// WithSurface selects the page surface. Default: SurfaceDocument.
func WithSurface(s Surface) Option {
	return func(p *Processor) {
		p.cfg.surface = s
	}
}

// WithCharsPerPage sets the page budget in runes. A non-positive value uses
// the surface default (1000 for documents, 800 for cards).
func WithCharsPerPage(n int) Option {
	return func(p *Processor) {
		p.cfg.charsPerPage = n
	}
}

// WithBatchSize sets how many pages are rasterized at the same time.
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		p.cfg.batchSize = n
	}
}

// WithRetryPolicy sets the per-page retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Processor) {
		p.cfg.retry = policy
	}
}

// WithWatermarkMode selects overlay, stamp or no watermarking.
func WithWatermarkMode(m WatermarkMode) Option {
	return func(p *Processor) {
		p.cfg.mode = m
	}
}

// WithTimeout sets the timeout of one rasterization attempt.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("notepages: WithTimeout duration must be positive")
	}
	return func(p *Processor) {
		p.cfg.timeout = d
	}
}

// WithRasterizer replaces the browser with a custom rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(p *Processor) {
		p.rasterizer = r
	}
}

// WithSurfaceFactory rasterizes through the given factory, one target per
// attempt. The caller owns the factory and closes it.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(p *Processor) {
		p.factory = f
	}
}

// WithStamper replaces the built-in pixel stamper.
func WithStamper(s Stamper) Option {
	return func(p *Processor) {
		p.stamper = s
	}
}

// WithLogger sets the logger for pipeline events. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithAssetLoader sets a custom loader for layouts and styles.
// Takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(p *Processor) {
		p.assetLoader = loader
	}
}

// WithAssetPath loads layouts and styles from a directory, falling back to
// the embedded defaults.
func WithAssetPath(path string) Option {
	return func(p *Processor) {
		p.cfg.assetPath = path
	}
}

// WithPlaceholderCaption sets the caption drawn on placeholder images.
func WithPlaceholderCaption(caption string) Option {
	return func(p *Processor) {
		if caption != "" {
			p.cfg.caption = caption
		}
	}
}

// WithWatermarkSource sets where settings come from when a call passes a
// nil spec.
func WithWatermarkSource(src WatermarkSource) Option {
	return func(p *Processor) {
		p.source = src
	}
}

// WithPixelRatio sets the device scale factor of rasterized pages.
// Non-positive values are ignored.
func WithPixelRatio(k float64) Option {
	return func(p *Processor) {
		if k > 0 {
			p.cfg.pixelRatio = k
		}
	}
}

// WithFontData sets a TrueType/OpenType font for stamped watermarks and
// placeholder captions. Required for scripts the Go fonts lack, such as CJK.
func WithFontData(data []byte) Option {
	return func(p *Processor) {
		p.cfg.fontData = data
	}
}

// WithSourceHeader adds a request header sent when fetching remote
// watermark images (for example Referer or User-Agent).
func WithSourceHeader(key, value string) Option {
	return func(p *Processor) {
		if p.cfg.fetchHeaders == nil {
			p.cfg.fetchHeaders = make(map[string]string)
		}
		p.cfg.fetchHeaders[key] = value
	}
}

// WithSourceRateLimit allows one remote watermark fetch per interval with
// the given burst. A non-positive interval disables limiting.
func WithSourceRateLimit(interval time.Duration, burst int) Option {
	return func(p *Processor) {
		p.cfg.fetchLimit = true
		p.cfg.fetchEvery = interval
		p.cfg.fetchBurst = burst
	}
}
