package notepages

import "errors"

// Sentinel errors for library operations.
var (
	// Rendering and rasterization. These are recorded on placeholder images;
	// ProcessContent does not return them.
	ErrRender         = errors.New("page rendering failed")
	ErrRasterTooSmall = errors.New("rasterized image too small")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("failed to capture screenshot")
	ErrBatch          = errors.New("batch rendering failed")
	ErrStamp          = errors.New("watermark stamping failed")

	// ErrWatermarkSource indicates the settings source could not provide a
	// usable watermark. The page run continues without one.
	ErrWatermarkSource = errors.New("watermark source unavailable")

	// ErrPipeline indicates the run failed before any page was attempted.
	ErrPipeline = errors.New("pipeline failed")

	// Watermark validation errors.
	ErrInvalidDensity        = errors.New("invalid watermark density")
	ErrInvalidOpacity        = errors.New("invalid watermark opacity")
	ErrInvalidWatermarkColor = errors.New("invalid watermark color")
	ErrInvalidFontSize       = errors.New("invalid watermark font size")

	// Option validation errors.
	ErrInvalidSurface       = errors.New("invalid surface")
	ErrInvalidWatermarkMode = errors.New("invalid watermark mode")
	ErrInvalidBatchSize     = errors.New("invalid batch size")
	ErrInvalidRetryPolicy   = errors.New("invalid retry policy")
	ErrInvalidAssetPath     = errors.New("invalid asset path")
	ErrInvalidFont          = errors.New("invalid font data")

	// Asset errors.
	ErrStyleNotFound  = errors.New("style not found")
	ErrLayoutNotFound = errors.New("layout not found")
)
