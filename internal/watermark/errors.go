package watermark

import "errors"

// Sentinel errors.
var (
	ErrInvalidColor   = errors.New("watermark: invalid hex color")
	ErrDecode         = errors.New("watermark: cannot decode image")
	ErrEncode         = errors.New("watermark: cannot encode image")
	ErrFont           = errors.New("watermark: cannot load font")
	ErrSource         = errors.New("watermark: image source unavailable")
	ErrSourceFetch    = errors.New("watermark: cannot fetch image source")
	ErrSourceTooLarge = errors.New("watermark: image source exceeds size limit")
	ErrEmptyWatermark = errors.New("watermark: no text or image to draw")
)
