package notepages

import (
	"context"
	"errors"
	"fmt"
)

// MinRasterBytes is the smallest PNG accepted from a rasterizer. Anything
// shorter is treated as a blank or truncated capture.
const MinRasterBytes = 1000

// Rasterizer converts one HTML surface into PNG bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, width, height int) ([]byte, error)
}

// Compile-time interface check.
var _ Rasterizer = (*factoryRasterizer)(nil)

// factoryRasterizer gives every call its own render target and closes it
// before returning.
type factoryRasterizer struct {
	factory SurfaceFactory
}

func (r *factoryRasterizer) Rasterize(ctx context.Context, html string, width, height int) (data []byte, err error) {
	target, err := r.factory.NewTarget(ctx, width, height)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := target.Close(); cerr != nil && err == nil {
			data, err = nil, fmt.Errorf("closing render target: %w", cerr)
		}
	}()

	return target.Render(ctx, html)
}

// checkRaster rejects captures too small to hold a rendered page.
func checkRaster(data []byte) error {
	if len(data) < MinRasterBytes {
		return fmt.Errorf("%w: %d bytes (minimum %d)", ErrRasterTooSmall, len(data), MinRasterBytes)
	}
	return nil
}

// isBrowserError reports whether err comes from the browser rather than
// from the page content.
func isBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) || errors.Is(err, ErrPageCreate)
}
